package malloc

import s "github.com/bnclabs/gosettings"
import sigar "github.com/cloudfoundry/gosigar"

// Alignment chunk sizes are rounded up to multiples of Alignment,
// and chunks are always aligned to it. Shall not be less than the
// size of a machine word, freelists are threaded through the chunks.
const Alignment = int64(8)

// Pagesize assumed size of an OS page, spans are measured in it.
const Pagesize = int64(4096)

// Spanpages default number of pages fetched from the PageCache for
// one CentralCache refill. Can be tuned with the "spanpages" setting.
const Spanpages = int64(8)

// Maxbytes largest chunk size served through the size-class tiers,
// larger allocations go straight to the PageCache.
const Maxbytes = int64(256 * 1024)

// Freelistsize number of size classes, one freelist per class.
const Freelistsize = int(Maxbytes / Alignment)

// Batchmax default ceiling on the number of chunks moved between
// ThreadCache and CentralCache in one batch. Can be tuned with the
// "batchmax" setting.
const Batchmax = int64(64)

// Maxbatchbytes default target on the number of bytes moved between
// ThreadCache and CentralCache in one batch, batches of larger
// classes carry fewer chunks. Can be tuned with the "batchbytes"
// setting.
const Maxbatchbytes = int64(16 * 1024)

// Defaultsettings for the memory pool.
//
// "capacity" (int64, default: free system RAM)
//		Maximum number of bytes the PageCache may hold from the OS.
//		Span requests beyond it fail as out-of-memory.
//
// "spanpages" (int64, default: Spanpages)
//		Pages per span fetched for a CentralCache refill.
//
// "batchmax" (int64, default: Batchmax)
//		Maximum chunks per batch between thread and central tiers.
//
// "batchbytes" (int64, default: Maxbatchbytes)
//		Target bytes per batch between thread and central tiers.
func Defaultsettings() s.Settings {
	_, _, free := getsysmem()
	return s.Settings{
		"capacity":   int64(free),
		"spanpages":  Spanpages,
		"batchmax":   Batchmax,
		"batchbytes": Maxbatchbytes,
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
