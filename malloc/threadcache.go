package malloc

import "unsafe"

import "github.com/youngyangyang04/memory-pool/lib"

// ThreadCache hot tier, a private array of freelists keyed by size
// class. Methods are not thread safe, an instance shall be owned by
// a single goroutine, the fast path touches no synchronization.
// Misses refill from the CentralCache in class-sized batches, and a
// local list that grows to the batch target is returned wholesale.
type ThreadCache struct {
	// 64-bit aligned stats
	allocated int64 // bytes handed out and not yet freed
	cached    int64 // bytes parked in local freelists

	heads   [Freelistsize]unsafe.Pointer
	lengths [Freelistsize]int64
	ccache  *CentralCache
	h_sizes lib.SizeStats // allocation size distribution
}

// NewThreadCache create a thread tier instance over the central
// tier.
func NewThreadCache(ccache *CentralCache) *ThreadCache {
	return &ThreadCache{ccache: ccache}
}

// Alloc implement api.Mallocer{} interface. Returns an Alignment
// aligned chunk of atleast `n` bytes, nil on out-of-memory. A size
// of zero allocates a minimum-class chunk.
func (tcache *ThreadCache) Alloc(n int64) unsafe.Pointer {
	if n > Maxbytes { // no pooling benefit, straight to the page tier
		base, err := tcache.ccache.pcache.Allocspan(ceil(n, Pagesize))
		if err != nil {
			return nil
		}
		tcache.allocated += n
		tcache.h_sizes.Add(n)
		return base
	}
	index := Sizeindex(n)
	size := Classsize(index)

	block := tcache.heads[index]
	if block == nil {
		var count int64
		var err error
		block, count, err = tcache.ccache.Fetchrange(
			index, tcache.ccache.batchfor(index))
		if err != nil {
			return nil
		}
		tcache.lengths[index] = count
		tcache.cached += count * size
		tcache.heads[index] = block
	}
	tcache.heads[index] = nextblock(block)
	tcache.lengths[index]--
	tcache.cached -= size
	tcache.allocated += size
	tcache.h_sizes.Add(n)
	return block
}

// Free implement api.Mallocer{} interface. `n` shall be the size
// that was passed to Alloc for this chunk.
func (tcache *ThreadCache) Free(ptr unsafe.Pointer, n int64) {
	if ptr == nil {
		panicerr("ThreadCache.Free(): nil pointer")
	}
	if n > Maxbytes {
		tcache.ccache.pcache.Freespan(ptr)
		tcache.allocated -= n
		return
	}
	index := Sizeindex(n)
	size := Classsize(index)

	setnextblock(ptr, tcache.heads[index])
	tcache.heads[index] = ptr
	tcache.lengths[index]++
	tcache.cached += size
	tcache.allocated -= size

	if tcache.lengths[index] >= tcache.ccache.batchfor(index) {
		tcache.flushclass(index)
	}
}

// Release implement api.Mallocer{} interface. Flush every local
// freelist back to the central tier, the instance stays usable.
func (tcache *ThreadCache) Release() {
	for index := 0; index < Freelistsize; index++ {
		if tcache.heads[index] != nil {
			tcache.flushclass(index)
		}
	}
}

// Info implement api.Mallocer{} interface. Capacity and heap come
// from the page tier, alloc and overhead are local to this cache.
func (tcache *ThreadCache) Info() (capacity, heap, alloc, overhead int64) {
	capacity, heap, _, _ = tcache.ccache.pcache.Info()
	return capacity, heap, tcache.allocated, int64(unsafe.Sizeof(*tcache))
}

// Utilization implement api.Mallocer{} interface. Delegates to the
// central tier's per-class view, a thread cache has no pool of its
// own.
func (tcache *ThreadCache) Utilization() ([]int, []float64) {
	return tcache.ccache.Utilization()
}

// Cachedbytes bytes parked in this cache's freelists.
func (tcache *ThreadCache) Cachedbytes() int64 {
	return tcache.cached
}

// Allocstats number of allocations served and the min, mean and max
// allocation sizes.
func (tcache *ThreadCache) Allocstats() (n, min, mean, max int64) {
	h := &tcache.h_sizes
	return h.Samples(), h.Min(), h.Mean(), h.Max()
}

func (tcache *ThreadCache) flushclass(index int) {
	tcache.ccache.Returnrange(
		tcache.heads[index], tcache.lengths[index], index)
	tcache.cached -= tcache.lengths[index] * Classsize(index)
	tcache.heads[index], tcache.lengths[index] = nil, 0
}
