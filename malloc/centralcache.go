package malloc

import "runtime"
import "sync/atomic"
import "unsafe"

import s "github.com/bnclabs/gosettings"
import "github.com/bnclabs/golog"

// spinflag per-class mutual exclusion, test-and-set with acquire on
// entry, store with release on exit, Gosched between attempts.
// Critical sections are bounded pointer rewiring, never OS waits.
type spinflag struct {
	flag int32
}

func (sf *spinflag) acquire() {
	for !atomic.CompareAndSwapInt32(&sf.flag, 0, 1) {
		runtime.Gosched()
	}
}

func (sf *spinflag) release() {
	atomic.StoreInt32(&sf.flag, 0)
}

// CentralCache broker tier, one shared freelist per size class. It
// refills from the PageCache by carving a fresh span into a chain of
// fixed size chunks, and takes batch returns from thread caches.
// Heads are published with release stores and read with acquire
// loads, the per-class spinflag is the only mutual exclusion.
type CentralCache struct {
	// 64-bit aligned stats
	cached int64 // bytes parked in class freelists

	heads   [Freelistsize]unsafe.Pointer
	locks   [Freelistsize]spinflag
	carvedb [Freelistsize]int64 // bytes carved into each class
	cachedb [Freelistsize]int64 // bytes parked per class
	pcache  *PageCache

	// configuration
	spanpages  int64
	batchmax   int64
	batchbytes int64
	logprefix  string
}

// NewCentralCache create the broker tier over a page tier.
func NewCentralCache(setts s.Settings, pcache *PageCache) *CentralCache {
	ccache := &CentralCache{
		pcache:     pcache,
		spanpages:  setts.Int64("spanpages"),
		batchmax:   setts.Int64("batchmax"),
		batchbytes: setts.Int64("batchbytes"),
		logprefix:  "[malloc.central]",
	}
	if ccache.batchmax < 2 {
		panicerr("batchmax %v too small", ccache.batchmax)
	}
	log.Infof(
		"%v started, spanpages:%v batchmax:%v batchbytes:%v\n",
		ccache.logprefix, ccache.spanpages, ccache.batchmax,
		ccache.batchbytes)
	return ccache
}

// batchfor number of chunks a thread cache moves in one batch for a
// size class, decreasing with chunk size, never less than two.
func (ccache *CentralCache) batchfor(index int) int64 {
	batch := ccache.batchbytes / Classsize(index)
	if batch > ccache.batchmax {
		batch = ccache.batchmax
	} else if batch < 2 {
		batch = 2
	}
	return batch
}

// Fetchrange detach upto `want` chunks of the class freelist and
// return the nil-terminated sub-chain with the count taken, the
// count may come up short when a fresh span carves into fewer chunks
// than requested. Fails with ErrorOutofMemory from the page tier.
// The class lock is released on every control-flow exit.
func (ccache *CentralCache) Fetchrange(
	index int, want int64) (unsafe.Pointer, int64, error) {

	if index < 0 || index >= Freelistsize || want < 1 {
		return nil, 0, nil
	}
	ccache.locks[index].acquire()
	defer ccache.locks[index].release()

	head := atomic.LoadPointer(&ccache.heads[index])
	if head == nil {
		var err error
		if head, err = ccache.refill(index); err != nil {
			return nil, 0, err
		}
	}
	last, taken := head, int64(1)
	for taken < want {
		next := nextblock(last)
		if next == nil {
			break
		}
		last, taken = next, taken+1
	}
	rest := nextblock(last)
	setnextblock(last, nil)
	atomic.StorePointer(&ccache.heads[index], rest)
	atomic.AddInt64(&ccache.cached, -taken*Classsize(index))
	atomic.AddInt64(&ccache.cachedb[index], -taken*Classsize(index))
	return head, taken, nil
}

// Returnrange prepend a chain of `count` chunks onto the class
// freelist. The chain walk is bounded by count, a stray cycle in the
// caller's chain cannot hang the critical section.
func (ccache *CentralCache) Returnrange(
	start unsafe.Pointer, count int64, index int) {

	if start == nil || index < 0 || index >= Freelistsize {
		return
	}
	ccache.locks[index].acquire()
	defer ccache.locks[index].release()

	last, n := start, int64(1)
	for n < count && nextblock(last) != nil {
		last, n = nextblock(last), n+1
	}
	setnextblock(last, atomic.LoadPointer(&ccache.heads[index]))
	atomic.StorePointer(&ccache.heads[index], start)
	atomic.AddInt64(&ccache.cached, n*Classsize(index))
	atomic.AddInt64(&ccache.cachedb[index], n*Classsize(index))
}

// refill under the class lock, carve a fresh span into the class
// freelist and return its head. Chunks upto a full span's worth use
// spanpages pages, bigger chunks get a span sized to fit.
func (ccache *CentralCache) refill(index int) (unsafe.Pointer, error) {
	size := Classsize(index)
	npages := ccache.spanpages
	if size > npages*Pagesize {
		npages = ceil(size, Pagesize)
	}
	base, err := ccache.pcache.Allocspan(npages)
	if err != nil {
		return nil, err
	}
	head, count := carve(base, npages*Pagesize, size)
	atomic.StorePointer(&ccache.heads[index], head)
	atomic.AddInt64(&ccache.cached, count*size)
	atomic.AddInt64(&ccache.carvedb[index], count*size)
	atomic.AddInt64(&ccache.cachedb[index], count*size)
	return head, nil
}

// Cachedbytes bytes currently parked in the class freelists.
func (ccache *CentralCache) Cachedbytes() int64 {
	return atomic.LoadInt64(&ccache.cached)
}

// Utilization per-class chunk sizes and the percentage of carved
// memory currently out with thread caches or the application, for
// every class that has carved at least one span.
func (ccache *CentralCache) Utilization() ([]int, []float64) {
	sizes, zs := make([]int, 0), make([]float64, 0)
	for index := 0; index < Freelistsize; index++ {
		carved := atomic.LoadInt64(&ccache.carvedb[index])
		if carved == 0 {
			continue
		}
		cached := atomic.LoadInt64(&ccache.cachedb[index])
		sizes = append(sizes, int(Classsize(index)))
		zs = append(zs, (float64(carved-cached)/float64(carved))*100)
	}
	return sizes, zs
}
