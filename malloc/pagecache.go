package malloc

import "sort"
import "sync"
import "unsafe"

import "github.com/youngyangyang04/memory-pool/api"
import "github.com/youngyangyang04/memory-pool/lib"
import s "github.com/bnclabs/gosettings"
import "github.com/bnclabs/golog"

// PageCache leaf tier, obtains page-aligned regions from the OS and
// vends spans, contiguous runs of pages. Returned spans are kept in
// per-page-count freelists and re-split to satisfy later requests,
// there is no address-based coalescing. All operations serialize on
// a single mutex, PageCache traffic is rare relative to the upper
// tiers.
type PageCache struct {
	// 64-bit aligned stats
	heap  int64 // bytes obtained from OS
	freeb int64 // bytes parked in freespans

	mu        sync.Mutex
	freespans map[int64][]uintptr // page-count -> free span bases
	spancount []int64             // sorted page-counts with free spans
	spanmap   map[uintptr]int64   // span base -> page count
	osmap     map[uintptr]int64   // base -> page count, as acquired
	src       api.PageSource
	h_spans   *lib.SpanHistogram  // page-count distribution

	// configuration
	capacity  int64 // ceiling on heap
	logprefix string
}

// NewPageCache create the page tier over an OS page source. Passing
// src as nil wires the platform source, anonymous memory mappings.
func NewPageCache(setts s.Settings, src api.PageSource) *PageCache {
	if src == nil {
		src = ospagesource()
	}
	pcache := &PageCache{
		freespans: make(map[int64][]uintptr),
		spanmap:   make(map[uintptr]int64),
		osmap:     make(map[uintptr]int64),
		src:       src,
		h_spans:   lib.NewSpanHistogram(64, 8),
		capacity:  setts.Int64("capacity"),
		logprefix: "[malloc.pagecache]",
	}
	log.Infof("%v started with capacity %v\n", pcache.logprefix, pcache.capacity)
	return pcache
}

// Allocspan return the base of a span of exactly npages pages. The
// smallest free span with at least npages is re-used, split when
// larger; otherwise fresh pages are obtained from the OS. Fails with
// ErrorOutofMemory when the capacity ceiling or the OS refuse the
// pages.
func (pcache *PageCache) Allocspan(npages int64) (unsafe.Pointer, error) {
	if npages <= 0 {
		panicerr("Allocspan called with %v pages", npages)
	}
	pcache.mu.Lock()
	defer pcache.mu.Unlock()

	if base, ok := pcache.popspan(npages); ok {
		return unsafe.Pointer(base), nil
	}
	bytes := npages * Pagesize
	if pcache.heap+bytes > pcache.capacity {
		return nil, ErrorOutofMemory
	}
	base := pcache.src.Acquire(npages)
	if base == nil {
		return nil, ErrorOutofMemory
	}
	pcache.heap += bytes
	pcache.spanmap[uintptr(base)] = npages
	pcache.osmap[uintptr(base)] = npages
	pcache.h_spans.Add(npages)
	log.Debugf("%v acquired %v pages from OS\n", pcache.logprefix, npages)
	return base, nil
}

// Freespan return a span obtained from Allocspan, the page count is
// recovered from the span record.
func (pcache *PageCache) Freespan(base unsafe.Pointer) {
	pcache.mu.Lock()
	defer pcache.mu.Unlock()

	npages, ok := pcache.spanmap[uintptr(base)]
	if !ok {
		panicerr("Freespan: unknown span base %x", base)
	}
	pcache.pushspan(uintptr(base), npages)
}

// popspan under lock, take the smallest free span of count >= npages,
// splitting it when larger.
func (pcache *PageCache) popspan(npages int64) (uintptr, bool) {
	off := sort.Search(len(pcache.spancount), func(i int) bool {
		return pcache.spancount[i] >= npages
	})
	if off == len(pcache.spancount) {
		return 0, false
	}
	count := pcache.spancount[off]
	spans := pcache.freespans[count]
	base := spans[len(spans)-1]
	if spans = spans[:len(spans)-1]; len(spans) == 0 {
		delete(pcache.freespans, count)
		pcache.spancount = append(
			pcache.spancount[:off], pcache.spancount[off+1:]...)
	} else {
		pcache.freespans[count] = spans
	}
	pcache.freeb -= count * Pagesize
	if count > npages { // split, remainder goes back as a free span
		rembase := base + uintptr(npages*Pagesize)
		pcache.spanmap[base] = npages
		pcache.pushspan(rembase, count-npages)
	}
	return base, true
}

// pushspan under lock, park a free span and keep spancount sorted.
func (pcache *PageCache) pushspan(base uintptr, npages int64) {
	pcache.spanmap[base] = npages
	spans, ok := pcache.freespans[npages]
	if !ok {
		off := sort.Search(len(pcache.spancount), func(i int) bool {
			return pcache.spancount[i] >= npages
		})
		pcache.spancount = append(pcache.spancount, 0)
		copy(pcache.spancount[off+1:], pcache.spancount[off:])
		pcache.spancount[off] = npages
	}
	pcache.freespans[npages] = append(spans, base)
	pcache.freeb += npages * Pagesize
}

// Info return memory accounting for the page tier. `alloc` counts
// bytes handed out to the upper tiers.
func (pcache *PageCache) Info() (capacity, heap, alloc, overhead int64) {
	pcache.mu.Lock()
	defer pcache.mu.Unlock()

	self := int64(unsafe.Sizeof(*pcache))
	mapsz := int64(len(pcache.spanmap)+len(pcache.spancount)) * 24
	return pcache.capacity, pcache.heap, pcache.heap - pcache.freeb,
		self + mapsz
}

// Release free spans back to the OS. Only spans that are whole OS
// acquisitions can be unmapped, a span that was split stays recorded
// and is reclaimed at process teardown, as are spans still held by
// the upper tiers or the application.
func (pcache *PageCache) Release() {
	pcache.mu.Lock()
	defer pcache.mu.Unlock()

	for npages, spans := range pcache.freespans {
		kept := spans[:0]
		for _, base := range spans {
			if pcache.osmap[base] != npages { // split fragment
				kept = append(kept, base)
				continue
			}
			pcache.src.Release(unsafe.Pointer(base), npages)
			delete(pcache.spanmap, base)
			delete(pcache.osmap, base)
			pcache.heap -= npages * Pagesize
			pcache.freeb -= npages * Pagesize
		}
		if len(kept) == 0 {
			delete(pcache.freespans, npages)
			off := sort.Search(len(pcache.spancount), func(i int) bool {
				return pcache.spancount[i] >= npages
			})
			pcache.spancount = append(
				pcache.spancount[:off], pcache.spancount[off+1:]...)
		} else {
			pcache.freespans[npages] = kept
		}
	}
	log.Infof("%v released free spans\n", pcache.logprefix)
}
