package malloc

import "sync"
import "testing"
import "unsafe"

import s "github.com/bnclabs/gosettings"
import "github.com/stretchr/testify/require"

func testsettings(capacity int64) s.Settings {
	return s.Settings{
		"capacity":   capacity,
		"spanpages":  Spanpages,
		"batchmax":   Batchmax,
		"batchbytes": Maxbatchbytes,
	}
}

// testsource page source over heap buffers, counts pages in flight.
type testsource struct {
	mu       sync.Mutex
	acquired int64
	released int64
	regions  map[uintptr][]byte
}

func newtestsource() *testsource {
	return &testsource{regions: make(map[uintptr][]byte)}
}

func (src *testsource) Acquire(npages int64) unsafe.Pointer {
	buf := make([]byte, npages*Pagesize)
	base := unsafe.Pointer(&buf[0])
	src.mu.Lock()
	src.regions[uintptr(base)] = buf
	src.acquired += npages
	src.mu.Unlock()
	return base
}

func (src *testsource) Release(base unsafe.Pointer, npages int64) {
	src.mu.Lock()
	delete(src.regions, uintptr(base))
	src.released += npages
	src.mu.Unlock()
}

func TestPageCacheReuse(t *testing.T) {
	src := newtestsource()
	pcache := NewPageCache(testsettings(1024*1024*1024), src)

	base, err := pcache.Allocspan(8)
	require.NoError(t, err)
	require.NotNil(t, base)
	require.Equal(t, int64(8), src.acquired)

	pcache.Freespan(base)
	again, err := pcache.Allocspan(8)
	require.NoError(t, err)
	require.Equal(t, base, again)
	require.Equal(t, int64(8), src.acquired, "span was not recycled")
}

func TestPageCacheSplit(t *testing.T) {
	src := newtestsource()
	pcache := NewPageCache(testsettings(1024*1024*1024), src)

	base, _ := pcache.Allocspan(8)
	pcache.Freespan(base)

	// smallest fitting span is split, remainder stays free
	first, err := pcache.Allocspan(3)
	require.NoError(t, err)
	require.Equal(t, base, first)
	require.Equal(t, int64(8), src.acquired)

	rem, err := pcache.Allocspan(5)
	require.NoError(t, err)
	require.Equal(t,
		unsafe.Pointer(uintptr(base)+uintptr(3*Pagesize)), rem)
	require.Equal(t, int64(8), src.acquired)

	// both halves round-trip through the span record
	pcache.Freespan(first)
	pcache.Freespan(rem)
	again, _ := pcache.Allocspan(3)
	require.Equal(t, base, again)

	// split fragments cannot be unmapped, Release leaves them parked
	pcache.Release()
	require.Equal(t, int64(0), src.released)
	frag, _ := pcache.Allocspan(5)
	require.Equal(t,
		unsafe.Pointer(uintptr(base)+uintptr(3*Pagesize)), frag)
}

func TestPageCacheOOM(t *testing.T) {
	src := newtestsource()
	pcache := NewPageCache(testsettings(4*Pagesize), src)

	base, err := pcache.Allocspan(8)
	require.Nil(t, base)
	require.ErrorIs(t, err, ErrorOutofMemory)

	base, err = pcache.Allocspan(4)
	require.NoError(t, err)
	require.NotNil(t, base)

	_, err = pcache.Allocspan(1)
	require.ErrorIs(t, err, ErrorOutofMemory)

	// freeing makes room again without touching the OS
	pcache.Freespan(base)
	again, err := pcache.Allocspan(4)
	require.NoError(t, err)
	require.NotNil(t, again)
	require.Equal(t, int64(4), src.acquired)
}

func TestPageCacheInfo(t *testing.T) {
	src := newtestsource()
	pcache := NewPageCache(testsettings(1024*1024), src)

	capacity, heap, alloc, _ := pcache.Info()
	require.Equal(t, int64(1024*1024), capacity)
	require.Equal(t, int64(0), heap)
	require.Equal(t, int64(0), alloc)

	base, _ := pcache.Allocspan(8)
	_, heap, alloc, _ = pcache.Info()
	require.Equal(t, 8*Pagesize, heap)
	require.Equal(t, 8*Pagesize, alloc)

	pcache.Freespan(base)
	_, heap, alloc, _ = pcache.Info()
	require.Equal(t, 8*Pagesize, heap)
	require.Equal(t, int64(0), alloc)
}

func TestPageCacheBadFree(t *testing.T) {
	src := newtestsource()
	pcache := NewPageCache(testsettings(1024*1024), src)
	buf := make([]byte, 64)
	require.Panics(t, func() {
		pcache.Freespan(unsafe.Pointer(&buf[0]))
	})
}

func TestPageCacheRelease(t *testing.T) {
	src := newtestsource()
	pcache := NewPageCache(testsettings(1024*1024), src)

	base, _ := pcache.Allocspan(8)
	held, err := pcache.Allocspan(4)
	require.NoError(t, err)
	pcache.Freespan(base)
	pcache.Release()
	require.Equal(t, int64(8), src.released, "free spans go back to the OS")

	// held spans are untouched by Release
	require.NotNil(t, held)
	require.Equal(t, int64(12), src.acquired)
}

func TestOSPageSource(t *testing.T) {
	src := ospagesource()
	base := src.Acquire(2)
	require.NotNil(t, base)
	require.Equal(t, uintptr(0), uintptr(base)%uintptr(Pagesize))

	// the memory is usable across the whole span
	p := (*byte)(base)
	*p = 0xAB
	q := (*byte)(unsafe.Pointer(uintptr(base) + uintptr(2*Pagesize-1)))
	*q = 0xCD
	require.Equal(t, byte(0xAB), *p)
	src.Release(base, 2)
}
