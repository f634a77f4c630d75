//go:build unix

package malloc

import "sync"
import "unsafe"

import "github.com/youngyangyang04/memory-pool/api"
import "golang.org/x/sys/unix"

// mmapsource OS page source over anonymous private mappings. The
// mapping slice is remembered so the span can be unmapped with the
// same value it was mapped with.
type mmapsource struct {
	mu      sync.Mutex
	regions map[uintptr][]byte
}

func ospagesource() api.PageSource {
	return &mmapsource{regions: make(map[uintptr][]byte)}
}

// Acquire implement api.PageSource{} interface.
func (src *mmapsource) Acquire(npages int64) unsafe.Pointer {
	data, err := unix.Mmap(
		-1, 0, int(npages*Pagesize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil
	}
	base := unsafe.Pointer(&data[0])
	src.mu.Lock()
	src.regions[uintptr(base)] = data
	src.mu.Unlock()
	return base
}

// Release implement api.PageSource{} interface.
func (src *mmapsource) Release(base unsafe.Pointer, npages int64) {
	src.mu.Lock()
	data, ok := src.regions[uintptr(base)]
	delete(src.regions, uintptr(base))
	src.mu.Unlock()
	if !ok {
		panicerr("Release: unknown region %x", base)
	}
	unix.Munmap(data)
}
