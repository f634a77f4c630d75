//go:build windows

package malloc

import "unsafe"

import "github.com/youngyangyang04/memory-pool/api"
import "golang.org/x/sys/windows"

// virtualallocsource OS page source over VirtualAlloc regions.
type virtualallocsource struct{}

func ospagesource() api.PageSource {
	return &virtualallocsource{}
}

// Acquire implement api.PageSource{} interface.
func (src *virtualallocsource) Acquire(npages int64) unsafe.Pointer {
	base, err := windows.VirtualAlloc(
		0, uintptr(npages*Pagesize),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil
	}
	return unsafe.Pointer(base)
}

// Release implement api.PageSource{} interface.
func (src *virtualallocsource) Release(base unsafe.Pointer, npages int64) {
	windows.VirtualFree(uintptr(base), 0, windows.MEM_RELEASE)
}
