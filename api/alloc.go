package api

import "unsafe"

// Mallocer interface for custom memory management. This is a
// sized-free allocator: callers shall pass to Free() the same size
// that was passed to Alloc().
type Mallocer interface {
	// Alloc allocate a chunk of `n` bytes. Allocated memory is
	// always 64-bit aligned. Returns nil on out-of-memory.
	Alloc(n int64) unsafe.Pointer

	// Free chunk back to the allocator. `n` shall be the size
	// argument used to allocate ptr.
	Free(ptr unsafe.Pointer, n int64)

	// Info of memory accounting for this allocator.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization per size-class chunk sizes and the percentage of
	// pooled memory in use.
	Utilization() ([]int, []float64)

	// Release this allocator and all its resources.
	Release()
}

// PageSource interface to the OS anonymous-memory facility. Regions
// returned by Acquire are page-aligned and span exactly
// `npages * pagesize` bytes.
type PageSource interface {
	// Acquire a page-aligned region of npages pages, nil on failure.
	Acquire(npages int64) unsafe.Pointer

	// Release a region previously obtained from Acquire, with the
	// same page count.
	Release(base unsafe.Pointer, npages int64)
}
