// Package malloc supplies custom memory management for programs that
// allocate and free many small-to-medium objects across goroutines,
// with a limited scope:
//
//   - Memory is organized in three tiers. Each goroutine holds a
//     private ThreadCache of per-size-class freelists, a process-wide
//     CentralCache refills thread caches in batches, and a
//     process-wide PageCache carves page-spans obtained from the OS.
//   - This is a sized-free allocator: Free() shall be passed the same
//     size that was passed to Alloc().
//   - Once a span is obtained from the OS it is not automatically
//     given back. Spans are recycled through the PageCache freelists
//     and released only when the PageCache itself is Released.
//   - Memory chunks allocated by this package are always 64-bit
//     aligned.
//   - ThreadCache methods are not thread safe; an instance shall be
//     used by a single goroutine. The package-level Alloc()/Free()
//     resolve the calling goroutine's cache and are safe for
//     concurrent use.
//
// Applications are allowed to allocate chunks of any size. Requests
// up to Maxbytes are rounded up to a size class and served from the
// tier caches; larger requests go straight to the PageCache with no
// pooling benefit.
package malloc
