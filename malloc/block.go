// Freelists are threaded through the free chunks themselves: the
// first machine word of a free chunk holds the pointer to the next
// free chunk of the same class, or nil. Reading that word is defined
// only while the chunk sits in a freelist.

package malloc

import "unsafe"

func nextblock(block unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(block)
}

func setnextblock(block, next unsafe.Pointer) {
	*(*unsafe.Pointer)(block) = next
}

// carve a span of `nbytes` at `base` into a nil-terminated freelist
// of fixed `size` chunks, trailing bytes that cannot fit a chunk are
// wasted. Returns the list head and the number of chunks.
func carve(base unsafe.Pointer, nbytes, size int64) (unsafe.Pointer, int64) {
	count := nbytes / size
	if count == 0 {
		return nil, 0
	}
	if (uintptr(base) & uintptr(Alignment-1)) != 0 {
		panicerr("span base %x is not %v byte aligned", base, Alignment)
	}
	block := base
	for i := int64(1); i < count; i++ {
		next := unsafe.Pointer(uintptr(base) + uintptr(i*size))
		setnextblock(block, next)
		block = next
	}
	setnextblock(block, nil)
	return base, count
}
