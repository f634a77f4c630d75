package malloc

// Roundup size to the next multiple of Alignment. A size of zero is
// treated as a single byte, every allocation occupies at least one
// minimum-class chunk.
func Roundup(size int64) int64 {
	if size <= 0 {
		size = 1
	}
	return ((size + Alignment - 1) / Alignment) * Alignment
}

// Sizeindex return the size-class index for size. Valid only for
// sizes upto Maxbytes, larger sizes bypass the class tiers.
func Sizeindex(size int64) int {
	return int(Roundup(size)/Alignment) - 1
}

// Classsize return the chunk size for a size-class index.
func Classsize(index int) int64 {
	if index < 0 || index >= Freelistsize {
		panicerr("class index %v out of range", index)
	}
	return int64(index+1) * Alignment
}
