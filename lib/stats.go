package lib

import "fmt"
import "strings"

// SizeStats running distribution of the allocation sizes served by a
// cache: sample count, extremes and mean.
type SizeStats struct {
	n      int64
	minval int64
	maxval int64
	sum    int64
}

// Add an allocation size.
func (s *SizeStats) Add(size int64) {
	if s.n == 0 || size < s.minval {
		s.minval = size
	}
	if size > s.maxval {
		s.maxval = size
	}
	s.n++
	s.sum += size
}

// Samples number of allocations recorded.
func (s *SizeStats) Samples() int64 {
	return s.n
}

// Min smallest allocation size recorded.
func (s *SizeStats) Min() int64 {
	return s.minval
}

// Max largest allocation size recorded.
func (s *SizeStats) Max() int64 {
	return s.maxval
}

// Mean average allocation size.
func (s *SizeStats) Mean() int64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / s.n
}

// SpanHistogram counts spans by page-count bucket. Buckets are
// `width` pages wide upto `till` pages, larger spans land in one
// overflow bucket.
type SpanHistogram struct {
	n       int64
	width   int64
	buckets []int64 // last bucket holds the overflow
}

// NewSpanHistogram return an empty histogram over page counts.
func NewSpanHistogram(till, width int64) *SpanHistogram {
	if till <= 0 || width <= 0 || (till%width) != 0 {
		panic(fmt.Errorf("bad span histogram shape %v/%v", till, width))
	}
	return &SpanHistogram{
		width:   width,
		buckets: make([]int64, (till/width)+1),
	}
}

// Add a span of npages pages.
func (h *SpanHistogram) Add(npages int64) {
	off := int((npages - 1) / h.width)
	if npages < 1 || off >= len(h.buckets)-1 {
		off = len(h.buckets) - 1
	}
	h.buckets[off]++
	h.n++
}

// Samples number of spans recorded.
func (h *SpanHistogram) Samples() int64 {
	return h.n
}

// Logstring non-empty buckets as a loggable one-liner, like
// {1-8:12, 9-16:3, >64:1}.
func (h *SpanHistogram) Logstring() string {
	ss := make([]string, 0, len(h.buckets))
	for i := 0; i < len(h.buckets)-1; i++ {
		if h.buckets[i] == 0 {
			continue
		}
		from, till := int64(i)*h.width+1, int64(i+1)*h.width
		ss = append(ss, fmt.Sprintf("%v-%v:%v", from, till, h.buckets[i]))
	}
	if last := h.buckets[len(h.buckets)-1]; last > 0 {
		over := int64(len(h.buckets)-1) * h.width
		ss = append(ss, fmt.Sprintf(">%v:%v", over, last))
	}
	return "{" + strings.Join(ss, ", ") + "}"
}
