package lib

import "testing"

func TestSizeStats(t *testing.T) {
	s := &SizeStats{}
	if x := s.Samples(); x != 0 {
		t.Errorf("expected %v, got %v", 0, x)
	} else if y := s.Mean(); y != 0 {
		t.Errorf("expected %v, got %v", 0, y)
	}

	for _, size := range []int64{100, 8, 300, 8, 84} {
		s.Add(size)
	}
	if x := s.Samples(); x != 5 {
		t.Errorf("expected %v, got %v", 5, x)
	}
	if x := s.Min(); x != 8 {
		t.Errorf("expected %v, got %v", 8, x)
	}
	if x := s.Max(); x != 300 {
		t.Errorf("expected %v, got %v", 300, x)
	}
	if x := s.Mean(); x != 100 {
		t.Errorf("expected %v, got %v", 100, x)
	}
}

func TestSpanHistogram(t *testing.T) {
	h := NewSpanHistogram(64, 8)
	for _, npages := range []int64{1, 8, 8, 9, 64, 65, 1000} {
		h.Add(npages)
	}
	if x := h.Samples(); x != 7 {
		t.Errorf("expected %v, got %v", 7, x)
	}
	ref := "{1-8:3, 9-16:1, 57-64:1, >64:2}"
	if x := h.Logstring(); x != ref {
		t.Errorf("expected %v, got %v", ref, x)
	}

	// panic case
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		NewSpanHistogram(60, 8)
	}()
}

func BenchmarkSizeStatsAdd(b *testing.B) {
	s := &SizeStats{}
	for i := 0; i < b.N; i++ {
		s.Add(int64(i))
	}
}

func BenchmarkSpanHistogramAdd(b *testing.B) {
	h := NewSpanHistogram(64, 8)
	for i := 0; i < b.N; i++ {
		h.Add(int64(i & 127))
	}
}
