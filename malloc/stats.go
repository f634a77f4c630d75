package malloc

import humanize "github.com/dustin/go-humanize"
import "github.com/bnclabs/golog"

// Info return process-wide memory accounting, as kept by the page
// tier. `alloc` counts every byte handed to the upper tiers, so bytes
// parked in the central tier or in goroutine caches count towards it,
// they are owned by the pool, not the application.
func Info() (capacity, heap, alloc, overhead int64) {
	ccache := defaultpool()
	capacity, heap, alloc, overhead = ccache.pcache.Info()
	return capacity, heap, alloc, overhead
}

// Utilization per size-class view over the process-wide pool, refer
// CentralCache.Utilization.
func Utilization() ([]int, []float64) {
	return defaultpool().Utilization()
}

// LogStatistics dump pool statistics via the configured logger.
func LogStatistics() {
	ccache := defaultpool()
	capacity, heap, alloc, overhead := ccache.pcache.Info()
	log.Infof(
		"[malloc] capacity:%v heap:%v alloc:%v overhead:%v\n",
		humanize.Bytes(uint64(capacity)), humanize.Bytes(uint64(heap)),
		humanize.Bytes(uint64(alloc)), humanize.Bytes(uint64(overhead)))
	log.Infof(
		"[malloc] central cached:%v spans:%v\n",
		humanize.Bytes(uint64(ccache.Cachedbytes())),
		ccache.pcache.h_spans.Logstring())
}
