// Go has no thread-local storage, the thread tier is keyed to the
// calling goroutine instead. A sharded registry maps goroutine-id to
// its lazily created ThreadCache, the shard mutex guards only the
// registry lookup and never the cache's freelists, a registered
// cache is touched by its goroutine alone.

package malloc

import "sync"
import "sync/atomic"
import "unsafe"

import s "github.com/bnclabs/gosettings"
import "github.com/bnclabs/golog"
import "github.com/petermattis/goid"

const cacheshards = 64 // power of 2

type cacheshard struct {
	mu     sync.Mutex
	caches map[int64]*ThreadCache
}

var shards [cacheshards]cacheshard

var initonce sync.Once
var initdone int32
var memsetts s.Settings
var pcache *PageCache
var ccache *CentralCache

// Setup the process-wide pool with settings, refer Defaultsettings.
// Shall be called before the first allocation, later calls panic.
func Setup(setts s.Settings) {
	if atomic.LoadInt32(&initdone) == 1 {
		panicerr("Setup called after the pool is in use")
	}
	memsetts = Defaultsettings().Mixin(setts)
}

func defaultpool() *CentralCache {
	initonce.Do(func() {
		if memsetts == nil {
			memsetts = Defaultsettings()
		}
		pcache = NewPageCache(memsetts, nil)
		ccache = NewCentralCache(memsetts, pcache)
		atomic.StoreInt32(&initdone, 1)
		log.Infof("[malloc] pool initialized\n")
	})
	return ccache
}

func owncache() *ThreadCache {
	id := goid.Get()
	shard := &shards[id&(cacheshards-1)]
	shard.mu.Lock()
	tcache, ok := shard.caches[id]
	if !ok {
		if shard.caches == nil {
			shard.caches = make(map[int64]*ThreadCache)
		}
		tcache = NewThreadCache(defaultpool())
		shard.caches[id] = tcache
	}
	shard.mu.Unlock()
	return tcache
}

// Alloc a chunk of `n` bytes from the calling goroutine's cache,
// nil on out-of-memory. Safe for concurrent use.
func Alloc(n int64) unsafe.Pointer {
	return owncache().Alloc(n)
}

// Free a chunk back through the calling goroutine's cache. `n` shall
// be the size that was passed to Alloc. A chunk may be freed by a
// goroutine other than its allocator.
func Free(ptr unsafe.Pointer, n int64) {
	owncache().Free(ptr, n)
}

// ReleaseCache flush the calling goroutine's cache back to the
// central tier and drop it from the registry. Call before the
// goroutine exits, otherwise its residual freelists are retained
// until process teardown.
func ReleaseCache() {
	id := goid.Get()
	shard := &shards[id&(cacheshards-1)]
	shard.mu.Lock()
	tcache, ok := shard.caches[id]
	delete(shard.caches, id)
	shard.mu.Unlock()
	if ok {
		tcache.Release()
	}
}
