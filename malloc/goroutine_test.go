package malloc

import "sync"
import "testing"

import s "github.com/bnclabs/gosettings"

func TestOwncache(t *testing.T) {
	mine := owncache()
	if again := owncache(); again != mine {
		t.Errorf("expected %p, got %p", mine, again)
	}

	var other *ThreadCache
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ReleaseCache()
		other = owncache()
	}()
	wg.Wait()
	if other == mine {
		t.Errorf("goroutines share cache %p", mine)
	}
}

func TestReleaseCache(t *testing.T) {
	mine := owncache()
	ReleaseCache()
	if again := owncache(); again == mine {
		t.Errorf("expected a fresh cache, got %p", again)
	}
}

func TestSetupLate(t *testing.T) {
	defaultpool()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic")
		}
	}()
	Setup(s.Settings{"spanpages": int64(4)})
}

func TestInfo(t *testing.T) {
	ptr := Alloc(64)
	capacity, heap, alloc, _ := Info()
	if capacity <= 0 {
		t.Errorf("unexpected capacity %v", capacity)
	} else if heap <= 0 {
		t.Errorf("unexpected heap %v", heap)
	} else if alloc <= 0 {
		t.Errorf("unexpected alloc %v", alloc)
	}
	Free(ptr, 64)
}
