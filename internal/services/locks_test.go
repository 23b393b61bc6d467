package services

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesAndReleases(t *testing.T) {
	k := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		inside  = map[string]int{}
		total   = map[string]int{}
		overlap bool
	)
	for i := 0; i < 50; i++ {
		key := []string{"a", "b"}[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()

			// 同一 key 的临界区互斥，不同 key 之间另有保护
			k.mu.Lock()
			inside[key]++
			if inside[key] > 1 {
				overlap = true
			}
			k.mu.Unlock()

			k.mu.Lock()
			inside[key]--
			total[key]++
			k.mu.Unlock()
		}()
	}
	wg.Wait()

	if overlap {
		t.Error("two holders of the same key ran concurrently")
	}
	if total["a"] != 25 || total["b"] != 25 {
		t.Errorf("totals = %v", total)
	}
	if n := k.size(); n != 0 {
		t.Errorf("%d idle keys left in the map", n)
	}

	unlock := k.Lock("c")
	if n := k.size(); n != 1 {
		t.Errorf("held key missing from map, size = %d", n)
	}
	unlock()
	if n := k.size(); n != 0 {
		t.Errorf("released key still in map, size = %d", n)
	}
}
