package engine

import "sync"

// keyLocks hands out one mutex per key so operations on the same aggregate
// serialize while unrelated aggregates proceed concurrently. Locks are never
// evicted; the set of hot aggregates is bounded by the working set.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}
