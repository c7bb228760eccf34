package services

import "sync"

// userLock is one user's mutex plus the number of holders and waiters. The
// count lets the registry drop the entry once nobody references it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes work per user identifier. A text message and a
// payment webhook for the same user can arrive together; without this the
// read-mutate-write sequence on their session races and one event's effects
// get lost. Unrelated users never block each other. Entries are removed when
// the last holder unlocks, so the registry stays bounded by in-flight work
// rather than by every phone number ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*userLock)}
}

// Lock acquires the mutex for the key and returns the unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &userLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
