package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lockCount(k *keyedMutex) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func TestKeyedMutexReleasesEntryAfterUnlock(t *testing.T) {
	locks := newKeyedMutex()

	unlock := locks.Lock("2348012345678")
	assert.Equal(t, 1, lockCount(locks))

	unlock()
	assert.Equal(t, 0, lockCount(locks), "registry must not retain idle entries")
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("same")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, lockCount(locks))
}

func TestKeyedMutexStaysBoundedAcrossManyUsers(t *testing.T) {
	locks := newKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := locks.Lock(fmt.Sprintf("23480%06d", i))
			unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, lockCount(locks))
}

func TestKeyedMutexWaiterReusesLiveEntry(t *testing.T) {
	locks := newKeyedMutex()

	unlockA := locks.Lock("user")

	released := make(chan struct{})
	go func() {
		unlockB := locks.Lock("user")
		unlockB()
		close(released)
	}()

	// The waiter holds a reference, so the entry survives the first unlock
	// and the second holder still serializes against it.
	unlockA()
	<-released
	assert.Equal(t, 0, lockCount(locks))
}
