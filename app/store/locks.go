package store

import "sync"

// tableLocks hands out one mutex per table so read-modify-write sequences on
// the same table are totally ordered while different tables stay independent.
type tableLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTableLocks() *tableLocks {
	return &tableLocks{locks: make(map[string]*sync.Mutex)}
}

func (t *tableLocks) get(table string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[table]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[table] = lock
	}
	return lock
}
