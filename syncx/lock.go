package syncx

import (
	"sync"
)

// LockMap hands out one mutex per key.
type LockMap[TK comparable] struct {
	locks Map[TK, *sync.Mutex]
}

func (lm *LockMap[TK]) LoadOrCreate(key TK) *sync.Mutex {
	m, ok := lm.locks.Load(key)
	if !ok {
		m, _ = lm.locks.LoadOrStore(key, &sync.Mutex{})
	}
	return m
}

// Memo computes a value at most once per key. Failed computations are not
// stored, so the next caller retries.
//
// The per-key lock is held while compute runs and is not reentrant: a compute
// that asks the same Memo for its own key deadlocks.
type Memo[TK comparable, TV any] struct {
	values Map[TK, TV]
	locks  LockMap[TK]
}

func (m *Memo[TK, TV]) LoadOrCompute(key TK, compute func() (TV, error)) (TV, error) {
	if v, ok := m.values.Load(key); ok {
		return v, nil
	}

	locker := m.locks.LoadOrCreate(key)
	locker.Lock()
	defer locker.Unlock()

	if v, ok := m.values.Load(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	m.values.Store(key, v)
	return v, nil
}
