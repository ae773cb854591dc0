package syncx

import (
	"sync"
)

type Map[TK comparable, TV any] struct {
	data sync.Map
}

func (m *Map[TK, TV]) Store(key TK, value TV) {
	m.data.Store(key, value)
}

func (m *Map[TK, TV]) Load(key TK) (TV, bool) {
	v, ok := m.data.Load(key)
	if !ok {
		var zero TV
		return zero, false
	}
	// nil values are stored as untyped nil
	v2, _ := v.(TV)
	return v2, true
}

func (m *Map[TK, TV]) LoadOrStore(key TK, value TV) (TV, bool) {
	v, ok := m.data.LoadOrStore(key, value)
	v2, _ := v.(TV)
	return v2, ok
}
