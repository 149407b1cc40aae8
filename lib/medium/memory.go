package medium

import (
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
	"sync/atomic"
)

// memoryImpl keeps all entries in a concurrent map. Nothing survives the process.
type memoryImpl struct {
	data   *xsync.MapOf[string, string]
	closed atomic.Bool
}

// NewMemoryMedium creates an empty in-memory medium.
//
// Thread-safety: all methods are safe for concurrent use.
func NewMemoryMedium() IMedium {
	return &memoryImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see medium.IMedium)
// --------------------------------------------------------------------------

func (m *memoryImpl) SetRaw(key string, value string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Store(key, value)
	return nil
}

func (m *memoryImpl) RemoveRaw(key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Delete(key)
	return nil
}

func (m *memoryImpl) ClearAll() error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Clear()
	return nil
}

func (m *memoryImpl) GetRaw(key string) (string, bool, error) {
	if m.closed.Load() {
		return "", false, ErrClosed
	}
	value, ok := m.data.Load(key)
	return value, ok, nil
}

func (m *memoryImpl) Keys() ([]string, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	keys := make([]string, 0, m.data.Size())
	m.data.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryImpl) Count() (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	return m.data.Size(), nil
}

func (m *memoryImpl) Info() Info {
	return Info{
		Type:       ImplMemory,
		Persistent: false,
	}
}

func (m *memoryImpl) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.data.Clear()
	}
	return nil
}

// MemoryFactory returns a Factory creating fresh in-memory media
func MemoryFactory() Factory {
	return func() (IMedium, error) {
		return NewMemoryMedium(), nil
	}
}
