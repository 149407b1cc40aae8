package middleware

import (
	"errors"
	"github.com/ValentinKolb/localdb/lib/store"
	"sync/atomic"
)

// ErrReadOnly is the cause of every write rejected by a ReadOnly middleware
var ErrReadOnly = errors.New("store is read-only")

// ReadOnly rejects writes while enabled. Reads always pass.
type ReadOnly struct {
	enabled atomic.Bool
}

// NewReadOnly returns an enabled read-only guard. Register it for the set direction.
func NewReadOnly() *ReadOnly {
	r := &ReadOnly{}
	r.enabled.Store(true)
	return r
}

// SetEnabled toggles the guard
func (r *ReadOnly) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled reports whether writes are rejected
func (r *ReadOnly) Enabled() bool {
	return r.enabled.Load()
}

func (r *ReadOnly) Handle(call *store.Call, next store.Handler) (any, error) {
	if call.Direction == store.DirSet && r.enabled.Load() {
		return nil, store.WrapError(store.RetCReadOnly, "rejected write to "+call.Key, ErrReadOnly)
	}
	return next(call)
}
