package store

import (
	"fmt"
	"github.com/google/uuid"
	"sync"
)

// --------------------------------------------------------------------------
// Direction
// --------------------------------------------------------------------------

// Direction selects the get or the set side of the middleware and pipeline registries
type Direction string

const (
	DirGet Direction = "get"
	DirSet Direction = "set"
)

// validate fails fast for anything but "get" and "set"
func (d Direction) validate() error {
	if d != DirGet && d != DirSet {
		return NewError(RetCInvalidDirection, fmt.Sprintf(`direction must be either "get" or "set", got %q`, string(d)))
	}
	return nil
}

// --------------------------------------------------------------------------
// Middleware Types
// --------------------------------------------------------------------------

// Call is the unit of work passed down a middleware chain.
//
// Key is the physical (tenant prefixed) key. For a set, Value is the value about to
// be written; for a get, it is the decoded and pipeline processed value that the
// end of the chain returns. Middleware may modify both before calling next.
type Call struct {
	Direction Direction
	Key       string
	Value     any
}

// Handler continues a chain. For a get the returned value is the result of the read;
// for a set it is ignored.
type Handler func(call *Call) (any, error)

// Middleware intercepts every get or set regardless of the key.
// Handle decides whether to call next. Returning without calling next ends the
// chain early: a set is then not written (and not notified), and a get returns
// whatever Handle returns.
type Middleware interface {
	Handle(call *Call, next Handler) (any, error)
}

// MiddlewareFunc adapts a function to the Middleware interface
type MiddlewareFunc func(call *Call, next Handler) (any, error)

func (f MiddlewareFunc) Handle(call *Call, next Handler) (any, error) {
	return f(call, next)
}

// MiddlewareID identifies a registration and is used to remove it again
type MiddlewareID string

// --------------------------------------------------------------------------
// Middleware Registry
// --------------------------------------------------------------------------

type registration struct {
	id         MiddlewareID
	middleware Middleware
}

// middlewareRegistry keeps an ordered list of middleware per direction together with
// the composed chain. The chain is rebuilt whenever a registration changes, so a call
// only loads the cached handler.
type middlewareRegistry struct {
	mu        sync.RWMutex
	entries   map[Direction][]registration
	chains    map[Direction]Handler
	terminals map[Direction]Handler
}

func newMiddlewareRegistry(getTerminal, setTerminal Handler) *middlewareRegistry {
	r := &middlewareRegistry{
		entries: map[Direction][]registration{},
		chains:  map[Direction]Handler{},
		terminals: map[Direction]Handler{
			DirGet: getTerminal,
			DirSet: setTerminal,
		},
	}
	r.chains[DirGet] = getTerminal
	r.chains[DirSet] = setTerminal
	return r
}

// add appends a middleware to the end of the chain for the direction
func (r *middlewareRegistry) add(dir Direction, m Middleware) (MiddlewareID, error) {
	if err := dir.validate(); err != nil {
		return "", err
	}
	if m == nil {
		return "", NewError(RetCInvalidOperation, "middleware must not be nil")
	}

	id := MiddlewareID(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[dir] = append(r.entries[dir], registration{id: id, middleware: m})
	r.rebuild(dir)
	return id, nil
}

// remove deletes a registration. Unknown ids are ignored.
func (r *middlewareRegistry) remove(dir Direction, id MiddlewareID) error {
	if err := dir.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[dir]
	for i, e := range entries {
		if e.id == id {
			// copy so chains composed from the old slice stay intact
			next := make([]registration, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			r.entries[dir] = next
			r.rebuild(dir)
			return nil
		}
	}
	return nil
}

// chain returns the composed handler for the direction
func (r *middlewareRegistry) chain(dir Direction) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chains[dir]
}

// len returns the number of registered middleware for the direction
func (r *middlewareRegistry) len(dir Direction) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[dir])
}

// rebuild recomposes the chain of a direction. The caller must hold the write lock.
func (r *middlewareRegistry) rebuild(dir Direction) {
	r.chains[dir] = compose(r.entries[dir], r.terminals[dir])
}

// compose folds the registrations right to left around the terminal handler, so the
// first registered middleware is the outermost one.
func compose(entries []registration, terminal Handler) Handler {
	handler := terminal
	for i := len(entries) - 1; i >= 0; i-- {
		m, next := entries[i].middleware, handler
		handler = func(call *Call) (any, error) {
			return m.Handle(call, next)
		}
	}
	return handler
}
