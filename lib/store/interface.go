package store

import (
	"github.com/ValentinKolb/localdb/lib/medium"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore defines the interface for a namespaced, observable key-value store.
// Keys passed to the store are logical keys; the store maps them to physical keys of
// the underlying medium by prefixing the current tenant.
type IStore interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set runs the set pipeline of the key and the set middleware chain, then encodes
	// and writes the value and notifies the key's listeners.
	// A nil value is rejected with a RetCEncodeError.
	Set(key string, value any) error

	// Remove deletes the key and notifies its listeners with a nil value.
	// Failures are reported to the user and logged, never returned.
	Remove(key string)

	// Clear removes every key of the current tenant (or every key when no tenant is
	// set) and emits a single event to the WatchClear listeners.
	Clear()

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get returns the decoded value for the key after the get pipeline and the get
	// middleware chain. Missing keys and failures yield nil.
	Get(key string) any

	// Key returns the logical key at the index of the tenant scoped key list.
	// The boolean return value is false when the index is out of range.
	Key(index int) (string, bool)

	// Length returns the number of keys in the tenant scope.
	Length() int

	// --------------------------------------------------------------------------
	// Tenant
	// --------------------------------------------------------------------------

	// SetTenant switches the tenant and persists it. An empty id unsets the tenant.
	SetTenant(id string) error

	// Tenant returns the current tenant id.
	// The boolean return value indicates whether a tenant is set.
	Tenant() (string, bool)

	// --------------------------------------------------------------------------
	// Observation
	// --------------------------------------------------------------------------

	// Watch subscribes to changes of a logical key (resolved at subscribe time).
	Watch(key string, listener Listener) (unsubscribe func())

	// WatchClear subscribes to the bulk invalidation emitted by Clear.
	WatchClear(listener Listener) (unsubscribe func())

	// NotifyChange delivers an event to the listeners of a physical key.
	// WatchClear listeners are never reached, not even for the empty key.
	NotifyChange(physicalKey string, value any)

	// --------------------------------------------------------------------------
	// Interceptors
	// --------------------------------------------------------------------------

	AddMiddleware(dir Direction, m Middleware) (MiddlewareID, error)
	RemoveMiddleware(dir Direction, id MiddlewareID) error
	AddBusinessPipeline(dir Direction, key string, p Pipeline) error
	RemoveBusinessPipeline(dir Direction, key string) error

	// --------------------------------------------------------------------------
	// Chat History
	// --------------------------------------------------------------------------

	SaveChatHistory(messages []Message) (ChatHistory, error)
	LoadChatHistories() ([]ChatHistory, error)

	// --------------------------------------------------------------------------
	// Lifecycle
	// --------------------------------------------------------------------------

	// EnableLogging toggles the verbose operation trace. Errors are always logged.
	EnableLogging(enabled bool)

	// Info returns information about the underlying medium.
	Info() medium.Info

	// Close closes the underlying medium.
	Close() error
}

// Factory is a function type that creates a new store, e.g. on a fresh medium.
type Factory func() (IStore, error)
