package medium

import (
	"errors"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("medium")

// ErrClosed is returned by every operation on a closed medium
var ErrClosed = errors.New("medium is closed")

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMemory Implementation = "memory"
	ImplSQLite Implementation = "sqlite"
)

// Info describes a medium instance
type Info struct {
	Type       Implementation `json:"type"`
	Persistent bool           `json:"persistent"`
	Location   string         `json:"location,omitempty"`
}

// Factory is a function type that creates a new medium.
type Factory func() (IMedium, error)

// --------------------------------------------------------------------------
// Medium Interface
// --------------------------------------------------------------------------

// IMedium is the synchronous storage medium underneath a store.
// It maps physical keys to text blobs and knows nothing about tenants, codecs or
// notifications. Every call is atomic on its own; nothing is atomic across calls.
type IMedium interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// SetRaw inserts or updates the text for a key.
	SetRaw(key string, value string) (err error)

	// RemoveRaw deletes a key. Removing a missing key is not an error.
	RemoveRaw(key string) (err error)

	// ClearAll deletes every key of the medium.
	ClearAll() (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// GetRaw returns the text stored for a key.
	// The boolean return value indicates whether the key was found.
	GetRaw(key string) (value string, loaded bool, err error)

	// Keys returns all keys in ascending byte order.
	Keys() (keys []string, err error)

	// Count returns the number of keys.
	Count() (count int, err error)

	// --------------------------------------------------------------------------
	// Lifecycle
	// --------------------------------------------------------------------------

	// Info returns information about the medium.
	Info() (info Info)

	// Close releases the medium. Further calls return ErrClosed.
	Close() (err error)
}
