package store

import (
	"github.com/ValentinKolb/localdb/lib/medium"
	"sync"
)

// TenantKey is the physical key the tenant id is persisted under.
// It is never namespaced.
const TenantKey = "@@appId"

// tenantSeparator joins the tenant id and the logical key
const tenantSeparator = ":"

// tenantResolver maps logical keys to physical keys.
// The in-memory id is authoritative for key resolution; the persisted copy
// restores it when a store is opened on the same medium again.
//
// Thread-safety: all methods are safe for concurrent use.
type tenantResolver struct {
	mu     sync.RWMutex
	medium medium.IMedium
	id     string
}

func newTenantResolver(m medium.IMedium) *tenantResolver {
	return &tenantResolver{medium: m}
}

// load reads the persisted tenant into memory and returns it
func (r *tenantResolver) load() (string, error) {
	id, ok, err := r.medium.GetRaw(TenantKey)
	if err != nil {
		return "", WrapError(RetCMediumError, "failed to read tenant", err)
	}
	if !ok {
		id = ""
	}

	r.mu.Lock()
	r.id = id
	r.mu.Unlock()
	return id, nil
}

// set switches the in-memory tenant and persists it verbatim.
// An empty id unsets the tenant and removes the persisted copy.
// Existing data is neither migrated nor cleared.
func (r *tenantResolver) set(id string) error {
	r.mu.Lock()
	r.id = id
	r.mu.Unlock()

	if id == "" {
		if err := r.medium.RemoveRaw(TenantKey); err != nil {
			return WrapError(RetCMediumError, "failed to remove tenant", err)
		}
		return nil
	}
	if err := r.medium.SetRaw(TenantKey, id); err != nil {
		return WrapError(RetCMediumError, "failed to persist tenant", err)
	}
	return nil
}

// get returns the in-memory tenant, falling back to the persisted one
func (r *tenantResolver) get() (string, bool, error) {
	r.mu.RLock()
	id := r.id
	r.mu.RUnlock()
	if id != "" {
		return id, true, nil
	}

	id, ok, err := r.medium.GetRaw(TenantKey)
	if err != nil {
		return "", false, WrapError(RetCMediumError, "failed to read tenant", err)
	}
	return id, ok && id != "", nil
}

// prefix returns "<tenant>:" or "" when no tenant is set
func (r *tenantResolver) prefix() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.id == "" {
		return ""
	}
	return r.id + tenantSeparator
}

// resolve maps a logical key to its physical key
func (r *tenantResolver) resolve(key string) string {
	return r.prefix() + key
}
