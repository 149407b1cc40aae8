package store

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/localdb/lib/codec"
	"github.com/ValentinKolb/localdb/lib/medium"
	"github.com/ValentinKolb/localdb/lib/notify"
	"github.com/lni/dragonboat/v4/logger"
	"sort"
	"strings"
	"sync/atomic"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configure a store
type Options struct {
	// Tenant is applied (and persisted) on construction. When empty the tenant
	// persisted on the medium is used.
	Tenant string
	// Notifier surfaces failures to the user. Nil falls back to a log notifier.
	Notifier notify.INotifier
	// Logging enables the verbose operation trace.
	Logging bool
}

// DefaultOptions returns the default store options
func DefaultOptions() *Options {
	return &Options{
		Notifier: notify.NewLogNotifier(nil),
	}
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is the facade combining tenant resolution, encoding, pipelines, middleware
// and change notification on top of a medium.
//
// Thread-safety: a Store may be shared between goroutines. Pipelines, middleware and
// listeners are called without internal locks held, so they may call back into the
// store. A listener that writes the key it listens on recurses without bound.
type Store struct {
	medium   medium.IMedium
	notifier notify.INotifier
	logging  atomic.Bool

	tenant      *tenantResolver
	middlewares *middlewareRegistry
	pipelines   *pipelineRegistry
	bus         *changeBus
}

// NewStore creates a store on the medium.
// A missing tenant is not an error: the store warns the user once and keeps working
// without namespacing.
func NewStore(m medium.IMedium, opts *Options) *Store {
	if opts == nil {
		opts = DefaultOptions()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(nil)
	}

	s := &Store{
		medium:    m,
		notifier:  notifier,
		tenant:    newTenantResolver(m),
		pipelines: newPipelineRegistry(),
		bus:       newChangeBus(),
	}
	s.logging.Store(opts.Logging)
	s.middlewares = newMiddlewareRegistry(s.terminalGet, s.terminalSet)

	if opts.Tenant != "" {
		if err := s.tenant.set(opts.Tenant); err != nil {
			s.report(err, "failed to set tenant")
		}
	} else if _, err := s.tenant.load(); err != nil {
		s.report(err, "failed to load tenant")
	}

	if id, ok, _ := s.tenant.get(); ok {
		s.trace("using tenant: %s", id)
	} else {
		s.notifier.Notify(notify.KindWarning, "no tenant configured, keys are not namespaced")
	}
	return s
}

// trace logs when the verbose trace is enabled
func (s *Store) trace(format string, args ...any) {
	if s.logging.Load() {
		Logger.Infof(format, args...)
	}
}

// report logs the error and notifies the user
func (s *Store) report(err error, msg string) {
	Logger.Errorf("%s: %v", msg, err)
	s.notifier.Notify(notify.KindError, msg)
}

// EnableLogging toggles the verbose operation trace
func (s *Store) EnableLogging(enabled bool) {
	s.logging.Store(enabled)
}

// --------------------------------------------------------------------------
// Chain Terminals
// --------------------------------------------------------------------------

// terminalGet ends the get chain with the value computed before the chain
func (s *Store) terminalGet(call *Call) (any, error) {
	return call.Value, nil
}

// terminalSet ends the set chain: encode, write, then notify
func (s *Store) terminalSet(call *Call) (any, error) {
	raw, err := codec.Encode(call.Value)
	if err != nil {
		return nil, WrapError(RetCEncodeError, "failed to encode value", err)
	}
	if err := s.medium.SetRaw(call.Key, raw); err != nil {
		return nil, WrapError(RetCMediumError, "failed to write value", err)
	}
	s.NotifyChange(call.Key, call.Value)
	return nil, nil
}

// asStoreError keeps store errors as they are and wraps everything else
func asStoreError(err error, code RetCode, msg string) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return WrapError(code, msg, err)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Get(key string) any {
	physicalKey := s.tenant.resolve(key)
	value, err := s.get(key, physicalKey)
	if err != nil {
		Logger.Errorf("failed to get value: %s: %v", key, err)
		s.notifier.Notify(notify.KindError, "failed to get data")
		return nil
	}
	return value
}

func (s *Store) get(key, physicalKey string) (any, error) {
	raw, ok, err := s.medium.GetRaw(physicalKey)
	if err != nil {
		return nil, WrapError(RetCMediumError, "failed to read value", err)
	}
	if !ok {
		s.trace("no value found: %s", key)
		return nil, nil
	}

	decoded := codec.Decode(raw)
	processed, err := s.pipelines.apply(DirGet, key, decoded)
	if err != nil {
		return nil, WrapError(RetCInternalError, "get pipeline failed", err)
	}

	value, err := s.middlewares.chain(DirGet)(&Call{Direction: DirGet, Key: physicalKey, Value: processed})
	if err != nil {
		return nil, asStoreError(err, RetCInternalError, "get middleware failed")
	}
	s.trace("got value: %s", key)
	return value, nil
}

// GetAs reads a key and converts the value to T.
// The boolean return value is false when the key is missing or the stored value
// cannot be represented as T.
func GetAs[T any](s *Store, key string) (T, bool) {
	var zero T
	value := s.Get(key)
	if value == nil {
		return zero, false
	}
	typed, err := codec.Convert[T](value)
	if err != nil {
		Logger.Warningf("value of %s is not a %T: %v", key, zero, err)
		return zero, false
	}
	return typed, true
}

func (s *Store) Set(key string, value any) error {
	physicalKey := s.tenant.resolve(key)
	if err := s.set(key, physicalKey, value); err != nil {
		Logger.Errorf("failed to set value: %s: %v", key, err)
		s.notifier.Notify(notify.KindError, "failed to set value: "+key)
		return err
	}
	s.trace("set value: %s", key)
	return nil
}

func (s *Store) set(key, physicalKey string, value any) error {
	processed, err := s.pipelines.apply(DirSet, key, value)
	if err != nil {
		return WrapError(RetCInternalError, "set pipeline failed", err)
	}
	if _, err := s.middlewares.chain(DirSet)(&Call{Direction: DirSet, Key: physicalKey, Value: processed}); err != nil {
		return asStoreError(err, RetCInternalError, "set middleware failed")
	}
	return nil
}

func (s *Store) Remove(key string) {
	physicalKey := s.tenant.resolve(key)
	if err := s.medium.RemoveRaw(physicalKey); err != nil {
		Logger.Errorf("failed to remove value: %s: %v", key, err)
		s.notifier.Notify(notify.KindError, "failed to remove value: "+key)
		return
	}
	s.trace("removed value: %s", key)
	s.NotifyChange(physicalKey, nil)
}

func (s *Store) Clear() {
	if err := s.clear(); err != nil {
		s.report(err, "failed to clear data")
		return
	}
	s.trace("cleared data")
	s.bus.publishClear()
}

func (s *Store) clear() error {
	prefix := s.tenant.prefix()
	if prefix == "" {
		if err := s.medium.ClearAll(); err != nil {
			return WrapError(RetCMediumError, "failed to clear medium", err)
		}
		return nil
	}

	keys, err := s.medium.Keys()
	if err != nil {
		return WrapError(RetCMediumError, "failed to list keys", err)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := s.medium.RemoveRaw(k); err != nil {
			return WrapError(RetCMediumError, fmt.Sprintf("failed to remove %s", k), err)
		}
	}
	return nil
}

// scopedKeys returns the logical keys of the tenant scope in ascending order.
// Without a tenant every key of the medium is in scope.
func (s *Store) scopedKeys() ([]string, error) {
	keys, err := s.medium.Keys()
	if err != nil {
		return nil, WrapError(RetCMediumError, "failed to list keys", err)
	}

	prefix := s.tenant.prefix()
	if prefix == "" {
		return keys, nil
	}
	scoped := make([]string, 0, len(keys))
	for _, k := range keys {
		if logical, ok := strings.CutPrefix(k, prefix); ok {
			scoped = append(scoped, logical)
		}
	}
	// the medium sorts physical keys, a shared prefix keeps that order
	if !sort.StringsAreSorted(scoped) {
		sort.Strings(scoped)
	}
	return scoped, nil
}

func (s *Store) Key(index int) (string, bool) {
	keys, err := s.scopedKeys()
	if err != nil {
		s.report(err, "failed to list keys")
		return "", false
	}
	if index < 0 || index >= len(keys) {
		return "", false
	}
	return keys[index], true
}

func (s *Store) Length() int {
	keys, err := s.scopedKeys()
	if err != nil {
		s.report(err, "failed to count keys")
		return 0
	}
	return len(keys)
}

// Keys returns all logical keys of the tenant scope in ascending order
func (s *Store) Keys() []string {
	keys, err := s.scopedKeys()
	if err != nil {
		s.report(err, "failed to list keys")
		return []string{}
	}
	return keys
}

func (s *Store) SetTenant(id string) error {
	if err := s.tenant.set(id); err != nil {
		s.report(err, "failed to set tenant")
		return err
	}
	if id == "" {
		s.trace("tenant unset")
	} else {
		s.trace("tenant set: %s", id)
	}
	return nil
}

func (s *Store) Tenant() (string, bool) {
	id, ok, err := s.tenant.get()
	if err != nil {
		s.report(err, "failed to read tenant")
		return "", false
	}
	return id, ok
}

func (s *Store) Watch(key string, listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	return s.bus.subscribe(s.tenant.resolve(key), listener)
}

func (s *Store) WatchClear(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	return s.bus.subscribeClear(listener)
}

func (s *Store) NotifyChange(physicalKey string, value any) {
	s.bus.publish(physicalKey, value)
}

func (s *Store) AddMiddleware(dir Direction, m Middleware) (MiddlewareID, error) {
	return s.middlewares.add(dir, m)
}

func (s *Store) RemoveMiddleware(dir Direction, id MiddlewareID) error {
	return s.middlewares.remove(dir, id)
}

func (s *Store) AddBusinessPipeline(dir Direction, key string, p Pipeline) error {
	return s.pipelines.add(dir, key, p)
}

func (s *Store) RemoveBusinessPipeline(dir Direction, key string) error {
	return s.pipelines.remove(dir, key)
}

func (s *Store) Info() medium.Info {
	return s.medium.Info()
}

func (s *Store) Close() error {
	return s.medium.Close()
}

var _ IStore = (*Store)(nil)
