package store

import "sync"

// ClearKey is the event key of the bulk invalidation emitted by Clear
const ClearKey = ""

// Event is delivered to listeners after a change.
// Key is the physical key; Value is nil for removals and clears.
type Event struct {
	Key   string
	Value any
}

// Listener receives change events. It runs synchronously on the writer's goroutine.
type Listener func(event Event)

type subscription struct {
	id       uint64
	listener Listener
}

// changeBus dispatches events to listeners subscribed to an exact physical key.
// Clear listeners are kept apart so a real key can never reach them.
//
// Thread-safety: publish copies the subscriber list under the read lock and calls
// listeners without holding it, so listeners may subscribe, unsubscribe or write.
type changeBus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]subscription
	clears    []subscription
}

func newChangeBus() *changeBus {
	return &changeBus{listeners: map[string][]subscription{}}
}

// subscribe registers l for key and returns an idempotent unsubscribe function
func (b *changeBus) subscribe(key string, l Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[key] = append(b.listeners[key], subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(key, id) })
	}
}

// subscribeClear registers l for bulk clears and returns an idempotent unsubscribe function
func (b *changeBus) subscribeClear(l Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.clears = append(b.clears, subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.clears = without(b.clears, id)
		})
	}
}

func (b *changeBus) unsubscribe(key string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := without(b.listeners[key], id)
	if len(next) == 0 {
		delete(b.listeners, key)
	} else {
		b.listeners[key] = next
	}
}

// without returns a copy of subs lacking the subscription id
func without(subs []subscription, id uint64) []subscription {
	next := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			next = append(next, s)
		}
	}
	return next
}

// publish calls every listener of key in subscription order
func (b *changeBus) publish(key string, value any) {
	b.mu.RLock()
	subs := b.listeners[key]
	b.mu.RUnlock()

	dispatch(subs, Event{Key: key, Value: value})
}

// publishClear tells every clear listener that the tenant scope was emptied
func (b *changeBus) publishClear() {
	b.mu.RLock()
	subs := b.clears
	b.mu.RUnlock()

	dispatch(subs, Event{Key: ClearKey})
}

func dispatch(subs []subscription, event Event) {
	for _, s := range subs {
		s.listener(event)
	}
}

// count returns the number of listeners of key
func (b *changeBus) count(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[key])
}

// countClear returns the number of clear listeners
func (b *changeBus) countClear() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clears)
}
