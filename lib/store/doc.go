// Package store provides a namespaced, observable key-value store on top of a
// synchronous storage medium (see the medium package).
//
// Every operation takes a logical key. The store maps it to a physical key by
// prefixing the current tenant ("<tenant>:<key>"), encodes values to text, runs
// per-key business pipelines and global middleware chains around reads and writes,
// and tells subscribers about every change.
//
// Key Components:
//
//   - Tenant resolver: The tenant id lives in memory and is persisted verbatim under
//     TenantKey ("@@appId"). Switching tenants changes which physical keys are visible;
//     data is never migrated or cleared. Without a tenant the store warns the user
//     once and works on unprefixed keys.
//
//   - Middleware chains: One ordered chain per Direction ("get" / "set"). A Middleware
//     receives a *Call and the next Handler and may change the call, wrap the result
//     or end the chain early. The end of the set chain encodes, writes and notifies;
//     the end of the get chain returns the value the store already read, decoded and
//     piped. Registrations are identified by a MiddlewareID.
//
//   - Business pipelines: At most one Pipeline per key and direction. The set pipeline
//     sees the caller's value before the set chain; the get pipeline sees the decoded
//     value before the get chain.
//
//   - Change notification: Watch subscribes to one logical key; events carry the
//     physical key and the new value (nil for removals). Clear emits a single event
//     with ClearKey that only WatchClear listeners receive.
//
//   - Error System: Failures are returned as *Error values carrying a RetCode and the
//     underlying cause. Reads never fail: Get reports the problem to the user, logs it
//     and returns nil. Set returns the error after reporting it.
//
// Read path:
//
//	resolve -> medium.GetRaw -> (missing: nil) -> codec.Decode -> get pipeline -> get chain
//
// Write path:
//
//	resolve -> set pipeline -> set chain -> codec.Encode -> medium.SetRaw -> notify
//
// The store also keeps a list of chat conversations under ChatHistoriesKey
// (SaveChatHistory / LoadChatHistories).
//
// Usage:
//
//	m, _ := medium.NewSQLiteMedium("data/localdb.sqlite")
//	s := store.NewStore(m, &store.Options{Tenant: "my-app", Notifier: notify.NewConsoleNotifier(os.Stderr)})
//	defer s.Close()
//
//	_ = s.Set("settings", map[string]any{"theme": "dark"})
//	settings := s.Get("settings") // map[string]any{"theme": "dark"}
//	n, ok := store.GetAs[int](s, "counter")
package store
