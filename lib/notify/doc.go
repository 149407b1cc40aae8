// Package notify is the user-notification capability a store reports failures to.
//
// The store never decides how a message reaches the user. It calls
// INotifier.Notify(kind, message) and moves on; the embedding application picks the
// surface: NewConsoleNotifier for terminals, NewLogNotifier for services and
// NewNoopNotifier for tests.
package notify
