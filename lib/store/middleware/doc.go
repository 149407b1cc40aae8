// Package middleware contains ready-made store middleware.
//
//   - Metrics counts calls, errors and durations in a VictoriaMetrics set.
//   - NewTrace logs every call.
//   - ReadOnly rejects writes while enabled.
//
// Middleware is registered per direction:
//
//	m := middleware.NewMetrics(nil)
//	_, _ = s.AddMiddleware(store.DirGet, m)
//	_, _ = s.AddMiddleware(store.DirSet, m)
//	_, _ = s.AddMiddleware(store.DirSet, middleware.NewReadOnly())
package middleware
