// Package medium defines the synchronous storage medium a store writes through and
// ships two implementations of it.
//
// A medium is a flat map from physical key to text. It has no notion of tenants,
// value types or change notifications; those live in the store package. The
// interface mirrors what a browser's localStorage offers: get, set, remove, clear,
// enumerate and count.
//
// Implementations:
//
//   - Memory (NewMemoryMedium): entries live in an xsync.MapOf and are lost when the
//     process exits. Used by tests and as an ephemeral cache.
//
//   - SQLite (NewSQLiteMedium): entries are rows of a single `entries` table in a
//     cgo-free sqlite database (modernc.org/sqlite). The file is opened in WAL mode
//     and parent directories are created on demand. Passing InMemoryPath opens a
//     private database that lives as long as the medium.
//
// Key Order:
//
//	Keys() returns keys in ascending byte order on every implementation. The store
//	relies on this to give Key(index) a stable meaning.
//
// Atomicity:
//
//	Each call is atomic on its own. Nothing is atomic across calls: a store clearing
//	one tenant enumerates the keys and removes them one by one.
//
// Conformance:
//
//	New implementations should pass the suite in lib/medium/testing:
//
//	    mediumtesting.RunMediumTests(t, "MyMedium", factory)
package medium
