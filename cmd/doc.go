// Package cmd implements the command-line interface (ldb) for the localdb
// key-value store. Every command opens the configured store, runs one operation
// and closes it again.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (get, set, rm, clear, keys, len, dump, perf)
//   - tenant: Commands to show and switch the active tenant
//   - history: Commands to save and list chat histories
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Configuration is read from flags, LDB_* environment variables and .env/.env.local
// files (e.g. LDB_MEDIUM=memory, LDB_DATA_PATH=/tmp/ldb.sqlite, LDB_TENANT=my-app).
//
// See ldb -help for a list of all commands.
package cmd
