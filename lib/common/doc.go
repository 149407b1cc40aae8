// Package common contains the pieces shared by the localdb library packages and
// the ldb command line tool.
//
// Logging:
//
//	All packages log through github.com/lni/dragonboat/v4/logger. Each package holds
//	a package level logger (e.g. `var Logger = logger.GetLogger("store")`), and
//	InitLoggers installs the custom factory that renders lines as
//
//	    2025/01/01 12:00:00 INFO  | store      | set value: chatHistories
//
//	and applies one level to every localdb logger. Library users who never call
//	InitLoggers get dragonboat's default logger.
//
// Configuration:
//
//	StoreConfig describes which medium backs a store, the tenant to activate and the
//	logging level. The CLI fills it from flags, LDB_* environment variables and
//	.env files (see cmd/util).
package common
