// Package database manages relational database connectivity.
//
// It wraps GORM connection setup for the local reference store. MySQL is the
// production driver; sqlite is wired for local runs and in-memory tests.
//
// # Components
//
//   - Connect: opens a pooled connection with sane timeouts and verifies it
//     with an initial ping (mysql only; sqlite opens lazily).
//   - GetTableColumns / HasColumn: dialect-aware schema inspection, used by
//     the reference store to validate migrated tables before writing.
//
// Connection parameters come from the Config struct, populated by the
// application configuration layer.
package database
