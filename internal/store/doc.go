// Package store provides the SQLite-backed durable implementation of the
// settings substrates.
//
// Two tables mirror the two substrates:
//   - settings: scalar values keyed by (scope, key), with change
//     notifications published to the bus on every write
//   - prefs: namespaced key/value rows for time-trigger slots, no
//     notifications
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single connection: SQLite supports one writer at a time
//
// Reads and writes are synchronous provider calls with no retry policy;
// a failed write surfaces immediately to the caller.
package store
