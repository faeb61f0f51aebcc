// Package database manages the SQLite connection and schema migrations
// for Sentra.
//
// SQLite is used as the system-of-record for accounts, devices, and sensor
// readings. The connection is configured for a single writer with WAL mode
// for concurrent reads, matching SQLite's locking model.
//
// Migrations are embedded into the binary (see the migrations package) and
// applied at startup, each in its own transaction.
package database
