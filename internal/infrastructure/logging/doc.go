// Package logging provides structured logging for Sentra.
//
// It wraps the standard library slog with configuration-driven output
// format (JSON or text), level filtering, and default fields attached to
// every record (service name, version).
//
// Thread Safety: all methods are safe for concurrent use.
package logging
