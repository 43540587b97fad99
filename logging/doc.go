// Package logging provides a minimal logging interface and adapters for the
// Forge coordination engine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the protocol and engine use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ForgeLogger with contextual helpers and domain specific log methods
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal so users can plug any
// structured logger while supporting structured logging where available.
package logging
