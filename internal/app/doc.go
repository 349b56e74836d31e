// Package app assembles the ledger server: it loads configuration,
// initializes logging and telemetry, builds the ingest pipeline with its
// tab loader, and wires the HTTP router and WebSocket progress hub into
// one http.Server with graceful shutdown.
//
// The cmd/ledger-server binary is a thin wrapper around this package;
// the batch CLIs wire the same pipeline pieces directly and skip the
// server surface.
package app
