// Package http implements the HTTP surface of the ledger server. Handlers
// stay thin: they parse requests, delegate to the snapshot store or the
// run manager, and render JSON responses. Errors become RFC 7807 problem
// documents through the shared error handler.
//
// The read endpoints serve the latest exported snapshot:
//
//	GET /api/datasets            dataset summaries from the run manifest
//	GET /api/datasets/{name}     one dataset's rows as JSON
//	GET /api/qa/unmapped         unmatched players and picks for review
//
// The write surface triggers and observes ingest runs:
//
//	POST /api/operations         start an ingest run (202 Accepted)
//	GET  /api/operations         list known runs
//	GET  /api/operations/{id}    one run's status and step progress
//
// Liveness, readiness, Prometheus metrics, and the WebSocket progress
// feed are mounted by the router at /healthz, /readyz, /metrics, and /ws.
package http
