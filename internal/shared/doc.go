// Package shared holds cross-cutting helpers that belong to no single
// pipeline layer. Today that is only the testutil subpackage, which
// provides the in-memory slog recorder the package tests use to assert
// on structured log output.
//
// Nothing here may depend on other internal packages; the helpers are
// imported from everywhere and a domain dependency would cycle.
package shared
