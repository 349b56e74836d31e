// Package exporter writes the normalized league datasets to disk.
//
// CSVWriter is the low-level writer: headers, optional UTF-8 BOM for
// Excel compatibility, append mode, and a streaming variant for the
// larger tables.
//
// DatasetExporter lays the seven pipeline datasets out as
//
//	<base>/<dataset>/dt=<snapshot-date>/<dataset>.csv
//
// and records a manifest.json describing the run. The dt= partition
// keys keep snapshots loadable side by side by downstream tooling.
package exporter
