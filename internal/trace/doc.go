// Package trace records what mermaidviz is doing while it runs.
//
// Events are grouped in three scopes: the driver (one generate/scan run),
// pipeline stages (extract, name, render, write) and individual files.
//
// # Usage
//
//	mermaidviz generate docs/ --trace=- --trace-level=info
//	mermaidviz generate docs/ --trace=run.ndjson --trace-level=debug
//
// A trace file ending in .ndjson gets one JSON object per line; everything else
// is written as text.
//
// # Levels
//
//   - off: nothing
//   - error: failures only
//   - info: driver and stage boundaries, errors
//   - debug: everything, including per-file events
package trace
