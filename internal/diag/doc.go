// Package diag collects per-file problems found during a run.
//
// Unlike Go errors, diagnostics do not stop the pipeline: a document that
// cannot be read or a diagram that fails to render is recorded in a Bag and
// the run continues. The CLI prints the Bag at the end and uses HasErrors to
// pick the exit status.
//
// Codes are grouped by family:
//
//	IO  1000-1999  reading documents and snippets
//	EXT 2000-2999  extraction and naming
//	RND 3000-3999  rendering
//	OUT 4000-4999  writing mappings, galleries and linked documents
package diag
