package diag

// Severity ranks a diagnostic of a generate run.
type Severity uint8

const (
	// SevInfo notes something the run skipped on purpose, e.g. a document with no mermaid blocks.
	SevInfo Severity = iota
	// SevWarning marks output that was produced but altered or incomplete:
	// a name collision resolved with a suffix, a linked markdown copy that could not be written.
	SevWarning
	// SevError means a document or diagram produced no output (load or render failure).
	SevError
)

// String is the label printed in the run summary.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
