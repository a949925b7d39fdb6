package diag

import "fmt"

// Diagnostic is one reported problem. Line is 1-based, 0 when not tied to a line.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Line     int
}

// Location renders file[:line].
func (d Diagnostic) Location() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d", d.File, d.Line)
	}
	return d.File
}

func (d Diagnostic) String() string {
	loc := d.Location()
	if loc == "" {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("%s: %s %s: %s", loc, d.Severity, d.Code.ID(), d.Message)
}
