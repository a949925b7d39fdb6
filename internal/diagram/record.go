package diagram

// Record is one extracted diagram with its provenance and mined context.
// Empty PrecedingHeader or DiagramTitle means the value was not found.
type Record struct {
	Content         string `msgpack:"content" json:"content"`
	SourceFile      string `msgpack:"source_file" json:"source_file"`
	StartLine       int    `msgpack:"start_line" json:"start_line"`
	EndLine         int    `msgpack:"end_line" json:"end_line"`
	DiagramType     string `msgpack:"diagram_type" json:"diagram_type"`
	Index           int    `msgpack:"index" json:"index"`
	PrecedingHeader string `msgpack:"preceding_header,omitempty" json:"preceding_header,omitempty"`
	DiagramTitle    string `msgpack:"diagram_title,omitempty" json:"diagram_title,omitempty"`
}

// HasHeader reports whether a preceding header was found.
func (r *Record) HasHeader() bool { return r.PrecedingHeader != "" }

// HasTitle reports whether a title was mined from the content.
func (r *Record) HasTitle() bool { return r.DiagramTitle != "" }

// Prefix returns the filename mnemonic for the record's type.
func (r *Record) Prefix() string { return PrefixFor(r.DiagramType) }
