package construct

import "github.com/walteh/eqldoc/pkg/position"

// Field is one rendered documentation field of a declaration, after typed pairs
// have been merged.
type Field struct {
	// Kind is the canonical field name, e.g. "parameter" or "returntype"
	Kind        string         `json:"kind"`
	Label       string         `json:"label"`
	Arg         string         `json:"arg,omitempty"`
	Type        string         `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
	Segments    []*TypeSegment `json:"segments,omitempty"`
}

// TypeSegment is a piece of a type expression. Delimiters render as plain text,
// every other segment carries an auto-derived reference.
type TypeSegment struct {
	Text      string     `json:"text"`
	Delimiter bool       `json:"delimiter,omitempty"`
	Ref       *Reference `json:"ref,omitempty"`
	Link      *Link      `json:"link,omitempty"`
}

// Reference is a request to link to a declared construct.
type Reference struct {
	Role   Role   `json:"role"`
	Target string `json:"target"`
	Title  string `json:"title"`
	// Explicit is set when the author wrote "title <target>"
	Explicit bool `json:"explicit,omitempty"`
	// Auto is set for references synthesized from type expressions
	Auto     bool              `json:"auto,omitempty"`
	Location position.Location `json:"-"`
}

// Link is a resolved reference.
type Link struct {
	Role     Role   `json:"role"`
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Title    string `json:"title"`
	Auto     bool   `json:"auto,omitempty"`
}
