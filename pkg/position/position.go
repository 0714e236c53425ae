package position

import (
	"fmt"
	"strings"
)

// Place is a zero-based line/character pair.
type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// GetLineAndColumn calculates the line and column number for a given position in the text.
// Returns zero-based line and column numbers.
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	if p.Offset <= 0 {
		return 0, 0
	}

	end := p.Offset
	if end > len(text) {
		end = len(text)
	}

	lastNewline := -1
	for i := 0; i < end; i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}

	col = end - lastNewline - 1

	return line, col
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Location points at a place inside a source document. Line and Column are 1-based,
// a zero Line means the location is unknown.
type Location struct {
	// Document is the document name (path relative to the source root, no extension)
	Document string
	// File is the path the document was read from
	File   string
	Line   int
	Column int
}

// Advance returns the location of a position inside a block of text that starts at l.
// The first line of the text keeps l's column as its base.
func (l Location) Advance(text string, pos RawPosition) Location {
	line, col := pos.GetLineAndColumn(text)
	out := l
	out.Line += line
	if line == 0 {
		out.Column += col
	} else {
		out.Column = col + 1
	}
	return out
}

func (l Location) IsZero() bool {
	return l.Line == 0 && l.File == "" && l.Document == ""
}

// String renders the location as file:line, falling back to the document name.
func (l Location) String() string {
	name := l.File
	if name == "" {
		name = l.Document
	}
	if name == "" {
		name = "<unknown>"
	}
	if l.Line == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d", name, l.Line)
}

// Range converts the location into a zero-based range spanning length characters.
func (l Location) Range(length int) Range {
	line := max(l.Line-1, 0)
	col := max(l.Column-1, 0)
	return Range{
		Start: Place{Line: line, Character: col},
		End:   Place{Line: line, Character: col + length},
	}
}

// ExpandTabs replaces tab characters with spaces up to the next tab stop.
func ExpandTabs(line string, width int) string {
	if width <= 0 || !strings.ContainsRune(line, '\t') {
		return line
	}

	var sb strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := width - col%width
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}
