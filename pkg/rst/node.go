// Package rst reads the subset of reStructuredText the documentation sources are
// written in: sections, paragraphs, field lists, comments, literal blocks and
// directives with nested bodies, plus inline roles.
package rst

import (
	"strings"

	"github.com/walteh/eqldoc/pkg/position"
)

// Node is one block-level element.
type Node interface {
	Loc() position.Location
	isNode()
}

type Document struct {
	Name     string
	File     string
	Children []Node
}

type Title struct {
	Location position.Location
	Text     string
	Roles    []*Role
}

type Paragraph struct {
	Location position.Location
	// Text is the paragraph with its lines joined by newlines
	Text  string
	Roles []*Role
}

type BlockQuote struct {
	Location position.Location
	Children []Node
}

type FieldList struct {
	Location position.Location
	Fields   []*Field
}

// Field is one ":name arg: body" item. Name is the first word of the field
// marker, Arg the rest of it.
type Field struct {
	Location position.Location
	Name     string
	Arg      string
	Body     string
	Roles    []*Role
}

type Comment struct {
	Location position.Location
	Text     string
}

type LiteralBlock struct {
	Location position.Location
	Text     string
}

// Directive is ".. domain:name:: argument" with its options and nested content.
type Directive struct {
	Location position.Location
	Domain   string
	Name     string
	Argument string
	Options  map[string]string
	// OptionOrder keeps the options in source order
	OptionOrder []string
	Body        []Node
	// Raw is the dedented content after the options, for verbatim directives
	Raw []string
	// ContentLocation is where Raw starts
	ContentLocation position.Location
}

func (n *Title) Loc() position.Location        { return n.Location }
func (n *Paragraph) Loc() position.Location    { return n.Location }
func (n *BlockQuote) Loc() position.Location   { return n.Location }
func (n *FieldList) Loc() position.Location    { return n.Location }
func (n *Comment) Loc() position.Location      { return n.Location }
func (n *LiteralBlock) Loc() position.Location { return n.Location }
func (n *Directive) Loc() position.Location    { return n.Location }

func (*Title) isNode()        {}
func (*Paragraph) isNode()    {}
func (*BlockQuote) isNode()   {}
func (*FieldList) isNode()    {}
func (*Comment) isNode()      {}
func (*LiteralBlock) isNode() {}
func (*Directive) isNode()    {}

// FullName is "domain:name", or just the name for directives without a domain.
func (d *Directive) FullName() string {
	if d.Domain == "" {
		return d.Name
	}
	return d.Domain + ":" + d.Name
}

func (d *Directive) HasOption(name string) bool {
	_, ok := d.Options[name]
	return ok
}

// RawText joins the verbatim content.
func (d *Directive) RawText() string {
	return strings.Join(d.Raw, "\n")
}

// Walk visits every node depth first. Returning false skips the children of n.
func Walk(nodes []Node, fn func(n Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch n := n.(type) {
		case *BlockQuote:
			Walk(n.Children, fn)
		case *Directive:
			Walk(n.Body, fn)
		}
	}
}
