// Package domain processes the directives and roles of one documentation domain
// in a parsed document: it declares constructs in the registry, validates their
// bodies and collects the references the document makes.
package domain

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/fields"
	"github.com/walteh/eqldoc/pkg/position"
	"github.com/walteh/eqldoc/pkg/registry"
	"github.com/walteh/eqldoc/pkg/rst"
	"github.com/walteh/eqldoc/pkg/summary"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultName      = "eql"
	SynopsisLanguage = "pseudo-eql"
)

var (
	ErrUnknownDirective   = errors.New("unknown directive")
	ErrUnknownOption      = errors.New("unknown directive option")
	ErrNotInStatement     = errors.New("directive must be nested in a statement")
	ErrNestedStatement    = errors.New("statement directives cannot be nested")
	ErrUnexpectedArgument = errors.New("directive takes no argument")
)

// verbatim directives keep their content as text, it is not scanned for roles
var verbatim = []string{"code-block", "code", "sourcecode", "literalinclude", "raw", "math", "highlight"}

// Synopsis is a verbatim syntax sample of a statement.
type Synopsis struct {
	Statement string
	Language  string
	Text      string
	Location  position.Location
}

// Document is what processing one source yields.
type Document struct {
	Name         string
	File         string
	Declarations []*construct.Declaration
	Synopses     []*Synopsis
	// References are the explicit roles of this domain in source order
	References []*construct.Reference
}

// AutoReferences lists the references derived from field type expressions.
func (d *Document) AutoReferences() []*construct.Reference {
	var refs []*construct.Reference
	for _, decl := range d.Declarations {
		for _, f := range decl.Fields {
			for _, seg := range f.Segments {
				if seg.Ref != nil {
					refs = append(refs, seg.Ref)
				}
			}
		}
	}
	return refs
}

type Domain struct {
	Name             string
	Kinds            map[string]*KindSpec
	SummaryMaxLength int
}

func New() *Domain {
	return &Domain{
		Name:             DefaultName,
		Kinds:            DefaultKinds(),
		SummaryMaxLength: summary.DefaultMaxLength,
	}
}

// ContentOnly reports the directives of d whose body follows the marker line
// directly. It plugs into rst.Options.
func (d *Domain) ContentOnly(domain, name string) bool {
	return domain == d.Name && name == "synopsis"
}

type walker struct {
	d   *Domain
	reg *registry.Registry
	out *Document
}

// Process declares every construct of doc in reg, failing on the first problem.
// Entries registered before the failure stay in reg; callers drop them with
// UnregisterDocument.
func (d *Domain) Process(ctx context.Context, reg *registry.Registry, doc *rst.Document) (*Document, error) {
	w := &walker{d: d, reg: reg, out: &Document{Name: doc.Name, File: doc.File}}

	if err := w.walk(ctx, doc.Children, ""); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("document", doc.Name).
		Int("declarations", len(w.out.Declarations)).
		Int("references", len(w.out.References)).
		Msg("processed document")

	return w.out, nil
}

func (w *walker) walk(ctx context.Context, nodes []rst.Node, statement string) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *rst.Directive:
			if err := w.directive(ctx, n, statement); err != nil {
				return err
			}
		case *rst.BlockQuote:
			if err := w.walk(ctx, n.Children, statement); err != nil {
				return err
			}
		case *rst.Paragraph:
			w.roles(n.Roles)
		case *rst.Title:
			w.roles(n.Roles)
		case *rst.FieldList:
			for _, f := range n.Fields {
				w.roles(f.Roles)
			}
		}
	}
	return nil
}

func (w *walker) roles(roles []*rst.Role) {
	for _, r := range roles {
		if r.Domain == w.d.Name {
			w.out.References = append(w.out.References, xrefFromRole(r))
		}
	}
}

func xrefFromRole(r *rst.Role) *construct.Reference {
	return &construct.Reference{
		Role:     construct.Role(r.Name),
		Target:   r.Target,
		Title:    r.Title,
		Explicit: r.Explicit,
		Location: r.Location,
	}
}

func (w *walker) directive(ctx context.Context, dir *rst.Directive, statement string) error {
	if dir.Domain != w.d.Name {
		if slices.Contains(verbatim, dir.Name) {
			return nil
		}
		return w.walk(ctx, dir.Body, statement)
	}

	name := dir.FullName()

	if dir.Name == "synopsis" {
		if statement == "" {
			return errorf(dir.Location, name, ErrNotInStatement,
				":%s: directive must be nested in a :%s:statement:", name, w.d.Name)
		}
		if strings.TrimSpace(dir.Argument) != "" {
			return errorf(dir.Location, name, ErrUnexpectedArgument, ":%s: directive takes no argument", name)
		}
		w.out.Synopses = append(w.out.Synopses, &Synopsis{
			Statement: statement,
			Language:  SynopsisLanguage,
			Text:      dir.RawText(),
			Location:  dir.ContentLocation,
		})
		return nil
	}

	spec, ok := w.d.Kinds[dir.Name]
	if !ok {
		return errorf(dir.Location, name, ErrUnknownDirective, "unknown directive :%s:", name)
	}

	switch {
	case spec.Kind == construct.Clause && statement == "":
		return errorf(dir.Location, name, ErrNotInStatement,
			":%s: directive must be nested in a :%s:statement:", name, w.d.Name)
	case spec.Kind == construct.Statement && statement != "":
		return errorf(dir.Location, name, ErrNestedStatement,
			":%s: directives cannot be nested", name)
	}

	for _, opt := range dir.OptionOrder {
		if !slices.Contains(spec.Options, opt) {
			return errorf(dir.Location, name, ErrUnknownOption, "unknown option '%s' for :%s:", opt, name)
		}
	}

	arg := strings.TrimSpace(dir.Argument)
	if arg == "" {
		return NewError(dir.Location, name, errors.Errorf("%w", ErrMissingArgument))
	}

	decl, err := spec.Declare(arg, statement)
	if err != nil {
		return NewError(dir.Location, name, err)
	}
	decl.Signature = arg
	decl.Location = dir.Location
	if len(dir.Options) > 0 {
		decl.Options = dir.Options
	}

	// registered before the body is walked so nested content can refer back
	entry := registry.Entry{Name: decl.Name, Kind: decl.Kind, Document: w.out.Name, Display: decl.Display}
	if err := w.reg.RegisterEntry(entry); err != nil {
		return NewError(dir.Location, name, err)
	}

	inner := statement
	if spec.Kind == construct.Statement {
		inner = arg
	}
	if err := w.walk(ctx, dir.Body, inner); err != nil {
		return err
	}

	if err := fields.Validate(spec.Vocabulary, dir.Body); err != nil {
		return NewError(dir.Location, name, err)
	}

	text, err := summary.Extract(dir.Body, w.d.SummaryMaxLength)
	if err != nil {
		return NewError(dir.Location, name, err)
	}
	decl.Summary = text
	w.reg.Describe(decl.Name, text)

	decl.Fields = fields.Build(spec.Vocabulary, fields.Leading(dir.Body))
	if decl.Function != nil {
		if err := fields.CheckParameters(decl.Fields, decl.Function); err != nil {
			return NewError(dir.Location, name, err)
		}
	}

	w.out.Declarations = append(w.out.Declarations, decl)

	zerolog.Ctx(ctx).Trace().
		Str("kind", decl.Kind.String()).
		Str("name", decl.Name).
		Str("document", w.out.Name).
		Msg("declared")

	return nil
}
