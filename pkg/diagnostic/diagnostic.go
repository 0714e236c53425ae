// Package diagnostic turns build failures into located diagnostics and formats
// them for terminals and editors.
package diagnostic

import (
	"context"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/walteh/eqldoc/pkg/domain"
	"github.com/walteh/eqldoc/pkg/fields"
	"github.com/walteh/eqldoc/pkg/registry"
	"github.com/walteh/eqldoc/pkg/rst"
	"github.com/walteh/eqldoc/pkg/signature"
	"github.com/walteh/eqldoc/pkg/summary"
	"github.com/walteh/eqldoc/pkg/xref"
	"gitlab.com/tozd/go/errors"
)

// Generator is responsible for generating diagnostics from build errors
type Generator interface {
	// Generate generates diagnostics from an error, usually a build result error
	Generate(ctx context.Context, err error) (*Diagnostics, error)
}

// Diagnostics represents diagnostic information that can be formatted in different ways
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Len counts every diagnostic.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings)
}

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Message   string
	File      string
	Line      int
	Column    int
	EndLine   int
	EndCol    int
	Severity  DiagnosticSeverity
	Category  Category
	Directive string
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
)

// Category groups diagnostics by the stage that produced them.
type Category string

const (
	Structural Category = "structural"
	Signature  Category = "signature"
	Field      Category = "field"
	Length     Category = "length"
	Registry   Category = "registry"
	Resolution Category = "resolution"
	Source     Category = "source"
	Internal   Category = "internal"
)

var categories = []struct {
	category Category
	errs     []error
}{
	{Signature, []error{signature.ErrMalformed, signature.ErrMissingNamespace, signature.ErrUnsupported, signature.ErrTypeNamespace, signature.ErrTemplate, signature.ErrInvalid}},
	{Field, []error{fields.ErrUnknownField, fields.ErrFieldsAfterContent, fields.ErrUnknownParameter}},
	{Length, []error{summary.ErrTooLong}},
	{Registry, []error{registry.ErrDuplicate}},
	{Resolution, []error{xref.ErrUnresolved, xref.ErrKindMismatch, xref.ErrClauseForm}},
	{Structural, []error{summary.ErrMissingDescription, summary.ErrNotParagraph, domain.ErrUnknownDirective, domain.ErrUnknownOption, domain.ErrNotInStatement, domain.ErrNestedStatement, domain.ErrMissingArgument, domain.ErrUnexpectedArgument}},
	{Source, []error{rst.ErrInvalidEncoding}},
}

// Categorize maps err to the category of the first sentinel it wraps.
func Categorize(err error) Category {
	for _, c := range categories {
		for _, sentinel := range c.errs {
			if errors.Is(err, sentinel) {
				return c.category
			}
		}
	}
	return Internal
}

// DefaultGenerator is the default implementation of Generator
type DefaultGenerator struct{}

// NewDefaultGenerator creates a new DefaultGenerator
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{}
}

// Generate implements Generator
func (g *DefaultGenerator) Generate(ctx context.Context, err error) (*Diagnostics, error) {
	diagnostics := &Diagnostics{}
	if err == nil {
		return diagnostics, nil
	}

	for _, e := range flatten(err) {
		diagnostics.Errors = append(diagnostics.Errors, FromError(e))
	}

	slices.SortStableFunc(diagnostics.Errors, func(a, b Diagnostic) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		return a.Line - b.Line
	})

	return diagnostics, nil
}

func flatten(err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var out []error
		for _, e := range merr.Errors {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// FromError builds the diagnostic of a single error. Errors without a source
// location get an empty File.
func FromError(err error) Diagnostic {
	d := Diagnostic{
		Message:  err.Error(),
		Severity: Error,
		Category: Categorize(err),
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		return d
	}

	d.Message = derr.Message
	if derr.Cause != nil {
		d.Message += "\nCause: " + derr.Cause.Error()
	}
	d.Directive = derr.Directive
	d.File = derr.Location.File
	if d.File == "" {
		d.File = derr.Location.Document
	}

	if derr.Location.Line > 0 {
		r := derr.Location.Range(span(derr.Directive))
		d.Line = r.Start.Line + 1
		d.Column = r.Start.Character + 1
		d.EndLine = r.End.Line + 1
		d.EndCol = r.End.Character + 1
	}
	return d
}

// span is the width of the markup an error points at: a role marker such as
// ":eql:type:" or a directive marker such as ".. eql:type::".
func span(directive string) int {
	switch {
	case directive == "":
		return 1
	case strings.HasPrefix(directive, ":"):
		return len(directive)
	default:
		return len(directive) + len(".. ::")
	}
}
