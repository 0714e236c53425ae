package fields

import (
	"regexp"
	"strings"

	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/position"
	"github.com/walteh/eqldoc/pkg/rst"
	"gitlab.com/tozd/go/errors"
)

var ErrUnknownParameter = errors.New("field names a parameter the signature does not declare")

var typeDelimRe = regexp.MustCompile(`(\s*[\[\]\(\),](?:\s*or\s)?\s*|\s+or\s+)`)

// Build merges a validated field list into rendered fields, in order of first
// appearance. Description and type fields sharing an argument become one field.
func Build(vocab Vocabulary, fl *rst.FieldList) []*construct.Field {
	if fl == nil {
		return nil
	}

	type key struct{ spec, arg string }
	var out []*construct.Field
	seen := map[key]*construct.Field{}

	for _, f := range fl.Fields {
		spec, isType, ok := vocab.Lookup(f.Name)
		if !ok {
			continue
		}

		k := key{spec.Name, f.Arg}
		field, exists := seen[k]
		if !exists {
			field = &construct.Field{Kind: spec.Name, Label: spec.Label, Arg: f.Arg}
			seen[k] = field
			out = append(out, field)
		}

		if spec.Paired() && !isType {
			field.Description = rst.Flatten(f.Body)
			continue
		}

		field.Type = rst.CollapseSpace(f.Body)
		if len(f.Roles) == 0 && spec.TypeRole != "" {
			field.Segments = SplitTypeExpr(field.Type, spec.TypeRole, f.Location)
		}
	}

	return out
}

// SplitTypeExpr splits a type expression on commas, brackets and "or". Delimiters
// stay plain text, every other piece gets an auto-derived reference.
func SplitTypeExpr(text string, role construct.Role, loc position.Location) []*construct.TypeSegment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var segs []*construct.TypeSegment
	target := func(s string) {
		if s == "" {
			return
		}
		segs = append(segs, &construct.TypeSegment{
			Text: s,
			Ref:  &construct.Reference{Role: role, Target: s, Title: s, Auto: true, Location: loc},
		})
	}

	last := 0
	for _, m := range typeDelimRe.FindAllStringIndex(text, -1) {
		target(text[last:m[0]])
		segs = append(segs, &construct.TypeSegment{Text: text[m[0]:m[1]], Delimiter: true})
		last = m[1]
	}
	target(text[last:])

	return segs
}

// CheckParameters reports a parameter field whose argument is not one of the
// signature's parameters.
func CheckParameters(fs []*construct.Field, sig *construct.FunctionSignature) error {
	for _, f := range fs {
		if f.Kind != "parameter" || f.Arg == "" {
			continue
		}
		if _, ok := sig.Param(f.Arg); !ok {
			return errors.Errorf("%w: '%s' is not a parameter of %s", ErrUnknownParameter, f.Arg, sig.QualifiedName())
		}
	}
	return nil
}
