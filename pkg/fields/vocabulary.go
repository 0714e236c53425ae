// Package fields validates the documentation field lists of declaration
// directives and merges them into rendered fields.
package fields

import (
	"slices"

	"github.com/walteh/eqldoc/pkg/construct"
)

// Spec describes one supported field kind.
//
// A spec with TypeNames is paired: ":param $a: text" carries the description and
// ":paramtype $a: int" its type. A spec without TypeNames is typed: the field
// body is the type text itself, as in ":optype A: int64".
type Spec struct {
	Name      string
	Label     string
	Names     []string
	TypeNames []string
	HasArg    bool
	TypeRole  construct.Role
}

func (s *Spec) Paired() bool {
	return len(s.TypeNames) > 0
}

// Vocabulary is the set of fields one construct kind accepts.
type Vocabulary []*Spec

// Lookup finds the spec a source field name belongs to and whether the name is
// one of its type names.
func (v Vocabulary) Lookup(name string) (spec *Spec, isType bool, ok bool) {
	for _, s := range v {
		if slices.Contains(s.Names, name) {
			return s, false, true
		}
		if slices.Contains(s.TypeNames, name) {
			return s, true, true
		}
	}
	return nil, false, false
}

// Canonical finds a spec by its canonical name.
func (v Vocabulary) Canonical(name string) (*Spec, bool) {
	for _, s := range v {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// DefaultVocabulary returns the built-in fields of a construct kind. Kinds
// without fields get an empty vocabulary.
func DefaultVocabulary(kind construct.Kind) Vocabulary {
	switch kind {
	case construct.Function:
		return Vocabulary{
			{Name: "parameter", Label: "Parameter", Names: []string{"param"}, TypeNames: []string{"paramtype"}, HasArg: true, TypeRole: construct.RoleType},
			{Name: "return", Label: "Return", Names: []string{"return"}, TypeNames: []string{"returntype"}, TypeRole: construct.RoleType},
		}
	case construct.Operator:
		return Vocabulary{
			{Name: "operand", Label: "Operand", Names: []string{"optype"}, HasArg: true, TypeRole: construct.RoleType},
			{Name: "returntype", Label: "Return", Names: []string{"returntype"}, TypeRole: construct.RoleType},
		}
	case construct.Clause:
		return Vocabulary{
			{Name: "parameter", Label: "Parameter", Names: []string{"paramtype"}, HasArg: true, TypeRole: construct.RoleType},
			{Name: "returntype", Label: "Return", Names: []string{"returntype"}, TypeRole: construct.RoleType},
		}
	default:
		return Vocabulary{}
	}
}
