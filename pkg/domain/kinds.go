package domain

import (
	"strings"

	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/fields"
	"github.com/walteh/eqldoc/pkg/signature"
	"gitlab.com/tozd/go/errors"
)

var ErrMissingArgument = errors.New("directive requires a signature argument")

// DeclareFunc turns a directive argument into a declaration carrying its
// registry key. statement is the enclosing statement, if any.
type DeclareFunc func(arg, statement string) (*construct.Declaration, error)

// KindSpec is one row of the kind table.
type KindSpec struct {
	Kind       construct.Kind
	Vocabulary fields.Vocabulary
	// Options are the flag options the directive accepts
	Options []string
	Declare DeclareFunc
}

// DefaultKinds returns the kind table keyed by directive name.
func DefaultKinds() map[string]*KindSpec {
	kinds := map[string]*KindSpec{
		"function":  {Kind: construct.Function, Declare: declareFunction},
		"type":      {Kind: construct.Type, Declare: declareType},
		"keyword":   {Kind: construct.Keyword, Declare: declareKeyword},
		"operator":  {Kind: construct.Operator, Declare: declareOperator},
		"statement": {Kind: construct.Statement, Declare: declareStatement, Options: []string{"haswith"}},
		"clause":    {Kind: construct.Clause, Declare: declareClause},
	}
	for _, k := range kinds {
		k.Vocabulary = fields.DefaultVocabulary(k.Kind)
	}
	return kinds
}

func declareFunction(arg, _ string) (*construct.Declaration, error) {
	sig, err := signature.ParseFunction(arg)
	if err != nil {
		return nil, err
	}
	name, err := construct.FunctionName(sig.Module, sig.Name)
	if err != nil {
		return nil, err
	}
	return &construct.Declaration{
		Kind:     construct.Function,
		Name:     name,
		Display:  sig.QualifiedName(),
		Function: sig,
	}, nil
}

func declareType(arg, _ string) (*construct.Declaration, error) {
	module, typ, err := signature.ParseType(arg)
	if err != nil {
		return nil, err
	}
	name, err := construct.TypeName(module, typ)
	if err != nil {
		return nil, err
	}
	return &construct.Declaration{
		Kind:    construct.Type,
		Name:    name,
		Display: module + "::" + typ,
	}, nil
}

func declareKeyword(arg, _ string) (*construct.Declaration, error) {
	return &construct.Declaration{
		Kind:    construct.Keyword,
		Name:    construct.KeywordName(arg),
		Display: construct.DisplayLabel(arg),
	}, nil
}

func declareStatement(arg, _ string) (*construct.Declaration, error) {
	return &construct.Declaration{
		Kind:    construct.Statement,
		Name:    construct.StatementName(arg),
		Display: construct.DisplayLabel(arg),
	}, nil
}

func declareOperator(arg, _ string) (*construct.Declaration, error) {
	id, display, err := signature.SplitNamed(arg)
	if err != nil {
		return nil, err
	}
	return &construct.Declaration{
		Kind:             construct.Operator,
		Name:             construct.OperatorName(id),
		Display:          display,
		DisplaySignature: display,
	}, nil
}

func declareClause(arg, statement string) (*construct.Declaration, error) {
	id, display, err := signature.SplitNamed(arg)
	if err != nil {
		return nil, err
	}
	return &construct.Declaration{
		Kind:             construct.Clause,
		Name:             construct.ClauseName(statement, id),
		Display:          display,
		DisplaySignature: display,
		Statement:        strings.ToLower(statement),
	}, nil
}
