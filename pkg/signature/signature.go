// Package signature decomposes directive signature lines: the full function
// grammar and the "NAME: SIGNATURE" split used by operators, statements and clauses.
package signature

import (
	"fmt"
	"strings"

	"github.com/walteh/eqldoc/pkg/construct"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrMalformed        = errors.New("could not parse function signature")
	ErrMissingNamespace = errors.New("function declaration is missing namespace")
	ErrUnsupported      = errors.New("parser returned unsupported AST")
	ErrTypeNamespace    = errors.New("type must include a namespace")
)

// ParseError carries the underlying grammar failure of a malformed signature.
type ParseError struct {
	Signature string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse function signature %q: %v", e.Signature, e.Err)
}

// Message is the error text without the grammar failure.
func (e *ParseError) Message() string {
	return fmt.Sprintf("could not parse function signature %q", e.Signature)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

// ParseFunction parses "module::name(params) -> return".
func ParseFunction(sig string) (*construct.FunctionSignature, error) {
	sig = strings.TrimSpace(sig)

	ast, err := signatureParser.ParseString("", sig)
	if err != nil {
		return nil, &ParseError{Signature: sig, Err: err}
	}

	if ast.Name == nil || len(ast.Name.Name) == 0 || len(ast.Name.Args) > 0 {
		return nil, errors.Errorf("%w: %q", ErrUnsupported, sig)
	}

	if len(ast.Name.Name) < 2 {
		return nil, errors.Errorf("%w: %q", ErrMissingNamespace, sig)
	}

	module := strings.Join(ast.Name.Name[:len(ast.Name.Name)-1], "::")
	out := &construct.FunctionSignature{
		Module: module,
		Name:   ast.Name.Name[len(ast.Name.Name)-1],
		Params: make([]*construct.Param, 0, len(ast.Params)),
		Return: ast.Return.String(),
	}

	for i, p := range ast.Params {
		param := &construct.Param{
			Qualifier: p.Type.qualifier(),
			Type:      p.Type.Type.String(),
		}
		if p.Name != nil {
			param.Name = *p.Name
		} else {
			param.Name = fmt.Sprintf("$%d", i)
			param.Positional = true
		}
		if p.Default != nil {
			param.Default = p.Default.text(sig)
		}
		out.Params = append(out.Params, param)
	}

	return out, nil
}

func (v *valueAST) text(src string) string {
	start, end := v.Pos.Offset, v.EndPos.Offset
	if start < 0 || end > len(src) || start >= end {
		return ""
	}
	return strings.TrimSpace(src[start:end])
}

// ParseType checks a type signature and returns its module and name.
func ParseType(sig string) (module, name string, err error) {
	sig = strings.TrimSpace(sig)
	module, name, ok := strings.Cut(sig, "::")
	if !ok || strings.Contains(name, "::") {
		return "", "", errors.Errorf("%w: %q", ErrTypeNamespace, sig)
	}
	module, name = strings.TrimSpace(module), strings.TrimSpace(name)
	if module == "" || name == "" {
		return "", "", errors.Errorf("%w: %q", ErrTypeNamespace, sig)
	}
	return module, name, nil
}
