package construct

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultNamespace is the module bare function and type names fall back to.
const DefaultNamespace = "std"

var ErrMissingNamespace = errors.New("missing namespace")

// Registry keys are lower-cased; display names keep their case.

// FunctionName builds the key of a function declared in module.
func FunctionName(module, name string) (string, error) {
	return moduleName(module, name)
}

// TypeName builds the key of a type declared in module.
func TypeName(module, name string) (string, error) {
	return moduleName(module, name)
}

func moduleName(module, name string) (string, error) {
	module = strings.TrimSpace(module)
	name = strings.TrimSpace(name)
	if module == "" {
		return "", errors.Errorf("%w: %q", ErrMissingNamespace, name)
	}
	return strings.ToLower(module + "::" + name), nil
}

func KeywordName(id string) string {
	return "keyword::" + normalizeID(id)
}

func OperatorName(id string) string {
	return "operator::" + normalizeID(id)
}

func StatementName(id string) string {
	return "statement::" + normalizeID(id)
}

// ClauseName scopes a clause to the statement it is declared in.
func ClauseName(statement, clause string) string {
	return "clause::" + normalizeID(statement) + "::" + normalizeID(clause)
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SplitModule splits "module::name" on the last separator. Names without a module
// return an empty module.
func SplitModule(qualified string) (module, name string) {
	idx := strings.LastIndex(qualified, "::")
	if idx < 0 {
		return "", qualified
	}
	return qualified[:idx], qualified[idx+2:]
}

// HasModule reports whether a target carries a module qualifier.
func HasModule(target string) bool {
	return strings.Contains(target, "::")
}

// DisplayLabel renders a keyword or statement id the way it reads in prose,
// SET-OF becomes "SET OF".
func DisplayLabel(id string) string {
	return strings.ReplaceAll(id, "-", " ")
}
