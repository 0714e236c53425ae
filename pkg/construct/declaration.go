package construct

import (
	"strings"

	"github.com/walteh/eqldoc/pkg/position"
)

// Declaration is a fully validated directive.
type Declaration struct {
	Kind Kind `json:"kind"`
	// Name is the registry key
	Name string `json:"name"`
	// Display is the label shown in the rendered signature
	Display string `json:"display"`
	// Signature is the raw directive argument
	Signature string `json:"signature"`
	// Function is set for function declarations
	Function *FunctionSignature `json:"function,omitempty"`
	// Operator and clause declarations keep their free-form signature here
	DisplaySignature string   `json:"displaySignature,omitempty"`
	Summary          string   `json:"summary"`
	Fields           []*Field `json:"fields,omitempty"`
	// Statement is the enclosing statement of a clause
	Statement string            `json:"statement,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Location  position.Location `json:"-"`
}

// HasOption reports whether a flag option such as :haswith: was given.
func (d *Declaration) HasOption(name string) bool {
	_, ok := d.Options[name]
	return ok
}

// Param is one parameter of a function signature.
type Param struct {
	// Name is "$name" for named parameters and "$<index>" for positional ones
	Name       string `json:"name"`
	Positional bool   `json:"positional"`
	// Qualifier is one of "", "SET OF", "OPTIONAL", "VARIADIC"
	Qualifier string `json:"qualifier,omitempty"`
	Type      string `json:"type"`
	Default   string `json:"default,omitempty"`
}

// String renders the parameter the way it is written in a signature.
func (p *Param) String() string {
	var sb strings.Builder
	if !p.Positional {
		sb.WriteString(p.Name)
		sb.WriteString(": ")
	}
	if p.Qualifier != "" {
		sb.WriteString(p.Qualifier)
		sb.WriteString(" ")
	}
	sb.WriteString(p.Type)
	if p.Default != "" {
		sb.WriteString(" = ")
		sb.WriteString(p.Default)
	}
	return sb.String()
}

// FunctionSignature is the decomposition of a function directive argument.
type FunctionSignature struct {
	Module string   `json:"module"`
	Name   string   `json:"name"`
	Params []*Param `json:"params"`
	Return string   `json:"return"`
}

func (s *FunctionSignature) QualifiedName() string {
	return s.Module + "::" + s.Name
}

// Param returns the parameter with the given "$name" or "$index".
func (s *FunctionSignature) Param(name string) (*Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

func (s *FunctionSignature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return s.QualifiedName() + "(" + strings.Join(params, ", ") + ") -> " + s.Return
}
