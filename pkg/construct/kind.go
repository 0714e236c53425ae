// Package construct holds the vocabulary shared by every other package: the kinds
// of language constructs that can be documented, the roles used to reference them
// and the rules that turn a declaration into its registry key.
package construct

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Kind is the kind of a documented language construct.
type Kind int

const (
	KindUnknown Kind = iota
	Function
	Type
	Keyword
	Operator
	Statement
	Clause
)

var ErrUnknownKind = errors.New("unknown construct kind")

var kindNames = map[Kind]string{
	Function:  "function",
	Type:      "type",
	Keyword:   "keyword",
	Operator:  "operator",
	Statement: "statement",
	Clause:    "clause",
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{Function, Type, Keyword, Operator, Statement, Clause}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a directive name such as "function" to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, errors.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, errors.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Role is the name of an inline reference form, e.g. "func" in :eql:func:`...`.
type Role string

const (
	RoleFunction  Role = "func"
	RoleType      Role = "type"
	RoleKeyword   Role = "kw"
	RoleOperator  Role = "op"
	RoleStatement Role = "stmt"
	RoleClause    Role = "clause"
)

var ErrUnknownRole = errors.New("unknown reference role")

var roleKinds = map[Role]Kind{
	RoleFunction:  Function,
	RoleType:      Type,
	RoleKeyword:   Keyword,
	RoleOperator:  Operator,
	RoleStatement: Statement,
	RoleClause:    Clause,
}

// KindForRole resolves the construct kind a role is allowed to point at.
func KindForRole(role Role) (Kind, error) {
	kind, ok := roleKinds[role]
	if !ok {
		return KindUnknown, errors.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	return kind, nil
}

// Role returns the reference role that targets this kind.
func (k Kind) Role() Role {
	for role, kind := range roleKinds {
		if kind == k {
			return role
		}
	}
	return ""
}
