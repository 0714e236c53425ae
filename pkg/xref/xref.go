// Package xref resolves inline references against the object registry.
package xref

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/registry"
	"github.com/walteh/eqldoc/pkg/rst"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnresolved   = errors.New("unresolved reference")
	ErrKindMismatch = errors.New("reference kind mismatch")
	ErrClauseForm   = errors.New("target must be in form of STATEMENT:CLAUSE")
)

// ResolveError describes a reference that could not be turned into a link.
type ResolveError struct {
	Domain string
	Role   construct.Role
	Target string
	Reason string
	Err    error
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("cannot resolve :%s:%s: targeting '%s'", e.Domain, e.Role, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Resolver is stateless apart from the registry it reads.
type Resolver struct {
	Registry *registry.Registry
	// Domain prefixes roles in error messages
	Domain           string
	DefaultNamespace string
}

func New(reg *registry.Registry, domain, defaultNamespace string) *Resolver {
	if defaultNamespace == "" {
		defaultNamespace = construct.DefaultNamespace
	}
	return &Resolver{Registry: reg, Domain: domain, DefaultNamespace: defaultNamespace}
}

// Resolve looks ref up. Auto-derived references that do not resolve yield a nil
// link and no error.
func (r *Resolver) Resolve(ctx context.Context, ref *construct.Reference) (*construct.Link, error) {
	kind, err := construct.KindForRole(ref.Role)
	if err != nil {
		return nil, err
	}

	target, err := NormalizeTarget(kind, ref.Target)
	if err != nil {
		return nil, &ResolveError{Domain: r.Domain, Role: ref.Role, Target: strings.ToLower(ref.Target), Reason: err.Error(), Err: err}
	}

	entry, ok := r.Registry.Lookup(target)
	if !ok && (kind == construct.Type || kind == construct.Function) && !construct.HasModule(target) {
		fallback := r.DefaultNamespace + "::" + target
		if entry, ok = r.Registry.Lookup(fallback); ok {
			target = fallback
		}
	}

	if !ok {
		if ref.Auto {
			zerolog.Ctx(ctx).Trace().Str("target", target).Str("role", string(ref.Role)).Msg("auto link did not resolve")
			return nil, nil
		}
		return nil, &ResolveError{Domain: r.Domain, Role: ref.Role, Target: target, Err: ErrUnresolved}
	}

	if entry.Kind != kind {
		return nil, &ResolveError{
			Domain: r.Domain,
			Role:   ref.Role,
			Target: target,
			Reason: fmt.Sprintf("the type of referred object '%s' does not match the reftype", entry.Kind),
			Err:    ErrKindMismatch,
		}
	}

	return &construct.Link{
		Role:     ref.Role,
		Kind:     entry.Kind,
		Name:     entry.Name,
		Document: entry.Document,
		Title:    ref.Title,
		Auto:     ref.Auto,
	}, nil
}

var setOfRe = regexp.MustCompile(`(?i)^\s*SET\s+OF\s+`)

// FilterType drops a leading SET OF and any generic arguments, so
// "SET OF array<int>" looks up "array".
func FilterType(target string) string {
	target = setOfRe.ReplaceAllString(target, "")
	if before, _, ok := strings.Cut(target, "<"); ok {
		target = before
	}
	return strings.TrimSpace(target)
}

// NormalizeTarget turns the written target of a reference into a registry key.
func NormalizeTarget(kind construct.Kind, target string) (string, error) {
	target = strings.TrimSpace(target)

	switch kind {
	case construct.Type:
		return strings.ToLower(FilterType(target)), nil
	case construct.Function:
		return strings.ToLower(target), nil
	case construct.Keyword:
		return construct.KeywordName(target), nil
	case construct.Operator:
		return construct.OperatorName(target), nil
	case construct.Statement:
		return construct.StatementName(target), nil
	case construct.Clause:
		stmt, clause, ok := strings.Cut(target, ":")
		if !ok || strings.TrimSpace(stmt) == "" || strings.TrimSpace(clause) == "" || strings.Contains(clause, ":") {
			return "", errors.Errorf("%w", ErrClauseForm)
		}
		return construct.ClauseName(stmt, clause), nil
	default:
		return "", errors.Errorf("%w: %s", construct.ErrUnknownKind, kind)
	}
}

// ParseRoleText builds an explicit reference from the text of an inline role,
// honouring the "title <target>" form.
func ParseRoleText(role construct.Role, text string) *construct.Reference {
	title, target, explicit := rst.SplitTitle(text)
	return &construct.Reference{Role: role, Target: target, Title: title, Explicit: explicit}
}

// FromRole converts a parsed inline role.
func FromRole(r *rst.Role) *construct.Reference {
	return &construct.Reference{
		Role:     construct.Role(r.Name),
		Target:   r.Target,
		Title:    r.Title,
		Explicit: r.Explicit,
		Location: r.Location,
	}
}
