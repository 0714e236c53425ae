package xref_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/registry"
	"github.com/walteh/eqldoc/pkg/xref"
)

func newResolver(t *testing.T) *xref.Resolver {
	t.Helper()
	reg := registry.New()
	for name, kind := range map[string]construct.Kind{
		"std::int":               construct.Type,
		"std::array":             construct.Type,
		"std::len":               construct.Function,
		"keyword::set-of":        construct.Keyword,
		"operator::plus":         construct.Operator,
		"statement::select":      construct.Statement,
		"clause::select::filter": construct.Clause,
		"cal::local_date":        construct.Type,
	} {
		require.NoError(t, reg.Register(name, kind, "doc"))
	}
	return xref.New(reg, "eql", "")
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		ref       *construct.Reference
		wantName  string
		wantTitle string
		wantNil   bool
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "generic_type_truncated",
			ref:       &construct.Reference{Role: construct.RoleType, Target: "array<int>", Title: "array<int>"},
			wantName:  "std::array",
			wantTitle: "array<int>",
		},
		{
			name:      "set_of_stripped",
			ref:       &construct.Reference{Role: construct.RoleType, Target: "SET OF int", Title: "SET OF int"},
			wantName:  "std::int",
			wantTitle: "SET OF int",
		},
		{
			name:     "qualified_type",
			ref:      &construct.Reference{Role: construct.RoleType, Target: "cal::local_date"},
			wantName: "cal::local_date",
		},
		{
			name:     "bare_function_falls_back_to_std",
			ref:      &construct.Reference{Role: construct.RoleFunction, Target: "LEN"},
			wantName: "std::len",
		},
		{
			name:     "keyword",
			ref:      &construct.Reference{Role: construct.RoleKeyword, Target: "SET-OF"},
			wantName: "keyword::set-of",
		},
		{
			name:     "operator",
			ref:      &construct.Reference{Role: construct.RoleOperator, Target: "PLUS"},
			wantName: "operator::plus",
		},
		{
			name:     "statement",
			ref:      &construct.Reference{Role: construct.RoleStatement, Target: "SELECT"},
			wantName: "statement::select",
		},
		{
			name:     "clause",
			ref:      &construct.Reference{Role: construct.RoleClause, Target: "SELECT:FILTER"},
			wantName: "clause::select::filter",
		},
		{
			name:    "clause_without_statement",
			ref:     &construct.Reference{Role: construct.RoleClause, Target: "FILTER"},
			wantErr: xref.ErrClauseForm,
			wantMsg: "cannot resolve :eql:clause: targeting 'filter': target must be in form of STATEMENT:CLAUSE",
		},
		{
			name:    "explicit_miss",
			ref:     &construct.Reference{Role: construct.RoleType, Target: "int1"},
			wantErr: xref.ErrUnresolved,
			wantMsg: "cannot resolve :eql:type: targeting 'int1'",
		},
		{
			name:    "auto_miss_is_silent",
			ref:     &construct.Reference{Role: construct.RoleType, Target: "int1", Auto: true},
			wantNil: true,
		},
		{
			name:    "qualified_miss_has_no_fallback",
			ref:     &construct.Reference{Role: construct.RoleType, Target: "sys::int"},
			wantErr: xref.ErrUnresolved,
		},
		{
			name:    "keyword_has_no_fallback",
			ref:     &construct.Reference{Role: construct.RoleKeyword, Target: "int"},
			wantErr: xref.ErrUnresolved,
		},
		{
			name:    "kind_mismatch",
			ref:     &construct.Reference{Role: construct.RoleFunction, Target: "std::int"},
			wantErr: xref.ErrKindMismatch,
			wantMsg: "cannot resolve :eql:func: targeting 'std::int': the type of referred object 'type' does not match the reftype",
		},
		{
			name:    "kind_mismatch_on_auto_link",
			ref:     &construct.Reference{Role: construct.RoleFunction, Target: "std::int", Auto: true},
			wantErr: xref.ErrKindMismatch,
		},
		{
			name:    "unknown_role",
			ref:     &construct.Reference{Role: "attr", Target: "x"},
			wantErr: construct.ErrUnknownRole,
		},
	}

	r := newResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := r.Resolve(context.Background(), tt.ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, err.Error())
				}
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, link)
				return
			}
			require.NotNil(t, link)
			assert.Equal(t, tt.wantName, link.Name)
			assert.Equal(t, "doc", link.Document)
			assert.Equal(t, tt.wantTitle, link.Title)
		})
	}
}

func TestFilterType(t *testing.T) {
	assert.Equal(t, "array", xref.FilterType("array<int>"))
	assert.Equal(t, "int", xref.FilterType("  set of int"))
	assert.Equal(t, "array", xref.FilterType("SET OF array<tuple<int, str>>"))
	assert.Equal(t, "std::str", xref.FilterType("std::str"))
}

func TestParseRoleText(t *testing.T) {
	ref := xref.ParseRoleText(construct.RoleType, "array<int>")
	assert.Equal(t, "array<int>", ref.Target)
	assert.False(t, ref.Explicit)

	ref = xref.ParseRoleText(construct.RoleFunction, "length <std::len>")
	assert.Equal(t, "std::len", ref.Target)
	assert.Equal(t, "length", ref.Title)
	assert.True(t, ref.Explicit)
}
