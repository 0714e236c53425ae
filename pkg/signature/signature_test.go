package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/eqldoc/pkg/construct"
	"github.com/walteh/eqldoc/pkg/signature"
	"gitlab.com/tozd/go/errors"
)

func TestParseFunction(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantModule string
		wantName   string
		wantParams []*construct.Param
		wantReturn string
	}{
		{
			name:       "positional_param",
			input:      "std::len(str) -> int64",
			wantModule: "std",
			wantName:   "len",
			wantParams: []*construct.Param{
				{Name: "$0", Positional: true, Type: "str"},
			},
			wantReturn: "int64",
		},
		{
			name:       "set_of_and_generic_return",
			input:      "std::array_agg(SET OF anytype) -> array<anytype>",
			wantModule: "std",
			wantName:   "array_agg",
			wantParams: []*construct.Param{
				{Name: "$0", Positional: true, Qualifier: "SET OF", Type: "anytype"},
			},
			wantReturn: "array<anytype>",
		},
		{
			name:       "named_with_default",
			input:      "std::to_str($dt: datetime, $fmt: OPTIONAL str = {}) -> str",
			wantModule: "std",
			wantName:   "to_str",
			wantParams: []*construct.Param{
				{Name: "$dt", Type: "datetime"},
				{Name: "$fmt", Qualifier: "OPTIONAL", Type: "str", Default: "{}"},
			},
			wantReturn: "str",
		},
		{
			name:       "mixed_positional_indexes",
			input:      "std::find(anytype, $b: str, bool) -> set of int64",
			wantModule: "std",
			wantName:   "find",
			wantParams: []*construct.Param{
				{Name: "$0", Positional: true, Type: "anytype"},
				{Name: "$b", Type: "str"},
				{Name: "$2", Positional: true, Type: "bool"},
			},
			wantReturn: "SET OF int64",
		},
		{
			name:       "no_params_tuple_return",
			input:      "sys::get_version() -> tuple<major: int64, minor: int64>",
			wantModule: "sys",
			wantName:   "get_version",
			wantParams: []*construct.Param{},
			wantReturn: "tuple<major: int64, minor: int64>",
		},
		{
			name:       "negative_default",
			input:      "std::round($x: float64, $d: int64 = -1) -> float64",
			wantModule: "std",
			wantName:   "round",
			wantParams: []*construct.Param{
				{Name: "$x", Type: "float64"},
				{Name: "$d", Type: "int64", Default: "-1"},
			},
			wantReturn: "float64",
		},
		{
			name:       "nested_module",
			input:      "cal::to_local_date(VARIADIC str) -> cal::local_date",
			wantModule: "cal",
			wantName:   "to_local_date",
			wantParams: []*construct.Param{
				{Name: "$0", Positional: true, Qualifier: "VARIADIC", Type: "str"},
			},
			wantReturn: "cal::local_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := signature.ParseFunction(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantModule, got.Module)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantParams, got.Params)
			assert.Equal(t, tt.wantReturn, got.Return)
		})
	}
}

func TestParseFunction_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "missing_namespace", input: "len(str) -> int64", wantErr: signature.ErrMissingNamespace},
		{name: "unterminated", input: "std::len(str -> int64", wantErr: signature.ErrMalformed},
		{name: "missing_return", input: "std::len(str)", wantErr: signature.ErrMalformed},
		{name: "generic_name", input: "std::len<int>(str) -> int64", wantErr: signature.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signature.ParseFunction(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseFunction_ParseErrorCause(t *testing.T) {
	_, err := signature.ParseFunction("std::len(str")
	require.Error(t, err)

	var perr *signature.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, `could not parse function signature "std::len(str"`, perr.Message())
	assert.NotNil(t, perr.Err)
}

func TestParseType(t *testing.T) {
	module, name, err := signature.ParseType("std::int")
	require.NoError(t, err)
	assert.Equal(t, "std", module)
	assert.Equal(t, "int", name)

	for _, bad := range []string{"int", "::int", "std::", "a::b::c"} {
		_, _, err := signature.ParseType(bad)
		assert.ErrorIs(t, err, signature.ErrTypeNamespace, bad)
	}
}

func TestSplitNamed(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantID      string
		wantDisplay string
		wantErr     error
	}{
		{name: "operator", input: "PLUS: A + B", wantID: "plus", wantDisplay: "A + B"},
		{name: "first_colon_only", input: "IDX: A[B:C]", wantID: "idx", wantDisplay: "A[B:C]"},
		{name: "no_colon", input: "PLUS A + B", wantErr: signature.ErrTemplate},
		{name: "empty_display", input: "PLUS:  ", wantErr: signature.ErrInvalid},
		{name: "empty_id", input: " : A + B", wantErr: signature.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, display, err := signature.SplitNamed(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantDisplay, display)
		})
	}
}
