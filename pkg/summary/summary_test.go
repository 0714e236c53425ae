package summary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/eqldoc/pkg/rst"
	"github.com/walteh/eqldoc/pkg/summary"
)

func TestExtract(t *testing.T) {
	fields := &rst.FieldList{Fields: []*rst.Field{{Name: "param", Arg: "$a"}}}

	tests := []struct {
		name    string
		body    []rst.Node
		want    string
		wantErr error
	}{
		{
			name: "plain",
			body: []rst.Node{&rst.Paragraph{Text: "A 64-bit\n   signed integer."}},
			want: "A 64-bit signed integer.",
		},
		{
			name: "after_fields",
			body: []rst.Node{fields, &rst.Paragraph{Text: "Return :eql:type:`str` length."}},
			want: "Return str length.",
		},
		{
			name:    "empty",
			wantErr: summary.ErrMissingDescription,
		},
		{
			name:    "only_fields",
			body:    []rst.Node{fields},
			wantErr: summary.ErrMissingDescription,
		},
		{
			name:    "not_paragraph",
			body:    []rst.Node{&rst.LiteralBlock{Text: "SELECT 1;"}},
			wantErr: summary.ErrNotParagraph,
		},
		{
			name:    "too_long",
			body:    []rst.Node{&rst.Paragraph{Text: strings.Repeat("x", 80)}},
			wantErr: summary.ErrTooLong,
		},
		{
			name: "exactly_max",
			body: []rst.Node{&rst.Paragraph{Text: strings.Repeat("x", 79)}},
			want: strings.Repeat("x", 79),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := summary.Extract(tt.body, 0)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_LengthMessage(t *testing.T) {
	text := strings.Repeat("a ", 45)
	_, err := summary.Extract([]rst.Node{&rst.Paragraph{Text: text}}, 0)
	require.Error(t, err)
	assert.Equal(t,
		`first paragraph is expected to be shorter than 80 characters, got 89: "`+strings.TrimSpace(text)+`"`,
		err.Error())
}

func TestLength_Graphemes(t *testing.T) {
	n, err := summary.Length("e\u0301te\u0301")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = summary.Length("\U0001F1EB\U0001F1F7 flag")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
