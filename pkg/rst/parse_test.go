package rst_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/eqldoc/pkg/rst"
)

const sample = `Functions
=========

.. eql:function:: std::len(str) -> int64

    :param $0: the string
    :paramtype $0: str

    Return the length of :eql:type:` + "`str`" + `.

.. eql:statement:: SELECT
    :haswith:

    Select things.

    .. eql:synopsis::

        SELECT <expr>;

    .. eql:clause:: FILTER: A FILTER B

        Filter things.

A literal::

    code here
`

func TestParse_Structure(t *testing.T) {
	doc, err := rst.Parse(context.Background(), "functions", "functions.rst", []byte(sample), rst.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Children, 5)

	title, ok := doc.Children[0].(*rst.Title)
	require.True(t, ok, "first node should be a title")
	assert.Equal(t, "Functions", title.Text)

	fn, ok := doc.Children[1].(*rst.Directive)
	require.True(t, ok, "second node should be a directive")
	assert.Equal(t, "eql", fn.Domain)
	assert.Equal(t, "function", fn.Name)
	assert.Equal(t, "eql:function", fn.FullName())
	assert.Equal(t, "std::len(str) -> int64", fn.Argument)
	assert.Equal(t, 4, fn.Location.Line)
	require.Len(t, fn.Body, 2)

	fl, ok := fn.Body[0].(*rst.FieldList)
	require.True(t, ok, "function body should start with a field list")
	require.Len(t, fl.Fields, 2)
	assert.Equal(t, "param", fl.Fields[0].Name)
	assert.Equal(t, "$0", fl.Fields[0].Arg)
	assert.Equal(t, "the string", fl.Fields[0].Body)
	assert.Equal(t, "paramtype", fl.Fields[1].Name)
	assert.Equal(t, 7, fl.Fields[1].Location.Line)

	para, ok := fn.Body[1].(*rst.Paragraph)
	require.True(t, ok, "function body should end with a paragraph")
	require.Len(t, para.Roles, 1)
	role := para.Roles[0]
	assert.Equal(t, "eql:type", role.FullName())
	assert.Equal(t, "str", role.Target)
	assert.Equal(t, 9, role.Location.Line)
	assert.Equal(t, 26, role.Location.Column)

	stmt, ok := doc.Children[2].(*rst.Directive)
	require.True(t, ok, "third node should be a directive")
	assert.True(t, stmt.HasOption("haswith"))
	assert.Equal(t, []string{"haswith"}, stmt.OptionOrder)
	require.Len(t, stmt.Body, 3)

	syn, ok := stmt.Body[1].(*rst.Directive)
	require.True(t, ok, "synopsis should be a directive")
	assert.Equal(t, "synopsis", syn.Name)
	assert.Equal(t, []string{"SELECT <expr>;"}, syn.Raw)
	assert.Equal(t, 18, syn.ContentLocation.Line)

	clause, ok := stmt.Body[2].(*rst.Directive)
	require.True(t, ok, "clause should be a directive")
	assert.Equal(t, "FILTER: A FILTER B", clause.Argument)

	lit, ok := doc.Children[4].(*rst.LiteralBlock)
	require.True(t, ok, "last node should be a literal block")
	assert.Equal(t, "code here", lit.Text)
	assert.Equal(t, "A literal:", doc.Children[3].(*rst.Paragraph).Text)
}

func TestParse_Tabs(t *testing.T) {
	src := ".. eql:type:: std::int\n\n\t:param $a: x\n\n\tAn integer.\n"
	doc, err := rst.Parse(context.Background(), "types", "types.rst", []byte(src), rst.Options{TabWidth: 4})
	require.NoError(t, err)
	require.Len(t, doc.Children, 1)

	d := doc.Children[0].(*rst.Directive)
	require.Len(t, d.Body, 2)
	assert.Equal(t, 5, d.Body[0].Loc().Column)
	assert.Equal(t, 3, d.Body[0].Loc().Line)
}

func TestParse_ContentOnlyDirective(t *testing.T) {
	src := ".. eql:synopsis::\n    SELECT expr\n    :opt: x\n\n.. eql:type:: std::int\n    std::str\n"
	contentOnly := func(domain, name string) bool { return domain == "eql" && name == "synopsis" }

	tests := []struct {
		name     string
		opts     rst.Options
		wantArg  string
		wantRaw  []string
		wantLine int
	}{
		{
			name:    "default",
			opts:    rst.Options{},
			wantArg: "SELECT expr",
		},
		{
			name:     "content_only",
			opts:     rst.Options{ContentOnly: contentOnly},
			wantRaw:  []string{"SELECT expr", ":opt: x"},
			wantLine: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := rst.Parse(context.Background(), "s", "s.rst", []byte(src), tt.opts)
			require.NoError(t, err)
			require.Len(t, doc.Children, 2)

			syn := doc.Children[0].(*rst.Directive)
			assert.Equal(t, tt.wantArg, syn.Argument)
			assert.Equal(t, tt.wantRaw, syn.Raw)
			assert.Equal(t, tt.wantLine, syn.ContentLocation.Line)

			typ := doc.Children[1].(*rst.Directive)
			assert.Equal(t, "std::int std::str", typ.Argument, "other directives keep their argument continuation")
		})
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := rst.Parse(context.Background(), "bad", "bad.rst", []byte{0xff, 0xfe}, rst.Options{})
	assert.ErrorIs(t, err, rst.ErrInvalidEncoding)
}

func TestParse_Comment(t *testing.T) {
	src := ".. a comment\n   continued\n\nText.\n"
	doc, err := rst.Parse(context.Background(), "c", "c.rst", []byte(src), rst.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Children, 2)
	assert.Equal(t, "a comment\ncontinued", doc.Children[0].(*rst.Comment).Text)
}

func TestWalk(t *testing.T) {
	doc, err := rst.Parse(context.Background(), "functions", "functions.rst", []byte(sample), rst.Options{})
	require.NoError(t, err)

	var names []string
	rst.Walk(doc.Children, func(n rst.Node) bool {
		if d, ok := n.(*rst.Directive); ok {
			names = append(names, d.Name)
		}
		return true
	})
	assert.Equal(t, []string{"function", "statement", "synopsis", "clause"}, names)
}

func TestParse_Titles(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantTitle string
		wantLine  int
		wantPara  string
	}{
		{
			name:      "underlined",
			src:       "Types\n=====\n",
			wantTitle: "Types",
			wantLine:  1,
		},
		{
			name:      "over_and_underlined",
			src:       "-------\n Types\n-------\n",
			wantTitle: "Types",
			wantLine:  2,
		},
		{
			name:     "mixed_characters",
			src:      "Types\n=-=-=\n",
			wantPara: "Types\n=-=-=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := rst.Parse(context.Background(), "index", "index.rst", []byte(tt.src), rst.Options{})
			require.NoError(t, err)
			require.Len(t, doc.Children, 1)

			if tt.wantTitle != "" {
				title, ok := doc.Children[0].(*rst.Title)
				require.True(t, ok, "got %T", doc.Children[0])
				assert.Equal(t, tt.wantTitle, title.Text)
				assert.Equal(t, tt.wantLine, title.Location.Line)
				return
			}

			para, ok := doc.Children[0].(*rst.Paragraph)
			require.True(t, ok, "got %T", doc.Children[0])
			assert.Equal(t, tt.wantPara, para.Text)
		})
	}
}
