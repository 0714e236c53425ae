package signature

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Grammar for one function signature line:
//
//	std::array_agg(SET OF anytype, $limit: OPTIONAL int64 = 10) -> array<anytype>
//
// ┌───────────┐   ┌──────────────────────────┐   ┌──────────┐
// │ qualified │ → │ ( param , param , ... )  │ → │ -> type  │
// │   name    │   │  [$name:] [qual] type [=]│   │          │
// └───────────┘   └──────────────────────────┘   └──────────┘

var (
	signatureLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "whitespace", Pattern: `\s+`},
		{Name: "Arrow", Pattern: `->`},
		{Name: "Scope", Pattern: `::`},
		{Name: "Variable", Pattern: `\$\w+`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:[eE][-+]?\d+)?n?`},
		{Name: "String", Pattern: `'(?:\\.|[^'])*'|"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `[(),:<>=\[\]{}.+*/%^-]`},
	})

	signatureParser = participle.MustBuild[signatureAST](
		participle.Lexer(signatureLexer),
		participle.Elide("whitespace"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(3),
	)
)

type signatureAST struct {
	Pos    lexer.Position
	Name   *typeAST     `@@`
	Params []*paramAST  `"(" ( @@ ( "," @@ )* )? ")"`
	Return *qualTypeAST `"->" @@`
}

type paramAST struct {
	Pos     lexer.Position
	Name    *string      `( @Variable ":" )?`
	Type    *qualTypeAST `@@`
	Default *valueAST    `( "=" @@ )?`
}

type qualTypeAST struct {
	Qualifier []string `( @( "SET" "OF" ) | @"OPTIONAL" | @"VARIADIC" )?`
	Type      *typeAST `@@`
}

type typeAST struct {
	Name []string      `@Ident ( "::" @Ident )*`
	Args []*typeArgAST `( "<" @@ ( "," @@ )* ">" )?`
}

type typeArgAST struct {
	Label *string  `( @Ident ":" )?`
	Type  *typeAST `@@`
}

// valueAST swallows a default expression up to the next top-level "," or ")".
// Its text is sliced back out of the source by offset.
type valueAST struct {
	Pos    lexer.Position
	Parts  []*valuePart `@@+`
	EndPos lexer.Position
}

type valuePart struct {
	Group *valueGroup `  @@`
	Token string      `| @( Ident | Number | String | Variable | "::" | "<" | ">" | "." | ":" | "-" | "+" | "*" | "/" | "%" | "^" | "=" )`
}

type valueGroup struct {
	Open  string      `@( "(" | "{" | "[" )`
	Items []*valueAST `( @@ ( "," @@ )* )?`
	Close string      `@( ")" | "}" | "]" )`
}

func (q *qualTypeAST) qualifier() string {
	return strings.ToUpper(strings.Join(q.Qualifier, " "))
}

func (t *typeAST) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Name, "::"))
	if len(t.Args) > 0 {
		sb.WriteString("<")
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if arg.Label != nil {
				sb.WriteString(*arg.Label)
				sb.WriteString(": ")
			}
			sb.WriteString(arg.Type.String())
		}
		sb.WriteString(">")
	}
	return sb.String()
}

func (q *qualTypeAST) String() string {
	if qual := q.qualifier(); qual != "" {
		return qual + " " + q.Type.String()
	}
	return q.Type.String()
}
