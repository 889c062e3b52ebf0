package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	styleLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:px|pt|mm|em|x|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'(?:\\.|[^'])*'`},
		{Name: "Ident", Pattern: `-?[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[;:,{}]`},
	})

	sheetParser = participle.MustBuild[Stylesheet](
		participle.Lexer(styleLexer),
		participle.Elide("Whitespace", "BlockComment", "HashComment"),
	)
)

// Stylesheet is the root AST node of a style declaration list such as
// `font-size: 18px; line-height: 1.5; wrap: break-word`.
// An optional `{ ... }` wrapper is accepted so a CSS rule body can be pasted as is.
type Stylesheet struct {
	Pos          lexer.Position `parser:"" json:"-"`
	Declarations []*Declaration `parser:"'{'? ';'* ( @@ ';'* )* '}'?"`
}

// Declaration is a single `property: value` pair.
type Declaration struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Property string         `parser:"@Ident ':'"`
	Terms    []*Term        `parser:"@@ ( ','? @@ )*"`
}

// Term is one value token of a declaration.
type Term struct {
	Number *string        `parser:"  @Number"`
	Str    *StringLiteral `parser:"| @String"`
	Ident  *string        `parser:"| @Ident"`
}

// String returns the term as written, with quotes removed from strings.
func (t *Term) String() string {
	switch {
	case t == nil:
		return ""
	case t.Number != nil:
		return *t.Number
	case t.Str != nil:
		return string(*t.Str)
	case t.Ident != nil:
		return *t.Ident
	default:
		return ""
	}
}

// Name returns the lower-cased property name.
func (d *Declaration) Name() string {
	return strings.ToLower(d.Property)
}

// Value 以空格拼接所有取值，例如 "12px 16px"。
func (d *Declaration) Value() string {
	parts := make([]string, 0, len(d.Terms))
	for _, t := range d.Terms {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " ")
}

// Lookup 返回最后一个同名声明（后写覆盖先写），不存在时返回 nil。
func (s *Stylesheet) Lookup(property string) *Declaration {
	if s == nil {
		return nil
	}
	property = strings.ToLower(property)
	for i := len(s.Declarations) - 1; i >= 0; i-- {
		if s.Declarations[i].Name() == property {
			return s.Declarations[i]
		}
	}
	return nil
}

// StringLiteral unquotes single- or double-quoted strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	raw := values[0]
	if strings.HasPrefix(raw, "'") {
		raw = `"` + strings.ReplaceAll(strings.Trim(raw, "'"), `"`, `\"`) + `"`
	}
	val, err := strconv.Unquote(raw)
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses declarations from an io.Reader.
func Parse(r io.Reader) (*Stylesheet, error) {
	return sheetParser.Parse("", r)
}

// ParseString parses declarations from a string.
func ParseString(input string) (*Stylesheet, error) {
	return sheetParser.ParseString("", input)
}
