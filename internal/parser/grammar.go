package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// typeTerm is `ident ('[' args ']')?`; arguments may nest.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type typeTerm struct {
	Name string     `parser:"@Word"`
	Args []*typeArg `parser:"( \"[\" ( @@ ( \",\" @@ )* )? \"]\" )?"`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type typeArg struct {
	Quoted string    `parser:"  @String"`
	Term   *typeTerm `parser:"| @@"`
}

// text returns the argument as a scalar parameter, trimmed of quote and
// space padding with the micro sign folded to u.
func (a *typeArg) text() string {
	raw := a.Quoted
	if a.Term != nil {
		raw = a.Term.Name
		if len(a.Term.Args) > 0 {
			return ""
		}
	}
	return normalizeArg(raw)
}

//nolint:govet // Participle DSL uses unkeyed fields
var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Punct", Pattern: `[\[\],]`},
	{Name: "Word", Pattern: `[^\s\[\],'"]+`},
})

func buildGrammar() *participle.Parser[typeTerm] {
	return participle.MustBuild[typeTerm](
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
	)
}
