package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes unit expressions such as "2u-1" or "max(cx, cy)/2".
// Identifiers may contain "$" so that "$default_spread" style unit names
// can be referenced.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Operator", Pattern: `[-+*/%^(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expression is a sum of terms.
type Expression struct {
	Left  *Term     `@@`
	Right []*OpTerm `@@*`
}

// OpTerm is an additive operator followed by a term.
type OpTerm struct {
	Op   string `@("+" | "-")`
	Term *Term  `@@`
}

// Term is a product of factors. A factor that directly follows another
// without an operator is an implicit multiplication ("2u", "3(u+1)").
type Term struct {
	Left  *Unary      `@@`
	Right []*OpFactor `@@*`
}

// OpFactor is either an explicit multiplicative operator with its operand
// or an implicitly multiplied power.
type OpFactor struct {
	Op       string `(  @("*" | "/" | "%")`
	Factor   *Unary `   @@ )`
	Implicit *Power `| @@`
}

// Unary is a signed power.
type Unary struct {
	Sign  string `  @("-" | "+")`
	Inner *Unary `  @@`
	Power *Power `| @@`
}

// Power is a primary optionally raised to a (right-associative) exponent.
type Power struct {
	Base     *Primary `@@`
	Exponent *Unary   `( "^" @@ )?`
}

// Primary is a literal, a symbol or function call, or a parenthesized expression.
type Primary struct {
	Number *float64    `  @Number`
	Symbol *Symbol     `| @@`
	Sub    *Expression `| "(" @@ ")"`
}

// Symbol is a unit name or constant, or a function call when followed by arguments.
type Symbol struct {
	Name string `@Ident`
	Call *Args  `@@?`
}

// Args is a parenthesized argument list.
type Args struct {
	Open string        `@"("`
	List []*Expression `( @@ ( "," @@ )* )? ")"`
}

var parser = participle.MustBuild[Expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)
