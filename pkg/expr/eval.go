// Package expr evaluates the arithmetic used for numeric config fields.
//
// Expressions support + - * / % ^, unary signs, parentheses, implicit
// multiplication ("2u" is 2*u), a small set of math functions and the
// constants pi, e and tau. Free identifiers are resolved against a
// variable scope, which shadows the constants:
//
//	v, err := expr.Eval("2u-1", map[string]float64{"u": 19}) // 37
//
// Trigonometric functions work in radians.
package expr

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Scope resolves identifiers to values.
type Scope interface {
	Lookup(name string) (float64, bool)
}

// Vars is a map-backed Scope.
type Vars map[string]float64

// Lookup implements Scope.
func (v Vars) Lookup(name string) (float64, bool) {
	f, ok := v[name]
	return f, ok
}

var constants = map[string]float64{
	"pi":  math.Pi,
	"PI":  math.Pi,
	"e":   math.E,
	"E":   math.E,
	"tau": 2 * math.Pi,
}

type function struct {
	arity int // -1 for variadic (at least one argument)
	fn    func(args []float64) float64
}

var functions = map[string]function{
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"exp":   {1, func(a []float64) float64 { return math.Exp(a[0]) }},
	"log":   {1, func(a []float64) float64 { return math.Log(a[0]) }},
	"sin":   {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":   {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"tan":   {1, func(a []float64) float64 { return math.Tan(a[0]) }},
	"asin":  {1, func(a []float64) float64 { return math.Asin(a[0]) }},
	"acos":  {1, func(a []float64) float64 { return math.Acos(a[0]) }},
	"atan":  {1, func(a []float64) float64 { return math.Atan(a[0]) }},
	"round": {1, func(a []float64) float64 { return math.Round(a[0]) }},
	"floor": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"pow":   {2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
	"atan2": {2, func(a []float64) float64 { return math.Atan2(a[0], a[1]) }},
	"min": {-1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {-1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
}

// ParseCacheSize bounds the number of cached ASTs.
const ParseCacheSize = 4096

// parsed caches ASTs by source text; config files repeat the same few
// expressions for every key.
var parsed = newParseCache(ParseCacheSize)

func newParseCache(size int) *lru.Cache[string, *Expression] {
	c, err := lru.New[string, *Expression](size)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse compiles src into an AST.
func Parse(src string) (*Expression, error) {
	if ast, ok := parsed.Get(src); ok {
		return ast, nil
	}
	ast, err := parser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	parsed.Add(src, ast)
	return ast, nil
}

// Eval parses and evaluates src against scope. A nil scope has no variables.
func Eval(src string, scope Scope) (float64, error) {
	ast, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return ast.Eval(scope)
}

// Eval evaluates the expression against scope.
func (e *Expression) Eval(scope Scope) (float64, error) {
	v, err := e.Left.eval(scope)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Right {
		w, err := r.Term.eval(scope)
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			v += w
		} else {
			v -= w
		}
	}
	return v, nil
}

func (t *Term) eval(scope Scope) (float64, error) {
	v, err := t.Left.eval(scope)
	if err != nil {
		return 0, err
	}
	for _, f := range t.Right {
		if f.Implicit != nil {
			w, err := f.Implicit.eval(scope)
			if err != nil {
				return 0, err
			}
			v *= w
			continue
		}
		w, err := f.Factor.eval(scope)
		if err != nil {
			return 0, err
		}
		switch f.Op {
		case "*":
			v *= w
		case "/":
			v /= w
		case "%":
			v = math.Mod(v, w)
		}
	}
	return v, nil
}

func (u *Unary) eval(scope Scope) (float64, error) {
	if u.Power != nil {
		return u.Power.eval(scope)
	}
	v, err := u.Inner.eval(scope)
	if err != nil {
		return 0, err
	}
	if u.Sign == "-" {
		return -v, nil
	}
	return v, nil
}

func (p *Power) eval(scope Scope) (float64, error) {
	base, err := p.Base.eval(scope)
	if err != nil {
		return 0, err
	}
	if p.Exponent == nil {
		return base, nil
	}
	exp, err := p.Exponent.eval(scope)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *Primary) eval(scope Scope) (float64, error) {
	switch {
	case p.Number != nil:
		return *p.Number, nil
	case p.Symbol != nil:
		return p.Symbol.eval(scope)
	case p.Sub != nil:
		return p.Sub.Eval(scope)
	}
	return 0, fmt.Errorf("empty expression")
}

func (s *Symbol) eval(scope Scope) (float64, error) {
	if s.Call == nil {
		if scope != nil {
			if v, ok := scope.Lookup(s.Name); ok {
				return v, nil
			}
		}
		if v, ok := constants[s.Name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("undefined symbol %q", s.Name)
	}

	fn, ok := functions[s.Name]
	if !ok {
		return 0, fmt.Errorf("undefined function %q", s.Name)
	}
	n := len(s.Call.List)
	if (fn.arity >= 0 && n != fn.arity) || (fn.arity < 0 && n == 0) {
		return 0, fmt.Errorf("function %q called with %d arguments", s.Name, n)
	}
	args := make([]float64, n)
	for i, a := range s.Call.List {
		v, err := a.Eval(scope)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return fn.fn(args), nil
}
