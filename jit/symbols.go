package jit

import "math"

// StandardSymbols returns the fixed external-symbol whitelist Compile
// resolves OpCall instructions against (spec.md §4.5 step 4): the libm
// transcendentals GLSL ES built-ins (sin, cos, pow, exp, log, ...) lower
// to once package pipeline interprets shader IR into Reactor calls, plus
// the rounding helpers the intrinsic lowering (package reactor) needs a
// host routine for. Anything not on this list is rejected by Compile
// before a Routine is ever handed back, so an unexpected external call is
// a build-time error, never a runtime crash (spec.md §4.5 step 4).
func StandardSymbols() SymbolTable {
	return SymbolTable{
		"floorf":     {Name: "floorf", Func: func(a []float64) float64 { return math.Floor(a[0]) }},
		"ceilf":      {Name: "ceilf", Func: func(a []float64) float64 { return math.Ceil(a[0]) }},
		"nearbyintf": {Name: "nearbyintf", Func: func(a []float64) float64 { return math.RoundToEven(a[0]) }},
		"truncf":     {Name: "truncf", Func: func(a []float64) float64 { return math.Trunc(a[0]) }},
		"sinf":       {Name: "sinf", Func: func(a []float64) float64 { return math.Sin(a[0]) }},
		"cosf":       {Name: "cosf", Func: func(a []float64) float64 { return math.Cos(a[0]) }},
		"powf":       {Name: "powf", Func: func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
		"expf":       {Name: "expf", Func: func(a []float64) float64 { return math.Exp(a[0]) }},
		"exp2f":      {Name: "exp2f", Func: func(a []float64) float64 { return math.Exp2(a[0]) }},
		"logf":       {Name: "logf", Func: func(a []float64) float64 { return math.Log(a[0]) }},
		"log2f":      {Name: "log2f", Func: func(a []float64) float64 { return math.Log2(a[0]) }},
		"sqrtf":      {Name: "sqrtf", Func: func(a []float64) float64 { return math.Sqrt(a[0]) }},
	}
}

// Merge returns a new SymbolTable holding every entry of base plus extra,
// with extra's entries winning on a name collision. Package pipeline uses
// this to layer per-draw texture-sampling symbols on top of
// StandardSymbols without mutating either table.
func Merge(base, extra SymbolTable) SymbolTable {
	out := make(SymbolTable, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
