// Package glsl implements a GLSL ES 1.00 / 3.00 front end: a
// line-continuation pass, a token-and-macro preprocessor, and a
// recursive-descent parser with an attached semantic analyzer that produces
// a typed AST.
//
// The pipeline mirrors the teacher package's WGSL front end
// (github.com/gogpu/naga/wgsl): a Lexer yields Tokens with source Locations, a
// Preprocessor macro-expands and evaluates directives over that token
// stream, and a Parser builds a typed tree while a Analyzer resolves
// symbols, types, and qualifiers. Unlike WGSL, GLSL requires the C
// preprocessor phase to run as a genuine separate layer between lexing and
// parsing (spec.md §4.1), so Preprocessor sits between Lexer and Parser
// rather than being folded into the lexer.
//
// Downstream, shaderir.Lower walks the resulting AST to produce the linear
// shader IR described by spec.md §3 and §6.
package glsl
