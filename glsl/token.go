package glsl

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenBoolLiteral

	// Punctuation and operators.
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenAmpersand
	TokenPipe
	TokenCaret
	TokenTilde
	TokenBang
	TokenEqual
	TokenLess
	TokenGreater
	TokenDot
	TokenComma
	TokenColon
	TokenSemicolon
	TokenQuestion
	TokenHash
	TokenHashHash
	TokenPlusPlus
	TokenMinusMinus
	TokenEqualEqual
	TokenBangEqual
	TokenLessEqual
	TokenGreaterEqual
	TokenAmpAmp
	TokenPipePipe
	TokenCaretCaret
	TokenLessLess
	TokenGreaterGreater
	TokenPlusEqual
	TokenMinusEqual
	TokenStarEqual
	TokenSlashEqual
	TokenPercentEqual
	TokenAmpEqual
	TokenPipeEqual
	TokenCaretEqual
	TokenLessLessEqual
	TokenGreaterGreaterEqual

	TokenLeftParen
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenLeftBracket
	TokenRightBracket

	// Newline and end-of-directive markers, consumed by the preprocessor
	// and never seen by the parser.
	TokenNewline
	TokenEOD

	// Keywords. GLSL has no reserved-word list distinct from "keyword you
	// may not use as an identifier"; qualifiers, types and control flow
	// are all ordinary keywords.
	TokenAttribute
	TokenConst
	TokenUniform
	TokenVarying
	TokenIn
	TokenOut
	TokenInout
	TokenCentroid
	TokenFlat
	TokenSmooth
	TokenInvariant
	TokenLayout
	TokenPrecision
	TokenHighp
	TokenMediump
	TokenLowp
	TokenStruct
	TokenVoid
	TokenBool
	TokenInt
	TokenUint
	TokenFloat
	TokenVec2
	TokenVec3
	TokenVec4
	TokenBvec2
	TokenBvec3
	TokenBvec4
	TokenIvec2
	TokenIvec3
	TokenIvec4
	TokenUvec2
	TokenUvec3
	TokenUvec4
	TokenMat2
	TokenMat3
	TokenMat4
	TokenMat2x3
	TokenMat2x4
	TokenMat3x2
	TokenMat3x4
	TokenMat4x2
	TokenMat4x3
	TokenSampler2D
	TokenSampler3D
	TokenSamplerCube
	TokenSampler2DArray
	TokenSampler2DShadow
	TokenSamplerCubeShadow
	TokenSampler2DArrayShadow
	TokenIsampler2D
	TokenUsampler2D
	TokenIf
	TokenElse
	TokenFor
	TokenWhile
	TokenDo
	TokenBreak
	TokenContinue
	TokenDiscard
	TokenReturn
	TokenTrue
	TokenFalse
)

var keywords = map[string]TokenKind{
	"attribute":          TokenAttribute,
	"const":              TokenConst,
	"uniform":            TokenUniform,
	"varying":            TokenVarying,
	"in":                 TokenIn,
	"out":                TokenOut,
	"inout":              TokenInout,
	"centroid":           TokenCentroid,
	"flat":               TokenFlat,
	"smooth":             TokenSmooth,
	"invariant":          TokenInvariant,
	"layout":             TokenLayout,
	"precision":          TokenPrecision,
	"highp":              TokenHighp,
	"mediump":            TokenMediump,
	"lowp":               TokenLowp,
	"struct":             TokenStruct,
	"void":               TokenVoid,
	"bool":               TokenBool,
	"int":                TokenInt,
	"uint":               TokenUint,
	"float":              TokenFloat,
	"vec2":               TokenVec2,
	"vec3":               TokenVec3,
	"vec4":               TokenVec4,
	"bvec2":              TokenBvec2,
	"bvec3":              TokenBvec3,
	"bvec4":              TokenBvec4,
	"ivec2":              TokenIvec2,
	"ivec3":              TokenIvec3,
	"ivec4":              TokenIvec4,
	"uvec2":              TokenUvec2,
	"uvec3":              TokenUvec3,
	"uvec4":              TokenUvec4,
	"mat2":               TokenMat2,
	"mat3":               TokenMat3,
	"mat4":               TokenMat4,
	"mat2x3":             TokenMat2x3,
	"mat2x4":             TokenMat2x4,
	"mat3x2":             TokenMat3x2,
	"mat3x4":             TokenMat3x4,
	"mat4x2":             TokenMat4x2,
	"mat4x3":             TokenMat4x3,
	"sampler2D":          TokenSampler2D,
	"sampler3D":          TokenSampler3D,
	"samplerCube":        TokenSamplerCube,
	"sampler2DArray":     TokenSampler2DArray,
	"sampler2DShadow":    TokenSampler2DShadow,
	"samplerCubeShadow":  TokenSamplerCubeShadow,
	"sampler2DArrayShadow": TokenSampler2DArrayShadow,
	"isampler2D":         TokenIsampler2D,
	"usampler2D":         TokenUsampler2D,
	"if":                 TokenIf,
	"else":               TokenElse,
	"for":                TokenFor,
	"while":              TokenWhile,
	"do":                 TokenDo,
	"break":              TokenBreak,
	"continue":           TokenContinue,
	"discard":            TokenDiscard,
	"return":             TokenReturn,
	"true":                TokenTrue,
	"false":               TokenFalse,
}

// LookupKeyword returns the keyword TokenKind for ident, or (0, false) if
// ident is an ordinary identifier.
func LookupKeyword(ident string) (TokenKind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Location identifies a point in a translation unit: which source string
// (spec.md §4.1 "array of strings") and which logical line within the
// concatenated unit, after line-continuation collapsing.
type Location struct {
	File int
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.File, l.Line)
}

// TokenFlags records out-of-band lexical facts the preprocessor and parser
// need but which are not part of a token's identity.
type TokenFlags uint8

const (
	// FlagLeadingSpace marks a token preceded by whitespace on its line.
	// Used to distinguish function-like macro invocations ("F(" with no
	// space) from a plain identifier followed by a parenthesized
	// expression, per spec.md §4.1.
	FlagLeadingSpace TokenFlags = 1 << iota
	// FlagStartOfLine marks the first token on a logical line, used by
	// the directive parser to recognize '#' as introducing a directive.
	FlagStartOfLine
)

// Token is a single lexical unit.
type Token struct {
	Kind  TokenKind
	Text  string
	Loc   Location
	Flags TokenFlags
}

func (t Token) hasLeadingSpace() bool { return t.Flags&FlagLeadingSpace != 0 }
func (t Token) startOfLine() bool     { return t.Flags&FlagStartOfLine != 0 }

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Loc)
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

var tokenKindNames = map[TokenKind]string{
	TokenEOF: "EOF", TokenError: "Error", TokenIdent: "Ident",
	TokenIntLiteral: "IntLiteral", TokenFloatLiteral: "FloatLiteral",
	TokenBoolLiteral: "BoolLiteral", TokenNewline: "Newline", TokenEOD: "EOD",
}
