package glsl

// Node is the common interface of every AST node. The sum type over
// {symbol, literal, unary, binary, selection, aggregate, loop, branch}
// named by spec.md §3 is modeled as a closed set of Go types implementing
// Node, the same pattern the teacher uses for its WGSL AST
// (github.com/gogpu/naga/wgsl/ast.go) and its IR expressions
// (github.com/gogpu/naga/ir/expression.go): a marker method plus a type
// switch at every consumer, instead of deep inheritance (spec.md §9).
type Node interface {
	node()
}

// Expr is any expression node. Every Expr carries its resolved ValueType
// and source Location once the Analyzer has run.
type Expr interface {
	Node
	exprNode()
	Type() ValueType
	Loc() Location
}

type exprBase struct {
	Ty  ValueType
	At  Location
}

func (e exprBase) node()          {}
func (e exprBase) exprNode()      {}
func (e exprBase) Type() ValueType { return e.Ty }
func (e exprBase) Loc() Location   { return e.At }

// SymbolExpr references a variable, parameter, or function by name.
type SymbolExpr struct {
	exprBase
	Name string
	// Decl points at the declaration this symbol resolves to, filled in
	// by the Analyzer.
	Decl *VarDecl
}

// LiteralExpr is a constant scalar value.
type LiteralExpr struct {
	exprBase
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
}

// UnaryExpr applies a prefix/postfix operator to one operand.
type UnaryExpr struct {
	exprBase
	Op      TokenKind
	Postfix bool
	Operand Expr
}

// BinaryExpr applies an infix operator to two operands, including
// assignment forms (=, +=, ...) and comma.
type BinaryExpr struct {
	exprBase
	Op    TokenKind
	Left  Expr
	Right Expr
}

// SelectionExpr is the ternary conditional operator.
type SelectionExpr struct {
	exprBase
	Cond, Then, Else Expr
}

// CallExpr is a function call or a constructor invocation
// (e.g. vec4(a, b, c, d)).
type CallExpr struct {
	exprBase
	Callee string
	Args   []Expr
	// Func is filled in by the Analyzer once overload resolution
	// (spec.md §4.2 "Resolved by exact signature") has run.
	Func *FuncDecl
}

// FieldExpr is field/swizzle access (".xyz", ".rgba", struct field).
type FieldExpr struct {
	exprBase
	Base Expr
	Field string
}

// IndexExpr is array/vector/matrix subscripting with a (possibly dynamic)
// index expression.
type IndexExpr struct {
	exprBase
	Base  Expr
	Index Expr
	// ConstIndex is set when Index is a compile-time constant; required
	// outside loops per spec.md §4.2.
	ConstIndex *int64
	// LoopIndex is set when Index is exactly the induction variable of
	// an enclosing canonical for-loop (spec.md §4.2 loop-index-expression).
	LoopIndex bool
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
	Loc() Location
}

type stmtBase struct{ At Location }

func (s stmtBase) node()       {}
func (s stmtBase) stmtNode()   {}
func (s stmtBase) Loc() Location { return s.At }

// BlockStmt is a brace-delimited sequence of statements with its own scope.
type BlockStmt struct {
	stmtBase
	Stmts []Stmt
}

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	stmtBase
	X Expr
}

// DeclStmt declares one or more local variables.
type DeclStmt struct {
	stmtBase
	Decls []*VarDecl
}

// IfStmt is a selection statement.
type IfStmt struct {
	stmtBase
	Cond       Expr
	Then, Else Stmt
}

// LoopKind distinguishes for/while/do-while.
type LoopKind uint8

const (
	LoopFor LoopKind = iota
	LoopWhile
	LoopDoWhile
)

// LoopStmt is a for/while/do-while loop. Init/Post are nil for while loops;
// Post is nil for do-while.
type LoopStmt struct {
	stmtBase
	Kind LoopKind
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
	// Canonical and InductionVar are filled in by the Analyzer when this
	// loop matches the restricted canonical form of spec.md §4.2.
	Canonical    bool
	InductionVar string
	// Unroll is set when the analyzer determines the induction variable
	// feeds a sampler-array index or any integer index (spec.md §3, §8
	// boundary scenario 2).
	Unroll bool
}

// BranchKind distinguishes break/continue/discard/return.
type BranchKind uint8

const (
	BranchBreak BranchKind = iota
	BranchContinue
	BranchDiscard
	BranchReturn
)

// BranchStmt is break/continue/discard/return, with an optional return
// value.
type BranchStmt struct {
	stmtBase
	Kind  BranchKind
	Value Expr
}

// VarDecl is a variable, parameter, or struct-member declaration.
type VarDecl struct {
	Name      string
	Type      ValueType
	Qualifier Qualifier
	Layout    map[string]int
	Init      Expr
	At        Location
}

// FuncDecl is a function definition or prototype.
type FuncDecl struct {
	Name    string
	Return  ValueType
	Params  []*VarDecl
	Body    *BlockStmt // nil for a prototype
	At      Location
}

// StructDecl is a user struct type declaration.
type StructDecl struct {
	Name    string
	Members []*VarDecl
	At      Location
}

// TranslationUnit is the root AST node for one compiled shader stage.
type TranslationUnit struct {
	Version    int
	ES         bool
	Stage      ShaderStage
	Structs    []*StructDecl
	Globals    []*VarDecl
	Functions  []*FuncDecl
}

// ShaderStage identifies which pipeline stage a shader targets.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
)
