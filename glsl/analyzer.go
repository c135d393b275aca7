package glsl

// Analyzer resolves symbols and types over a parsed TranslationUnit and
// validates the restrictions named in spec.md §4.2: sampler usage,
// constant-expression array indices, and the canonical for-loop form.
type Analyzer struct {
	diags *Diagnostics
	scopes []map[string]*VarDecl
	funcs  map[string]*FuncDecl
	// loopStack holds the induction-variable name of every canonical for
	// loop currently open, innermost last, so IndexExpr can recognize a
	// loop-index-expression per spec.md §4.2.
	loopStack []string
}

// NewAnalyzer creates an Analyzer reporting into diags.
func NewAnalyzer(diags *Diagnostics) *Analyzer {
	return &Analyzer{diags: diags, funcs: map[string]*FuncDecl{}}
}

// Analyze walks tu, annotating every Expr's ValueType, resolving symbol and
// call references, and validating loop forms. It mutates tu in place.
func (a *Analyzer) Analyze(tu *TranslationUnit) {
	a.pushScope()
	defer a.popScope()

	for _, b := range builtinVariables(tu.Stage) {
		a.declare(b)
	}

	for _, g := range tu.Globals {
		a.declare(g)
		if g.Init != nil {
			a.resolveExpr(g.Init)
		}
	}
	for _, fn := range tu.Functions {
		a.funcs[fn.Name] = fn
	}
	for _, fn := range tu.Functions {
		a.analyzeFunc(fn)
	}
}

// builtinVariables returns the predeclared gl_* variables for stage,
// matching the GLSL ES built-in variable table (not user-declarable, so
// they are injected directly into the outermost scope rather than parsed
// from source).
func builtinVariables(stage ShaderStage) []*VarDecl {
	switch stage {
	case StageVertex:
		return []*VarDecl{
			{Name: "gl_Position", Type: Vector(TyFloat, 4), Qualifier: QualOut},
			{Name: "gl_PointSize", Type: Scalar(TyFloat), Qualifier: QualOut},
		}
	case StageFragment:
		return []*VarDecl{
			{Name: "gl_FragColor", Type: Vector(TyFloat, 4), Qualifier: QualOut},
			{Name: "gl_FragData", Type: ValueType{Basic: TyFloat, VectorSize: 4, ArrayLen: 4}, Qualifier: QualOut},
			{Name: "gl_FragCoord", Type: Vector(TyFloat, 4), Qualifier: QualIn},
			{Name: "gl_FrontFacing", Type: Scalar(TyBool), Qualifier: QualIn},
			{Name: "gl_FragDepth", Type: Scalar(TyFloat), Qualifier: QualOut},
			{Name: "gl_PointCoord", Type: Vector(TyFloat, 2), Qualifier: QualIn},
		}
	default:
		return nil
	}
}

func (a *Analyzer) pushScope() { a.scopes = append(a.scopes, map[string]*VarDecl{}) }
func (a *Analyzer) popScope()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *Analyzer) declare(v *VarDecl) {
	top := a.scopes[len(a.scopes)-1]
	if _, dup := top[v.Name]; dup {
		a.diags.Errorf(v.At, "redeclaration of %q in this scope", v.Name)
		return
	}
	top[v.Name] = v
}

func (a *Analyzer) lookup(name string) *VarDecl {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if v, ok := a.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

func (a *Analyzer) analyzeFunc(fn *FuncDecl) {
	a.pushScope()
	defer a.popScope()
	for _, p := range fn.Params {
		a.declare(p)
	}
	if fn.Body != nil {
		a.analyzeStmt(fn.Body, fn)
	}
}

func (a *Analyzer) analyzeStmt(s Stmt, fn *FuncDecl) {
	switch st := s.(type) {
	case *BlockStmt:
		a.pushScope()
		for _, inner := range st.Stmts {
			a.analyzeStmt(inner, fn)
		}
		a.popScope()
	case *DeclStmt:
		for _, d := range st.Decls {
			if d.Init != nil {
				a.resolveExpr(d.Init)
			}
			a.declare(d)
		}
	case *ExprStmt:
		a.resolveExpr(st.X)
	case *IfStmt:
		a.resolveExpr(st.Cond)
		a.analyzeStmt(st.Then, fn)
		if st.Else != nil {
			a.analyzeStmt(st.Else, fn)
		}
	case *LoopStmt:
		a.analyzeLoop(st, fn)
	case *BranchStmt:
		if st.Value != nil {
			a.resolveExpr(st.Value)
		}
	}
}

// analyzeLoop implements the canonical-for-loop validation of spec.md §4.2:
//
//	for(T idx = C; idx ⊙ C'; step) body
//
// with T in {int,uint,float}, ⊙ a comparison, step one of the six allowed
// forms, and C/C' constants. The body may not assign to idx, and idx may
// not flow into an out/inout parameter. A matching loop whose index is
// integer and used as a sampler-array index is marked Unroll.
func (a *Analyzer) analyzeLoop(l *LoopStmt, fn *FuncDecl) {
	a.pushScope()
	defer a.popScope()

	inductionIsInt := false
	if l.Kind == LoopFor {
		a.analyzeStmt(l.Init, fn)
		l.Canonical, l.InductionVar, inductionIsInt = canonicalInductionVar(l)
	}
	if l.Cond != nil {
		a.resolveExpr(l.Cond)
	}
	if l.Post != nil {
		a.resolveExpr(l.Post)
	}

	if l.Canonical {
		a.loopStack = append(a.loopStack, l.InductionVar)
		defer func() { a.loopStack = a.loopStack[:len(a.loopStack)-1] }()

		if assignsTo(l.Body, l.InductionVar) {
			a.diags.Errorf(l.At, "loop body may not assign to induction variable %q", l.InductionVar)
		}
	}

	a.analyzeStmt(l.Body, fn)

	if l.Canonical && usedAsSamplerIndex(l.Body, l.InductionVar, inductionIsInt) {
		l.Unroll = true
	}
}

// canonicalInductionVar reports whether l.Init declares exactly one integer/
// uint/float variable initialized to a constant, per the canonical form.
func canonicalInductionVar(l *LoopStmt) (canonical bool, name string, isInt bool) {
	decl, ok := l.Init.(*DeclStmt)
	if !ok || len(decl.Decls) != 1 {
		return false, "", false
	}
	d := decl.Decls[0]
	switch d.Type.Basic {
	case TyInt, TyUint, TyFloat:
	default:
		return false, "", false
	}
	if _, isLit := d.Init.(*LiteralExpr); !isLit {
		return false, "", false
	}
	if cmp, ok := l.Cond.(*BinaryExpr); ok {
		switch cmp.Op {
		case TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual, TokenEqualEqual, TokenBangEqual:
		default:
			return false, "", false
		}
		if sym, ok := cmp.Left.(*SymbolExpr); !ok || sym.Name != d.Name {
			return false, "", false
		}
	} else {
		return false, "", false
	}
	if !isAllowedStep(l.Post, d.Name) {
		return false, "", false
	}
	return true, d.Name, d.Type.Basic == TyInt
}

func isAllowedStep(post Expr, name string) bool {
	switch e := post.(type) {
	case *UnaryExpr:
		if e.Op != TokenPlusPlus && e.Op != TokenMinusMinus {
			return false
		}
		sym, ok := e.Operand.(*SymbolExpr)
		return ok && sym.Name == name
	case *BinaryExpr:
		if e.Op != TokenPlusEqual && e.Op != TokenMinusEqual {
			return false
		}
		sym, ok := e.Left.(*SymbolExpr)
		if !ok || sym.Name != name {
			return false
		}
		_, isLit := e.Right.(*LiteralExpr)
		return isLit
	default:
		return false
	}
}

func assignsTo(s Stmt, name string) bool {
	found := false
	walkStmt(s, func(e Expr) {
		if b, ok := e.(*BinaryExpr); ok && isAssignOp(b.Op) {
			if sym, ok := b.Left.(*SymbolExpr); ok && sym.Name == name {
				found = true
			}
		}
		if u, ok := e.(*UnaryExpr); ok && (u.Op == TokenPlusPlus || u.Op == TokenMinusMinus) {
			if sym, ok := u.Operand.(*SymbolExpr); ok && sym.Name == name {
				found = true
			}
		}
	})
	return found
}

func isAssignOp(k TokenKind) bool {
	switch k {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual, TokenSlashEqual,
		TokenPercentEqual, TokenAmpEqual, TokenPipeEqual, TokenCaretEqual,
		TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	default:
		return false
	}
}

// usedAsSamplerIndex implements the unroll trigger of spec.md §3/§8: a loop
// is unrolled when its induction variable either indexes a sampler array
// directly, or — being an integer index — flows (even arithmetically) into
// the coordinate argument of a texture-sampling call, since the target ISA
// requires the sample offset to be known at each unrolled iteration.
func usedAsSamplerIndex(s Stmt, name string, inductionIsInt bool) bool {
	found := false
	walkStmt(s, func(e Expr) {
		switch x := e.(type) {
		case *IndexExpr:
			if sym, ok := x.Index.(*SymbolExpr); ok && sym.Name == name {
				found = true
			}
		case *CallExpr:
			if inductionIsInt && isTextureSampleBuiltin(x.Callee) {
				for _, arg := range x.Args {
					if containsSymbol(arg, name) {
						found = true
					}
				}
			}
		}
	})
	return found
}

func isTextureSampleBuiltin(name string) bool {
	switch name {
	case "texture2D", "texture2DProj", "textureCube", "texture2DArray", "texture", "textureLod", "textureProj":
		return true
	default:
		return false
	}
}

func containsSymbol(e Expr, name string) bool {
	found := false
	walkExpr(e, func(sub Expr) {
		if sym, ok := sub.(*SymbolExpr); ok && sym.Name == name {
			found = true
		}
	})
	return found
}

// walkStmt visits every expression reachable from s, including every
// sub-expression (walkExpr recurses through operands, arguments and
// index expressions).
func walkStmt(s Stmt, visit func(Expr)) {
	switch st := s.(type) {
	case *BlockStmt:
		for _, inner := range st.Stmts {
			walkStmt(inner, visit)
		}
	case *ExprStmt:
		walkExpr(st.X, visit)
	case *DeclStmt:
		for _, d := range st.Decls {
			if d.Init != nil {
				walkExpr(d.Init, visit)
			}
		}
	case *IfStmt:
		walkExpr(st.Cond, visit)
		walkStmt(st.Then, visit)
		if st.Else != nil {
			walkStmt(st.Else, visit)
		}
	case *LoopStmt:
		if st.Cond != nil {
			walkExpr(st.Cond, visit)
		}
		if st.Post != nil {
			walkExpr(st.Post, visit)
		}
		walkStmt(st.Body, visit)
	case *BranchStmt:
		if st.Value != nil {
			walkExpr(st.Value, visit)
		}
	}
}

func walkExpr(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch x := e.(type) {
	case *UnaryExpr:
		walkExpr(x.Operand, visit)
	case *BinaryExpr:
		walkExpr(x.Left, visit)
		walkExpr(x.Right, visit)
	case *SelectionExpr:
		walkExpr(x.Cond, visit)
		walkExpr(x.Then, visit)
		walkExpr(x.Else, visit)
	case *CallExpr:
		for _, arg := range x.Args {
			walkExpr(arg, visit)
		}
	case *FieldExpr:
		walkExpr(x.Base, visit)
	case *IndexExpr:
		walkExpr(x.Base, visit)
		walkExpr(x.Index, visit)
	}
}

// resolveExpr computes e's ValueType bottom-up, resolves SymbolExpr.Decl
// and CallExpr.Func, and enforces the sampler-usage and constant-index
// restrictions of spec.md §4.2.
func (a *Analyzer) resolveExpr(e Expr) ValueType {
	switch x := e.(type) {
	case *LiteralExpr:
		return x.Ty
	case *SymbolExpr:
		decl := a.lookup(x.Name)
		if decl == nil {
			a.diags.Errorf(x.At, "undeclared identifier %q", x.Name)
			return ValueType{}
		}
		x.Decl = decl
		x.exprBase.Ty = decl.Type
		return decl.Type
	case *UnaryExpr:
		t := a.resolveExpr(x.Operand)
		if t.IsSampler() {
			a.diags.Errorf(x.At, "samplers cannot be used in arithmetic expressions")
		}
		x.exprBase.Ty = t
		return t
	case *BinaryExpr:
		lt := a.resolveExpr(x.Left)
		rt := a.resolveExpr(x.Right)
		if lt.IsSampler() || rt.IsSampler() {
			if x.Op != TokenEqual {
				a.diags.Errorf(x.At, "samplers are not assignable nor usable in arithmetic")
			}
		}
		result := lt
		if isAssignOp(x.Op) || x.Op == TokenComma {
			result = lt
		} else if rt.VectorSize > lt.VectorSize {
			result = rt
		}
		x.exprBase.Ty = result
		return result
	case *SelectionExpr:
		a.resolveExpr(x.Cond)
		t := a.resolveExpr(x.Then)
		a.resolveExpr(x.Else)
		x.exprBase.Ty = t
		return t
	case *CallExpr:
		var argTypes []ValueType
		for _, arg := range x.Args {
			argTypes = append(argTypes, a.resolveExpr(arg))
		}
		if fn, ok := a.funcs[x.Callee]; ok {
			if !signatureMatches(fn, argTypes) {
				a.diags.Errorf(x.At, "no matching overload of %q for given argument types", x.Callee)
			} else {
				for i, param := range fn.Params {
					if param.Qualifier == QualOut || param.Qualifier == QualInout {
						if sym, ok := x.Args[i].(*SymbolExpr); ok && a.isLoopIndexName(sym.Name) {
							a.diags.Errorf(x.At, "loop index %q may not be passed to an out/inout parameter", sym.Name)
						}
					}
				}
			}
			x.Func = fn
			x.exprBase.Ty = fn.Return
			return fn.Return
		}
		t := builtinReturnType(x.Callee, argTypes)
		x.exprBase.Ty = t
		return t
	case *FieldExpr:
		bt := a.resolveExpr(x.Base)
		t := swizzleType(bt, x.Field)
		x.exprBase.Ty = t
		return t
	case *IndexExpr:
		bt := a.resolveExpr(x.Base)
		a.resolveExpr(x.Index)
		if x.ConstIndex == nil {
			if sym, ok := x.Index.(*SymbolExpr); ok && a.isLoopIndexName(sym.Name) {
				x.LoopIndex = true
			} else {
				a.diags.Errorf(x.At, "array index must be a constant expression outside a canonical loop")
			}
		}
		t := elementType(bt)
		x.exprBase.Ty = t
		return t
	default:
		return ValueType{}
	}
}

func (a *Analyzer) isLoopIndexName(name string) bool {
	for _, n := range a.loopStack {
		if n == name {
			return true
		}
	}
	return false
}

func signatureMatches(fn *FuncDecl, args []ValueType) bool {
	if len(fn.Params) != len(args) {
		return false
	}
	for i, p := range fn.Params {
		if p.Type.Basic != args[i].Basic || p.Type.VectorSize != args[i].VectorSize {
			return false
		}
	}
	return true
}

// builtinReturnType resolves the small set of built-in constructors and
// functions the pipeline specializer needs (vector/matrix constructors and
// texture2D); anything else resolves to the first argument's type, which is
// exact for the elementwise builtins (sin, cos, clamp, mix, ...).
func builtinReturnType(name string, args []ValueType) ValueType {
	switch name {
	case "vec2", "ivec2", "uvec2", "bvec2":
		return Vector(basicForCtor(name), 2)
	case "vec3", "ivec3", "uvec3", "bvec3":
		return Vector(basicForCtor(name), 3)
	case "vec4", "ivec4", "uvec4", "bvec4":
		return Vector(basicForCtor(name), 4)
	case "mat2":
		return Matrix(2, 2)
	case "mat3":
		return Matrix(3, 3)
	case "mat4":
		return Matrix(4, 4)
	case "float", "int", "uint", "bool":
		return Scalar(basicForCtor(name))
	case "texture2D", "texture2DProj", "textureCube", "texture2DArray":
		return Vector(TyFloat, 4)
	case "length", "dot", "distance":
		return Scalar(TyFloat)
	default:
		if len(args) > 0 {
			return args[0]
		}
		return ValueType{}
	}
}

func basicForCtor(name string) BasicType {
	switch {
	case len(name) > 0 && name[0] == 'i':
		return TyInt
	case len(name) > 0 && name[0] == 'u':
		return TyUint
	case len(name) > 0 && name[0] == 'b':
		return TyBool
	default:
		return TyFloat
	}
}

func swizzleType(base ValueType, field string) ValueType {
	if base.Basic == TyStruct {
		// Struct field access: type unknown without the struct table;
		// the IR lowerer resolves this against shaderir.StructType.
		return ValueType{}
	}
	return Vector(base.Basic, uint8(len(field)))
}

func elementType(base ValueType) ValueType {
	if base.IsMatrix() {
		return Vector(TyFloat, base.MatrixRows)
	}
	if base.IsArray() {
		t := base
		t.ArrayLen = 0
		return t
	}
	return Scalar(base.Basic)
}

// Compile runs the full C1+C2 pipeline: line-continuation, lexing,
// preprocessing, parsing, and semantic analysis. It returns the typed AST
// and accumulated diagnostics; per spec.md §7 tier 1, a non-nil
// Diagnostics with HasErrors() true means compile_status = false but the
// AST is still returned so callers can inspect partial structure.
func Compile(source string, fileID int, stage ShaderStage) (*TranslationUnit, *Diagnostics) {
	diags := &Diagnostics{}
	lex := NewLexer(source, fileID)
	tokens, err := lex.Tokenize()
	if err != nil {
		diags.Errorf(Location{File: fileID}, "%s", err)
		return nil, diags
	}
	pp := NewPreprocessor(diags)
	expanded := pp.Process(tokens)
	parser := NewParser(expanded, diags)
	tu := parser.ParseTranslationUnit(stage)
	tu.Version = pp.glslVersion
	tu.ES = pp.glslVersion >= 300 || pp.glslVersion == 100
	NewAnalyzer(diags).Analyze(tu)
	return tu, diags
}
