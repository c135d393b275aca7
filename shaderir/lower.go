package shaderir

import (
	"fmt"

	"github.com/cpugl/swr/glsl"
)

// Lower walks a type-checked glsl.TranslationUnit (the output of
// glsl.Compile) and emits a self-contained Program: the C3 AST→Shader IR
// pass of spec.md §4.3.
//
// Lower assumes tu has already been through glsl.Analyzer with no errors;
// it does not re-validate sampler usage, loop form, or constant indices —
// those are C2's job.
func Lower(tu *glsl.TranslationUnit, entry string) (*Program, error) {
	l := &lowerer{
		tu:      tu,
		locals:  map[string]Ref{},
		globals: map[string]Ref{},
	}
	stage := StageVertex
	if tu.Stage == glsl.StageFragment {
		stage = StageFragment
	}
	l.prog = &Program{Stage: stage}

	l.allocateGlobals()

	fn := l.findEntry(entry)
	if fn == nil {
		return nil, fmt.Errorf("shaderir: entry point %q not found", entry)
	}
	l.lowerFunction(fn)
	l.prog.Instructions = append(l.prog.Instructions, Instruction{Opcode: OpReturn})
	l.pruneUnusedUniforms()
	return l.prog, nil
}

type lowerer struct {
	tu      *glsl.TranslationUnit
	prog    *Program
	locals  map[string]glslRef
	globals map[string]glslRef
	tempSeq uint32
	labelSeq uint32
	loopSeq  uint32
}

// glslRef is an alias used only to keep field types self-documenting; Ref
// already carries everything needed.
type glslRef = Ref

func (l *lowerer) findEntry(name string) *glsl.FuncDecl {
	for _, fn := range l.tu.Functions {
		if fn.Name == name {
			return fn
		}
		if name == "" && fn.Name == "main" {
			return fn
		}
	}
	return nil
}

func widthOf(t glsl.ValueType) uint8 {
	if t.VectorSize == 0 {
		return 1
	}
	return t.VectorSize
}

// matrixColsOf returns how many consecutive same-bank registers a value
// of type t occupies: one column vector register per matrix column, or
// 1 for any non-matrix type. The register file has no dedicated matrix
// storage class, so a matNxM value is always carried as N consecutive
// registers of width M, column-major, starting at the Ref lowering
// returns for it.
func matrixColsOf(t glsl.ValueType) uint8 {
	if t.MatrixCols == 0 {
		return 1
	}
	return t.MatrixCols
}

// column returns the Ref for column c (0-based) of a matrix value whose
// first column is base.
func column(base Ref, c uint8) Ref {
	r := base
	r.Index += uint32(c)
	return r
}

func regTypeOf(t glsl.ValueType) RegisterType {
	switch t.Basic {
	case glsl.TyInt:
		return RegInt
	case glsl.TyUint:
		return RegUint
	case glsl.TyBool:
		return RegBool
	default:
		return RegFloat
	}
}

func (l *lowerer) allocateGlobals() {
	var uniformIdx, samplerIdx, inputIdx, outputIdx uint32
	for _, g := range l.tu.Globals {
		switch g.Qualifier {
		case glsl.QualUniform:
			if g.Type.IsSampler() {
				target := samplerTargetOf(g.Type.Basic)
				ref := Ref{Bank: BankSampler, Index: samplerIdx, Type: RegFloat, Width: 1}
				samplerIdx++
				l.globals[g.Name] = ref
				l.prog.Samplers = append(l.prog.Samplers, SamplerInfo{Name: g.Name, Register: ref, Target: target})
				continue
			}
			ref := Ref{Bank: BankUniform, Index: uniformIdx, Type: regTypeOf(g.Type), Width: widthOf(g.Type)}
			arrayLen := g.Type.ArrayLen
			if arrayLen == 0 {
				arrayLen = 1
			}
			uniformIdx += uint32(matrixColsOf(g.Type)) * arrayLen
			l.globals[g.Name] = ref
			l.prog.Uniforms = append(l.prog.Uniforms, UniformInfo{Name: g.Name, Register: ref, ArrayLen: g.Type.ArrayLen})
		case glsl.QualVarying, glsl.QualAttribute, glsl.QualIn:
			bank := BankInput
			idx := inputIdx
			cols := matrixColsOf(g.Type)
			inputIdx += uint32(cols)
			ref := Ref{Bank: bank, Index: idx, Type: regTypeOf(g.Type), Width: widthOf(g.Type)}
			l.globals[g.Name] = ref
			if g.Qualifier == glsl.QualVarying {
				l.prog.Varyings = append(l.prog.Varyings, VaryingLinkage{Register: ref, Location: idx, Interpolate: interpolationOf(g.Qualifier)})
			} else {
				l.prog.Attributes = append(l.prog.Attributes, AttributeInfo{Name: g.Name, Register: ref})
			}
		case glsl.QualOut:
			ref := Ref{Bank: BankOutput, Index: outputIdx, Type: regTypeOf(g.Type), Width: widthOf(g.Type)}
			outputIdx += uint32(matrixColsOf(g.Type))
			l.globals[g.Name] = ref
		default:
			ref := Ref{Bank: BankUniform, Index: uniformIdx, Type: regTypeOf(g.Type), Width: widthOf(g.Type)}
			uniformIdx += uint32(matrixColsOf(g.Type))
			l.globals[g.Name] = ref
		}
	}
	l.prog.NumInputs = inputIdx
	l.prog.NumOutputs = outputIdx

	// gl_Position / gl_FragColor and friends are predeclared by the
	// analyzer but never appear in tu.Globals; give them fixed output
	// slots so the pipeline specializer can find them by name.
	l.prog.Builtins = map[string]Ref{}
	for _, name := range []string{"gl_Position", "gl_FragColor", "gl_FragDepth", "gl_PointSize"} {
		if _, ok := l.globals[name]; !ok {
			ref := Ref{Bank: BankOutput, Index: outputIdx, Type: RegFloat, Width: 4}
			outputIdx++
			l.globals[name] = ref
		}
		l.prog.Builtins[name] = l.globals[name]
	}
	for _, name := range []string{"gl_FragCoord", "gl_FrontFacing", "gl_PointCoord"} {
		if _, ok := l.globals[name]; !ok {
			ref := Ref{Bank: BankInput, Index: inputIdx, Type: RegFloat, Width: 4}
			inputIdx++
			l.globals[name] = ref
		}
		l.prog.Builtins[name] = l.globals[name]
	}
	l.prog.NumOutputs = outputIdx
	l.prog.NumInputs = inputIdx
}

func samplerTargetOf(b glsl.BasicType) SamplerTarget {
	switch b {
	case glsl.TySampler3D:
		return Sampler3D
	case glsl.TySamplerCube:
		return SamplerCube
	case glsl.TySampler2DArray:
		return Sampler2DArray
	case glsl.TySampler2DShadow, glsl.TySamplerCubeShadow, glsl.TySampler2DArrayShadow:
		return Sampler2DShadow
	default:
		return Sampler2D
	}
}

func interpolationOf(q glsl.Qualifier) Interpolation {
	switch q {
	case glsl.QualFlat:
		return InterpFlat
	case glsl.QualCentroid:
		return InterpCentroid
	default:
		return InterpSmooth
	}
}

func (l *lowerer) newTemp(width uint8, ty RegisterType) Ref {
	return l.newTempCols(width, ty, 1)
}

// newTempCols reserves cols consecutive temp registers, each of the
// given width, and returns the first — the matrix-value convention
// matrixColsOf documents.
func (l *lowerer) newTempCols(width uint8, ty RegisterType, cols uint8) Ref {
	r := Ref{Bank: BankTemp, Index: l.tempSeq, Type: ty, Width: width}
	l.tempSeq += uint32(cols)
	if l.tempSeq > l.prog.NumTemps {
		l.prog.NumTemps = l.tempSeq
	}
	return r
}

// newTempFor reserves the temp register(s) a value of type t needs,
// matrix or not.
func (l *lowerer) newTempFor(t glsl.ValueType) Ref {
	return l.newTempCols(widthOf(t), regTypeOf(t), matrixColsOf(t))
}

// copyValue emits a column-wise copy of a (possibly matrix) value from
// src to dst.
func (l *lowerer) copyValue(dst, src Ref, cols uint8, line int) {
	for c := uint8(0); c < cols; c++ {
		d, s := column(dst, c), column(src, c)
		l.emit(Instruction{Opcode: OpMov, Dst: d, DstMask: WriteAll, Src: [4]Ref{s}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1, Line: line})
	}
}

func (l *lowerer) emit(in Instruction) {
	l.prog.Instructions = append(l.prog.Instructions, in)
}

func (l *lowerer) lowerFunction(fn *glsl.FuncDecl) {
	for _, p := range fn.Params {
		l.locals[p.Name] = l.newTempFor(p.Type)
	}
	if fn.Body != nil {
		l.lowerStmt(fn.Body)
	}
}

func (l *lowerer) lowerStmt(s glsl.Stmt) {
	switch st := s.(type) {
	case *glsl.BlockStmt:
		for _, inner := range st.Stmts {
			l.lowerStmt(inner)
		}
	case *glsl.DeclStmt:
		for _, d := range st.Decls {
			reg := l.newTempFor(d.Type)
			l.locals[d.Name] = reg
			if d.Init != nil {
				src := l.lowerExpr(d.Init)
				l.copyValue(reg, src, matrixColsOf(d.Type), d.At.Line)
			}
		}
	case *glsl.ExprStmt:
		l.lowerExpr(st.X)
	case *glsl.IfStmt:
		l.lowerIf(st)
	case *glsl.LoopStmt:
		l.lowerLoop(st)
	case *glsl.BranchStmt:
		l.lowerBranch(st)
	}
}

func (l *lowerer) lowerIf(st *glsl.IfStmt) {
	cond := l.lowerExpr(st.Cond)
	label := l.labelSeq
	l.labelSeq++
	l.emit(Instruction{Opcode: OpIf, Predicate: true, PredicateRef: cond, LabelID: label, Line: st.At.Line})
	l.lowerStmt(st.Then)
	if st.Else != nil {
		l.emit(Instruction{Opcode: OpElse, LabelID: label})
		l.lowerStmt(st.Else)
	}
	l.emit(Instruction{Opcode: OpEndIf, LabelID: label})
}

func (l *lowerer) lowerLoop(st *glsl.LoopStmt) {
	loopID := l.loopSeq
	l.loopSeq++

	if st.Kind == glsl.LoopFor && st.Init != nil {
		l.lowerStmt(st.Init)
	}
	l.emit(Instruction{Opcode: OpLoop, LoopID: loopID, Unroll: st.Unroll, Line: st.At.Line})
	if st.Cond != nil {
		cond := l.lowerExpr(st.Cond)
		exit := l.newTemp(1, RegBool)
		l.emit(Instruction{Opcode: OpNot, Dst: exit, DstMask: WriteAll, Src: [4]Ref{cond}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1})
		l.emit(Instruction{Opcode: OpBreakC, Predicate: true, PredicateRef: exit, LoopID: loopID})
	}
	l.lowerStmt(st.Body)
	if st.Kind == glsl.LoopFor && st.Post != nil {
		l.lowerExpr(st.Post)
	}
	l.emit(Instruction{Opcode: OpEndLoop, LoopID: loopID})
}

func (l *lowerer) lowerBranch(st *glsl.BranchStmt) {
	switch st.Kind {
	case glsl.BranchBreak:
		l.emit(Instruction{Opcode: OpBreak, Line: st.At.Line})
	case glsl.BranchContinue:
		l.emit(Instruction{Opcode: OpContinue, Line: st.At.Line})
	case glsl.BranchDiscard:
		l.emit(Instruction{Opcode: OpDiscard, Line: st.At.Line})
	case glsl.BranchReturn:
		if st.Value != nil {
			src := l.lowerExpr(st.Value)
			l.emit(Instruction{Opcode: OpMov, Dst: Ref{Bank: BankOutput}, DstMask: WriteAll, Src: [4]Ref{src}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1})
		}
		l.emit(Instruction{Opcode: OpRet, Line: st.At.Line})
	}
}

// lowerExpr lowers e and returns a Ref holding its value (allocating a
// fresh temp when the expression is not already a bare register
// reference).
func (l *lowerer) lowerExpr(e glsl.Expr) Ref {
	switch x := e.(type) {
	case *glsl.LiteralExpr:
		return l.lowerLiteral(x)
	case *glsl.SymbolExpr:
		return l.resolveSymbol(x.Name)
	case *glsl.UnaryExpr:
		return l.lowerUnary(x)
	case *glsl.BinaryExpr:
		return l.lowerBinary(x)
	case *glsl.SelectionExpr:
		return l.lowerSelection(x)
	case *glsl.CallExpr:
		return l.lowerCall(x)
	case *glsl.FieldExpr:
		return l.lowerField(x)
	case *glsl.IndexExpr:
		return l.lowerIndex(x)
	default:
		return l.newTemp(1, RegFloat)
	}
}

func (l *lowerer) resolveSymbol(name string) Ref {
	if r, ok := l.locals[name]; ok {
		return r
	}
	if r, ok := l.globals[name]; ok {
		l.markUniformUsed(r)
		return r
	}
	// Unresolved symbol: the analyzer would already have reported this;
	// return a zero temp so lowering can proceed and surface downstream
	// errors instead of panicking mid-pass.
	return l.newTemp(1, RegFloat)
}

func (l *lowerer) markUniformUsed(r Ref) {
	if r.Bank != BankUniform {
		return
	}
	for i := range l.prog.Uniforms {
		if l.prog.Uniforms[i].Register == r {
			l.prog.Uniforms[i].Used = true
		}
	}
}

func (l *lowerer) literalValue(x *glsl.LiteralExpr) float64 {
	switch x.Ty.Basic {
	case glsl.TyBool:
		if x.Bool {
			return 1
		}
		return 0
	case glsl.TyInt:
		return float64(x.Int)
	case glsl.TyUint:
		return float64(x.Uint)
	default:
		return x.Float
	}
}

func (l *lowerer) lowerLiteral(x *glsl.LiteralExpr) Ref {
	idx := uint32(len(l.prog.Constants))
	l.prog.Constants = append(l.prog.Constants, l.literalValue(x))
	constRef := Ref{Bank: BankConstant, Index: idx, Type: regTypeOf(x.Ty), Width: 1}
	dst := l.newTemp(1, regTypeOf(x.Ty))
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{constRef}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1, Line: x.At.Line})
	return dst
}

func (l *lowerer) lowerUnary(x *glsl.UnaryExpr) Ref {
	src := l.lowerExpr(x.Operand)
	dst := l.newTemp(src.Width, src.Type)
	op := OpMov
	switch x.Op {
	case glsl.TokenMinus:
		op = OpNeg
	case glsl.TokenBang:
		op = OpNot
	}
	l.emit(Instruction{Opcode: op, Dst: dst, DstMask: WriteAll, Src: [4]Ref{src}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1, Line: x.At.Line})
	return dst
}

var binaryOpcodes = map[glsl.TokenKind]Opcode{
	glsl.TokenPlus:  OpAdd,
	glsl.TokenMinus: OpSub,
	glsl.TokenStar:  OpMul,
	glsl.TokenSlash: OpDiv,
	glsl.TokenPercent: OpMod,
	glsl.TokenLess:        OpSlt,
	glsl.TokenGreaterEqual: OpSge,
	glsl.TokenEqualEqual:  OpSeq,
	glsl.TokenBangEqual:   OpSne,
	glsl.TokenAmpAmp: OpAnd,
	glsl.TokenPipePipe: OpOr,
}

func (l *lowerer) lowerBinary(x *glsl.BinaryExpr) Ref {
	if isAssign(x.Op) {
		return l.lowerAssign(x)
	}
	if x.Op == glsl.TokenComma {
		l.lowerExpr(x.Left)
		return l.lowerExpr(x.Right)
	}
	if x.Op == glsl.TokenStar {
		lt, rt := x.Left.Type(), x.Right.Type()
		if lt.IsMatrix() || rt.IsMatrix() {
			return l.lowerMatrixMul(x, lt, rt)
		}
	}
	// a*b+c fusion: when the left operand is itself a multiply and both
	// feed straight into this add with no intervening use, emit a single
	// OpMad instead of OpMul+OpAdd.
	if x.Op == glsl.TokenPlus {
		if mul, ok := x.Left.(*glsl.BinaryExpr); ok && mul.Op == glsl.TokenStar {
			a := l.lowerExpr(mul.Left)
			b := l.lowerExpr(mul.Right)
			c := l.lowerExpr(x.Right)
			dst := l.newTemp(maxWidth(a.Width, b.Width, c.Width), a.Type)
			l.emit(Instruction{Opcode: OpMad, Dst: dst, DstMask: WriteAll, Src: [4]Ref{a, b, c}, SrcSwiz: [4]Swizzle{Identity, Identity, Identity}, SrcCount: 3, Line: x.At.Line})
			return dst
		}
	}
	lhs := l.lowerExpr(x.Left)
	rhs := l.lowerExpr(x.Right)
	// a > b and a <= b have no opcode of their own (spec.md §4.2's
	// comparison set is {<, <=, >, >=, ==, !=}); they lower to the
	// operand-swapped form of < and >= instead of doubling the opcode
	// table.
	op, ok := binaryOpcodes[x.Op]
	switch x.Op {
	case glsl.TokenGreater:
		op, ok = OpSlt, true
		lhs, rhs = rhs, lhs
	case glsl.TokenLessEqual:
		op, ok = OpSge, true
		lhs, rhs = rhs, lhs
	}
	if !ok {
		op = OpMov
	}
	width := maxWidth(lhs.Width, rhs.Width)
	dst := l.newTemp(width, lhs.Type)
	l.emit(Instruction{Opcode: op, Dst: dst, DstMask: WriteAll, Src: [4]Ref{lhs, rhs}, SrcSwiz: [4]Swizzle{Identity, Identity}, SrcCount: 2, Line: x.At.Line})
	return dst
}

// lowerMatrixMul expands a multiply where at least one operand is a
// matrix into the per-column dot/multiply-add sequence a linear-register
// IR needs in place of a single matrix opcode: mat*vec and mat*mat are
// both built from repeated column-scaled accumulation, vec*mat from a
// dot product per output column.
func (l *lowerer) lowerMatrixMul(x *glsl.BinaryExpr, lt, rt glsl.ValueType) Ref {
	switch {
	case lt.IsMatrix() && rt.IsMatrix():
		return l.lowerMatrixMatrix(x, lt, rt)
	case lt.IsMatrix():
		return l.lowerMatrixVector(x, lt)
	default:
		return l.lowerVectorMatrix(x, rt)
	}
}

// lowerMatrixVector expands mat*vec: result = sum_c col_c * vec[c], each
// term a full-width multiply-add with vec's c'th component broadcast
// across every lane.
func (l *lowerer) lowerMatrixVector(x *glsl.BinaryExpr, lt glsl.ValueType) Ref {
	mat := l.lowerExpr(x.Left)
	vec := l.lowerExpr(x.Right)
	cols := matrixColsOf(lt)
	dst := l.newTemp(lt.MatrixRows, RegFloat)
	for c := uint8(0); c < cols; c++ {
		col := column(mat, c)
		bcast := MakeSwizzle(c, c, c, c)
		if c == 0 {
			l.emit(Instruction{Opcode: OpMul, Dst: dst, DstMask: WriteAll, Src: [4]Ref{col, vec}, SrcSwiz: [4]Swizzle{Identity, bcast}, SrcCount: 2, Line: x.At.Line})
		} else {
			l.emit(Instruction{Opcode: OpMad, Dst: dst, DstMask: WriteAll, Src: [4]Ref{col, vec, dst}, SrcSwiz: [4]Swizzle{Identity, bcast, Identity}, SrcCount: 3, Line: x.At.Line})
		}
	}
	return dst
}

// lowerVectorMatrix expands vec*mat (row-vector convention): result[j] =
// dot(vec, col_j), one scalar per matrix column, assembled into the
// result vector the way lowerConstructor assembles vecN(a, b, c).
func (l *lowerer) lowerVectorMatrix(x *glsl.BinaryExpr, rt glsl.ValueType) Ref {
	vec := l.lowerExpr(x.Left)
	mat := l.lowerExpr(x.Right)
	cols := matrixColsOf(rt)
	scalars := [4]Ref{}
	swiz := [4]Swizzle{}
	for c := uint8(0); c < cols && c < 4; c++ {
		col := column(mat, c)
		s := l.newTemp(1, RegFloat)
		l.emit(Instruction{Opcode: OpDotFn, Dst: s, DstMask: WriteAll, Src: [4]Ref{vec, col}, SrcSwiz: [4]Swizzle{Identity, Identity}, SrcCount: 2, Line: x.At.Line})
		scalars[c] = s
		swiz[c] = Identity
	}
	dst := l.newTemp(cols, RegFloat)
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: scalars, SrcSwiz: swiz, SrcCount: cols, Line: x.At.Line})
	return dst
}

// lowerMatrixMatrix expands mat*mat: each result column j is the
// left-hand matrix times the right-hand matrix's column j (the same
// mat*vec expansion lowerMatrixVector performs, repeated per column),
// giving a result of rt's column count and lt's row count.
func (l *lowerer) lowerMatrixMatrix(x *glsl.BinaryExpr, lt, rt glsl.ValueType) Ref {
	matA := l.lowerExpr(x.Left)
	matB := l.lowerExpr(x.Right)
	aCols, bCols := matrixColsOf(lt), matrixColsOf(rt)
	dst := l.newTempCols(lt.MatrixRows, RegFloat, bCols)
	for j := uint8(0); j < bCols; j++ {
		bcol := column(matB, j)
		dstCol := column(dst, j)
		for c := uint8(0); c < aCols; c++ {
			acol := column(matA, c)
			bcast := MakeSwizzle(c, c, c, c)
			if c == 0 {
				l.emit(Instruction{Opcode: OpMul, Dst: dstCol, DstMask: WriteAll, Src: [4]Ref{acol, bcol}, SrcSwiz: [4]Swizzle{Identity, bcast}, SrcCount: 2, Line: x.At.Line})
			} else {
				l.emit(Instruction{Opcode: OpMad, Dst: dstCol, DstMask: WriteAll, Src: [4]Ref{acol, bcol, dstCol}, SrcSwiz: [4]Swizzle{Identity, bcast, Identity}, SrcCount: 3, Line: x.At.Line})
			}
		}
	}
	return dst
}

func isAssign(k glsl.TokenKind) bool {
	switch k {
	case glsl.TokenEqual, glsl.TokenPlusEqual, glsl.TokenMinusEqual, glsl.TokenStarEqual,
		glsl.TokenSlashEqual, glsl.TokenPercentEqual:
		return true
	default:
		return false
	}
}

func (l *lowerer) lowerAssign(x *glsl.BinaryExpr) Ref {
	dst := l.lvalueRef(x.Left)
	if x.Op == glsl.TokenEqual {
		if cols := matrixColsOf(x.Left.Type()); cols > 1 {
			rhs := l.lowerExpr(x.Right)
			l.copyValue(dst, rhs, cols, x.At.Line)
			return dst
		}
	}
	rhs := l.lowerExpr(x.Right)
	op := OpMov
	switch x.Op {
	case glsl.TokenPlusEqual:
		op = OpAdd
	case glsl.TokenMinusEqual:
		op = OpSub
	case glsl.TokenStarEqual:
		op = OpMul
	case glsl.TokenSlashEqual:
		op = OpDiv
	}
	if op == OpMov {
		l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{rhs}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1, Line: x.At.Line})
	} else {
		l.emit(Instruction{Opcode: op, Dst: dst, DstMask: WriteAll, Src: [4]Ref{dst, rhs}, SrcSwiz: [4]Swizzle{Identity, Identity}, SrcCount: 2, Line: x.At.Line})
	}
	return dst
}

// lvalueRef resolves the destination register of an assignment target
// without emitting a load, so compound-assignment forms can both read and
// write it.
func (l *lowerer) lvalueRef(e glsl.Expr) Ref {
	switch x := e.(type) {
	case *glsl.SymbolExpr:
		return l.resolveSymbol(x.Name)
	case *glsl.FieldExpr:
		return l.lvalueRef(x.Base)
	case *glsl.IndexExpr:
		return l.lvalueRef(x.Base)
	default:
		return l.lowerExpr(e)
	}
}

func (l *lowerer) lowerSelection(x *glsl.SelectionExpr) Ref {
	cond := l.lowerExpr(x.Cond)
	dst := l.newTemp(widthOf(x.Ty), regTypeOf(x.Ty))
	label := l.labelSeq
	l.labelSeq++
	l.emit(Instruction{Opcode: OpIf, Predicate: true, PredicateRef: cond, LabelID: label, Line: x.At.Line})
	thenV := l.lowerExpr(x.Then)
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{thenV}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1})
	l.emit(Instruction{Opcode: OpElse, LabelID: label})
	elseV := l.lowerExpr(x.Else)
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{elseV}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1})
	l.emit(Instruction{Opcode: OpEndIf, LabelID: label})
	return dst
}

var intrinsicOpcodes = map[string]Opcode{
	"sin": OpSin, "cos": OpCos, "sqrt": OpSqrt, "inversesqrt": OpRsq,
	"abs": OpAbs, "floor": OpFloor, "ceil": OpCeil, "fract": OpFrac,
	"min": OpMin, "max": OpMax, "exp": OpExp, "exp2": OpExp2,
	"log": OpLog, "log2": OpLog2,
	"pow": OpPow, "clamp": OpClampFn, "mix": OpMixFn,
	"step": OpStepFn, "smoothstep": OpSmoothstepFn,
	"length": OpLengthFn, "normalize": OpNormalizeFn,
	"cross": OpCrossFn, "dot": OpDotFn,
}

func (l *lowerer) lowerCall(x *glsl.CallExpr) Ref {
	if isTextureSample(x.Callee) {
		return l.lowerTextureSample(x)
	}
	if op, ok := intrinsicOpcodes[x.Callee]; ok {
		srcs := [4]Ref{}
		swiz := [4]Swizzle{}
		for i, arg := range x.Args {
			if i >= 4 {
				break
			}
			srcs[i] = l.lowerExpr(arg)
			swiz[i] = Identity
		}
		dst := l.newTemp(widthOf(x.Ty), regTypeOf(x.Ty))
		l.emit(Instruction{Opcode: op, Dst: dst, DstMask: WriteAll, Src: srcs, SrcSwiz: swiz, SrcCount: uint8(len(x.Args)), Line: x.At.Line})
		return dst
	}
	if isConstructor(x.Callee) {
		return l.lowerConstructor(x)
	}
	// User-defined function call: inlined at the call site rather than
	// emitted as OpCall with a real stack frame, matching the register
	// budget comment in spec.md §3 ("at most a few hundred locals") —
	// a software-rasterizer shader ISA has no call stack, so every
	// call is resolved statically and inlined by the lowerer.
	dst := l.newTemp(widthOf(x.Ty), regTypeOf(x.Ty))
	if x.Func != nil {
		saved := l.locals
		l.locals = map[string]Ref{}
		for k, v := range saved {
			l.locals[k] = v
		}
		for i, p := range x.Func.Params {
			if i < len(x.Args) {
				l.locals[p.Name] = l.lowerExpr(x.Args[i])
			}
		}
		if x.Func.Body != nil {
			l.lowerStmt(x.Func.Body)
		}
		l.locals = saved
	}
	return dst
}

func isTextureSample(name string) bool {
	switch name {
	case "texture2D", "texture2DProj", "textureCube", "texture2DArray", "texture":
		return true
	default:
		return false
	}
}

func isConstructor(name string) bool {
	switch name {
	case "vec2", "vec3", "vec4", "ivec2", "ivec3", "ivec4", "uvec2", "uvec3", "uvec4",
		"bvec2", "bvec3", "bvec4", "float", "int", "uint", "bool", "mat2", "mat3", "mat4":
		return true
	default:
		return false
	}
}

func (l *lowerer) lowerConstructor(x *glsl.CallExpr) Ref {
	dst := l.newTemp(widthOf(x.Ty), regTypeOf(x.Ty))
	srcs := [4]Ref{}
	swiz := [4]Swizzle{}
	n := len(x.Args)
	if n > 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		srcs[i] = l.lowerExpr(x.Args[i])
		swiz[i] = Identity
	}
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: srcs, SrcSwiz: swiz, SrcCount: uint8(n), Line: x.At.Line})
	return dst
}

func (l *lowerer) lowerTextureSample(x *glsl.CallExpr) Ref {
	if len(x.Args) < 2 {
		return l.newTemp(4, RegFloat)
	}
	samplerName, _ := x.Args[0].(*glsl.SymbolExpr)
	var samplerRef Ref
	if samplerName != nil {
		samplerRef = l.resolveSymbol(samplerName.Name)
	}
	coord := l.lowerExpr(x.Args[1])
	dst := l.newTemp(4, RegFloat)
	l.emit(Instruction{
		Opcode:   OpTex,
		Dst:      dst,
		DstMask:  WriteAll,
		Src:      [4]Ref{coord, samplerRef},
		SrcSwiz:  [4]Swizzle{Identity, Identity},
		SrcCount: 2,
		Line:     x.At.Line,
	})
	return dst
}

func (l *lowerer) lowerField(x *glsl.FieldExpr) Ref {
	base := l.lowerExpr(x.Base)
	swiz := swizzleFromField(x.Field)
	dst := l.newTemp(uint8(len(x.Field)), base.Type)
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{base}, SrcSwiz: [4]Swizzle{swiz}, SrcCount: 1, Line: x.At.Line})
	return dst
}

var swizzleLetters = map[byte]uint8{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
	's': 0, 't': 1, 'p': 2, 'q': 3,
}

func swizzleFromField(field string) Swizzle {
	var lanes [4]uint8
	for i := 0; i < 4; i++ {
		if i < len(field) {
			lanes[i] = swizzleLetters[field[i]]
		} else if len(field) > 0 {
			lanes[i] = swizzleLetters[field[len(field)-1]]
		}
	}
	return MakeSwizzle(lanes[0], lanes[1], lanes[2], lanes[3])
}

func (l *lowerer) lowerIndex(x *glsl.IndexExpr) Ref {
	base := l.lowerExpr(x.Base)
	width := widthOf(x.Ty)
	if x.ConstIndex != nil {
		dst := l.newTemp(width, base.Type)
		src := base
		src.Index += uint32(*x.ConstIndex)
		l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{src}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1, Line: x.At.Line})
		return dst
	}
	// Dynamic (loop-index) access goes through the address register bank.
	addr := l.lowerExpr(x.Index)
	addrReg := Ref{Bank: BankAddress, Index: l.prog.NumAddress, Type: RegInt, Width: 1}
	l.prog.NumAddress++
	l.emit(Instruction{Opcode: OpMov, Dst: addrReg, DstMask: WriteAll, Src: [4]Ref{addr}, SrcSwiz: [4]Swizzle{Identity}, SrcCount: 1})
	dst := l.newTemp(width, base.Type)
	l.emit(Instruction{Opcode: OpMov, Dst: dst, DstMask: WriteAll, Src: [4]Ref{base, addrReg}, SrcSwiz: [4]Swizzle{Identity, Identity}, SrcCount: 2, Line: x.At.Line})
	return dst
}

func maxWidth(ws ...uint8) uint8 {
	var m uint8 = 1
	for _, w := range ws {
		if w > m {
			m = w
		}
	}
	return m
}

func (l *lowerer) pruneUnusedUniforms() {
	kept := l.prog.Uniforms[:0]
	for _, u := range l.prog.Uniforms {
		if u.Used {
			kept = append(kept, u)
		}
	}
	l.prog.Uniforms = kept
}
