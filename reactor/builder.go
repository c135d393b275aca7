package reactor

import "fmt"

// Builder accumulates instructions into the current Function. Unlike
// core/codegen's Builder, which tracks an LLVM insertion block, reactor's
// Builder tracks only the active Function — control flow is expressed as
// explicit Jump/Branch/Label instructions; package jit's interpreter maps
// each label id to its instruction position and jumps there.
type Builder struct {
	fn        *Function
	labelSeq  int
}

func newBuilder(fn *Function) *Builder { return &Builder{fn: fn} }

func (b *Builder) newLabel() int {
	b.labelSeq++
	return b.labelSeq
}

// ConstInt materializes an integer constant of type Int32.
func (b *Builder) ConstInt(n int64) Value {
	return b.fn.value(Int32, Instr{Op: OpConst, Type: Int32, Const: ConstValue{I64: n}})
}

// ConstFloat materializes a Float32 constant.
func (b *Builder) ConstFloat(f float64) Value {
	return b.fn.value(Float32, Instr{Op: OpConst, Type: Float32, Const: ConstValue{F64: f, IsFloat: true}})
}

// ConstBool materializes a Bool constant.
func (b *Builder) ConstBool(v bool) Value {
	n := int64(0)
	if v {
		n = 1
	}
	return b.fn.value(Bool, Instr{Op: OpConst, Type: Bool, Const: ConstValue{I64: n}})
}

func (b *Builder) binary(op Op, l, r Value) Value {
	ty := l.ty
	if r.ty.Lanes > ty.Lanes {
		ty = r.ty
	}
	return b.fn.value(ty, Instr{Op: op, Type: ty, Operands: []int{l.idx, r.idx}})
}

func (b *Builder) Add(l, r Value) Value { return b.binary(OpAdd, l, r) }
func (b *Builder) Sub(l, r Value) Value { return b.binary(OpSub, l, r) }
func (b *Builder) Mul(l, r Value) Value { return b.binary(OpMul, l, r) }
func (b *Builder) Div(l, r Value) Value { return b.binary(OpDiv, l, r) }
func (b *Builder) Mod(l, r Value) Value { return b.binary(OpMod, l, r) }
func (b *Builder) And(l, r Value) Value { return b.binary(OpAnd, l, r) }
func (b *Builder) Or(l, r Value) Value  { return b.binary(OpOr, l, r) }
func (b *Builder) Xor(l, r Value) Value { return b.binary(OpXor, l, r) }
func (b *Builder) Shl(l, r Value) Value { return b.binary(OpShl, l, r) }
func (b *Builder) Shr(l, r Value) Value { return b.binary(OpShr, l, r) }

func (b *Builder) Neg(v Value) Value {
	return b.fn.value(v.ty, Instr{Op: OpNeg, Type: v.ty, Operands: []int{v.idx}})
}

func (b *Builder) Not(v Value) Value {
	return b.fn.value(v.ty, Instr{Op: OpNot, Type: v.ty, Operands: []int{v.idx}})
}

func (b *Builder) cmp(op Op, l, r Value) Value {
	ty := Bool
	if l.ty.Lanes > 1 {
		ty = Vector(KindBool, l.ty.Lanes)
	}
	return b.fn.value(ty, Instr{Op: op, Type: ty, Operands: []int{l.idx, r.idx}})
}

func (b *Builder) CmpLT(l, r Value) Value { return b.cmp(OpCmpLT, l, r) }
func (b *Builder) CmpLE(l, r Value) Value { return b.cmp(OpCmpLE, l, r) }
func (b *Builder) CmpGT(l, r Value) Value { return b.cmp(OpCmpGT, l, r) }
func (b *Builder) CmpGE(l, r Value) Value { return b.cmp(OpCmpGE, l, r) }
func (b *Builder) CmpEQ(l, r Value) Value { return b.cmp(OpCmpEQ, l, r) }
func (b *Builder) CmpNE(l, r Value) Value { return b.cmp(OpCmpNE, l, r) }

// Select is a lane-wise ternary: cond picks between t and f per lane.
func (b *Builder) Select(cond, t, f Value) Value {
	return b.fn.value(t.ty, Instr{Op: OpSelect, Type: t.ty, Operands: []int{cond.idx, t.idx, f.idx}})
}

// Cast converts v to ty (numeric conversion, with truncation/extension as
// the element kinds require).
func (b *Builder) Cast(v Value, ty Type) Value {
	return b.fn.value(ty, Instr{Op: OpCast, Type: ty, Operands: []int{v.idx}})
}

// Bitcast reinterprets v's bits as ty without conversion. Both types must
// have equal size; the JIT backend asserts this at lowering time.
func (b *Builder) Bitcast(v Value, ty Type) Value {
	return b.fn.value(ty, Instr{Op: OpBitcast, Type: ty, Operands: []int{v.idx}})
}

// Call invokes a named external routine with operands, used for the
// symbol-whitelisted calls into the runtime (texture sampling, math
// functions) the JIT backend resolves at link time (package jit).
func (b *Builder) Call(retTy Type, symbol string, args ...Value) Value {
	ops := make([]int, len(args))
	for i, a := range args {
		ops[i] = a.idx
	}
	return b.fn.value(retTy, Instr{Op: OpCall, Type: retTy, Callee: symbol, Operands: ops})
}

// Intrinsic invokes one of reactor's built-in math/bit operations
// (spec.md §4.4).
func (b *Builder) Intrinsic(name Intrinsic, ty Type, args ...Value) Value {
	ops := make([]int, len(args))
	for i, a := range args {
		ops[i] = a.idx
	}
	return b.fn.value(ty, Instr{Op: OpIntrinsic, Type: ty, Intrinsic: name, Operands: ops})
}

func (b *Builder) SaturatingAdd(l, r Value) Value { return b.Intrinsic(IntrinsicSaturatingAdd, l.ty, l, r) }
func (b *Builder) SaturatingSub(l, r Value) Value { return b.Intrinsic(IntrinsicSaturatingSub, l.ty, l, r) }
func (b *Builder) Min(l, r Value) Value           { return b.Intrinsic(IntrinsicMin, l.ty, l, r) }
func (b *Builder) Max(l, r Value) Value           { return b.Intrinsic(IntrinsicMax, l.ty, l, r) }
func (b *Builder) Round(v Value) Value            { return b.Intrinsic(IntrinsicRound, v.ty, v) }
func (b *Builder) Floor(v Value) Value            { return b.Intrinsic(IntrinsicFloor, v.ty, v) }
func (b *Builder) Ceil(v Value) Value             { return b.Intrinsic(IntrinsicCeil, v.ty, v) }
func (b *Builder) Trunc(v Value) Value            { return b.Intrinsic(IntrinsicTrunc, v.ty, v) }
func (b *Builder) Reciprocal(v Value) Value       { return b.Intrinsic(IntrinsicReciprocal, v.ty, v) }
func (b *Builder) RSqrt(v Value) Value            { return b.Intrinsic(IntrinsicRSqrt, v.ty, v) }
func (b *Builder) Sqrt(v Value) Value             { return b.Intrinsic(IntrinsicSqrt, v.ty, v) }
func (b *Builder) MulHi(l, r Value) Value         { return b.Intrinsic(IntrinsicMulHi, l.ty, l, r) }
func (b *Builder) SignMask(v Value) Value         { return b.Intrinsic(IntrinsicSignMask, Int32, v) }

// MulAdd computes l*r+a as a single fused instruction (the reactor-level
// sibling of shaderir.OpMad).
func (b *Builder) MulAdd(l, r, a Value) Value {
	return b.fn.value(l.ty, Instr{Op: OpIntrinsic, Type: l.ty, Intrinsic: IntrinsicMulAdd, Operands: []int{l.idx, r.idx, a.idx}})
}

func (b *Builder) VectorShiftLeft(v Value, n int) Value {
	return b.Intrinsic(IntrinsicVectorShiftLeft, v.ty, v, b.ConstInt(int64(n)))
}

func (b *Builder) VectorShiftRight(v Value, n int) Value {
	return b.Intrinsic(IntrinsicVectorShiftRight, v.ty, v, b.ConstInt(int64(n)))
}

// AtomicLoad/AtomicStore/AtomicAdd/AtomicCAS record the requested memory
// order on the emitted instruction (spec.md §4.4). Package jit's
// interpreter does not evaluate atomic instructions: their result reads
// as 0 and the order is not used.
func (b *Builder) AtomicLoad(ptr Value, order MemoryOrder) Value {
	if ptr.ty.Kind != KindPointer {
		panic("reactor: AtomicLoad requires a pointer")
	}
	return b.fn.value(*ptr.ty.Elem, Instr{Op: OpAtomicLoad, Type: *ptr.ty.Elem, Order: order, Operands: []int{ptr.idx}})
}

func (b *Builder) AtomicStore(ptr, val Value, order MemoryOrder) {
	if ptr.ty.Kind != KindPointer {
		panic("reactor: AtomicStore requires a pointer")
	}
	b.fn.value(Void, Instr{Op: OpAtomicStore, Order: order, Operands: []int{ptr.idx, val.idx}})
}

func (b *Builder) AtomicAdd(ptr, val Value, order MemoryOrder) Value {
	return b.fn.value(*ptr.ty.Elem, Instr{Op: OpAtomicAdd, Type: *ptr.ty.Elem, Order: order, Operands: []int{ptr.idx, val.idx}})
}

func (b *Builder) AtomicCAS(ptr, cmp, newVal Value, order MemoryOrder) Value {
	return b.fn.value(Bool, Instr{Op: OpAtomicCAS, Type: Bool, Order: order, Operands: []int{ptr.idx, cmp.idx, newVal.idx}})
}

// VecOf packs scalar lane values into one SIMD composite Value.
func (b *Builder) VecOf(kind Kind, lanes ...Value) Value {
	ty := Vector(kind, uint8(len(lanes)))
	ops := make([]int, len(lanes))
	for i, l := range lanes {
		ops[i] = l.idx
	}
	return b.fn.value(ty, Instr{Op: OpInsertLane, Type: ty, Operands: ops})
}

func (b *Builder) fail(format string, args ...interface{}) {
	panic(fmt.Sprintf("reactor: "+format, args...))
}
