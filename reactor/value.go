package reactor

import "fmt"

// Value is a handle to one SSA instruction's result within a Function
// under construction. Values are immutable and cheap to copy; every
// reactor expression method takes Values and returns a new Value,
// mirroring core/codegen's *Value method chain (value.go) without
// wrapping an llvm.Value underneath.
type Value struct {
	f   *Function
	ty  Type
	idx int // index into f.instrs
}

// Type returns v's type.
func (v Value) Type() Type { return v.ty }

// valid reports whether v was actually produced by a builder (the zero
// Value is never valid, catching uninitialized-handle bugs early).
func (v Value) valid() bool { return v.f != nil }

func (f *Function) value(ty Type, in Instr) Value {
	f.instrs = append(f.instrs, in)
	return Value{f: f, ty: ty, idx: len(f.instrs) - 1}
}

// Load dereferences the pointer value v.
func (v Value) Load() Value {
	if v.ty.Kind != KindPointer {
		panic(fmt.Sprintf("reactor: Load requires a pointer value, got %v", v.ty))
	}
	return v.f.value(*v.ty.Elem, Instr{Op: OpLoad, Type: *v.ty.Elem, Operands: []int{v.idx}})
}

// Store writes val through the pointer value v.
func (v Value) Store(val Value) {
	if v.ty.Kind != KindPointer {
		panic(fmt.Sprintf("reactor: Store requires a pointer value, got %v", v.ty))
	}
	v.f.value(Void, Instr{Op: OpStore, Operands: []int{v.idx, val.idx}})
}

// Index performs pointer arithmetic: returns a pointer advanced by idx
// elements of the pointee type (byte-pointer GEP-equivalent, per
// core/codegen's Value.Index).
func (v Value) Index(idx Value) Value {
	if v.ty.Kind != KindPointer {
		panic(fmt.Sprintf("reactor: Index requires a pointer value, got %v", v.ty))
	}
	return v.f.value(v.ty, Instr{Op: OpGEP, Type: v.ty, Operands: []int{v.idx, idx.idx}})
}

// IndexConst is Index with a compile-time-known element offset.
func (v Value) IndexConst(b *Builder, n int) Value {
	return v.Index(b.ConstInt(int64(n)))
}

// Field accesses a named struct field of the pointee of a struct pointer,
// returning a pointer to that field (core/codegen's path-by-name).
func (v Value) Field(name string) Value {
	if v.ty.Kind != KindPointer || v.ty.Elem.Kind != KindStruct {
		panic("reactor: Field requires a pointer-to-struct value")
	}
	for _, f := range v.ty.Elem.Fields {
		if f.Name == name {
			return v.f.value(PointerTo(f.Type), Instr{Op: OpGEP, Field: name, Operands: []int{v.idx}})
		}
	}
	panic(fmt.Sprintf("reactor: struct %v has no field %q", v.ty.Elem.Name, name))
}

// Extract reads lane i (0-based) out of a SIMD composite value.
func (v Value) Extract(lane int) Value {
	if !v.ty.IsVector() {
		panic("reactor: Extract requires a vector value")
	}
	elemTy := Scalar(v.ty.Kind)
	return v.f.value(elemTy, Instr{Op: OpExtractLane, Type: elemTy, Lane: lane, Operands: []int{v.idx}})
}

// Insert returns a copy of v with lane i replaced by val.
func (v Value) Insert(lane int, val Value) Value {
	if !v.ty.IsVector() {
		panic("reactor: Insert requires a vector value")
	}
	return v.f.value(v.ty, Instr{Op: OpInsertLane, Type: v.ty, Lane: lane, Operands: []int{v.idx, val.idx}})
}

// Swizzle rearranges/duplicates lanes of v according to lanes (each 0..N-1
// indexing v's own lanes), producing a result with len(lanes) lanes. This
// is the general lane-wise composite algebra spec.md §4.4 asks for;
// package shaderir's Swizzle (2-bit-per-lane packing) is translated into
// this call by package pipeline.
func (v Value) Swizzle(lanes ...int) Value {
	if !v.ty.IsVector() {
		panic("reactor: Swizzle requires a vector value")
	}
	outTy := Vector(v.ty.Kind, uint8(len(lanes)))
	mask := append([]int(nil), lanes...)
	return v.f.value(outTy, Instr{Op: OpShuffle, Type: outTy, Mask: mask, Operands: []int{v.idx}})
}

func (v Value) instr() Instr { return v.f.instrs[v.idx] }
