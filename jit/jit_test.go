package jit

import (
	"testing"

	"github.com/cpugl/swr/reactor"
)

func TestCompileAndInvokeAdd(t *testing.T) {
	m := reactor.NewModule("test")
	fn, b := m.NewFunction("add", reactor.Int32, reactor.Int32, reactor.Int32)
	sum := b.Add(fn.Param(0), fn.Param(1))
	b.RetValue(sum)

	routine, err := Compile(fn, SymbolTable{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer routine.Close()

	got, err := routine.Invoke(2, 3)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestCompileRejectsUnresolvedSymbol(t *testing.T) {
	m := reactor.NewModule("test")
	fn, b := m.NewFunction("callsOut", reactor.Float32)
	r := b.Call(reactor.Float32, "sample_texture")
	b.RetValue(r)

	if _, err := Compile(fn, SymbolTable{}); err == nil {
		t.Fatalf("expected an error for an unresolved external symbol")
	}
}

func TestInvokeBranching(t *testing.T) {
	m := reactor.NewModule("test")
	fn, b := m.NewFunction("absVal", reactor.Float32, reactor.Float32)
	x := fn.Param(0)
	var result reactor.Value
	b.IfElse(b.CmpLT(x, b.ConstFloat(0)),
		func() { result = b.Neg(x) },
		func() { result = x },
	)
	b.RetValue(result)

	routine, err := Compile(fn, SymbolTable{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer routine.Close()

	got, err := routine.Invoke(-4)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestOptimizeFoldsMultiplyByOne(t *testing.T) {
	m := reactor.NewModule("test")
	fn, b := m.NewFunction("mulOne", reactor.Float32, reactor.Float32)
	r := b.Mul(fn.Param(0), b.ConstFloat(1))
	b.RetValue(r)

	optimized := Optimize(fn.Instructions(), DefaultPipeline())
	for _, in := range optimized {
		if in.Op == reactor.OpMul {
			t.Fatalf("expected x*1 to be folded away, found OpMul")
		}
	}
}

func TestSROAForwardsFieldStoreToLoad(t *testing.T) {
	m := reactor.NewModule("test")
	pointTy := reactor.StructOf("point",
		reactor.Field{Name: "x", Type: reactor.Float32},
		reactor.Field{Name: "y", Type: reactor.Float32},
	)
	fn, b := m.NewFunction("readX", reactor.Float32, reactor.PointerTo(pointTy), reactor.Float32)
	p := fn.Param(0)
	p.Field("x").Store(fn.Param(1))
	r := p.Field("x").Load()
	b.RetValue(r)

	optimized := Optimize(fn.Instructions(), DefaultPipeline())
	for _, in := range optimized {
		if in.Op == reactor.OpLoad {
			t.Fatalf("expected the field load to be forwarded to the stored value, found OpLoad")
		}
	}
}

func TestSROAInvalidatesAcrossUntrackedStore(t *testing.T) {
	m := reactor.NewModule("test")
	pointTy := reactor.StructOf("point",
		reactor.Field{Name: "x", Type: reactor.Float32},
	)
	fn, b := m.NewFunction("readAfterEscape", reactor.Float32, reactor.PointerTo(pointTy), reactor.PointerTo(reactor.Float32), reactor.Float32)
	p := fn.Param(0)
	escape := fn.Param(1)
	p.Field("x").Store(fn.Param(2))
	escape.Store(fn.Param(2)) // store through an untracked pointer: may alias p.x
	r := p.Field("x").Load()
	b.RetValue(r)

	optimized, _ := sroaPass(fn.Instructions())
	found := false
	for _, in := range optimized {
		if in.Op == reactor.OpLoad {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the field load to survive: an aliasing store through an untracked pointer must invalidate the forwarded value")
	}
}

func TestDetectISAReturnsKnownValue(t *testing.T) {
	isa := detectISA()
	if isa.LaneWidth() < 1 {
		t.Fatalf("expected a positive lane width, got %d", isa.LaneWidth())
	}
}
