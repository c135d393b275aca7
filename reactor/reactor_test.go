package reactor

import "testing"

func TestBuildSimpleAddFunction(t *testing.T) {
	m := NewModule("test")
	fn, b := m.NewFunction("add", Int32, Int32, Int32)
	sum := b.Add(fn.Param(0), fn.Param(1))
	b.RetValue(sum)

	if len(fn.Instructions()) != 4 { // 2 params + add + ret
		t.Fatalf("expected 4 instructions, got %d", len(fn.Instructions()))
	}
	last := fn.Instructions()[len(fn.Instructions())-1]
	if last.Op != OpRet {
		t.Fatalf("expected last instruction to be OpRet, got %v", last.Op)
	}
}

func TestSwizzleProducesNarrowerVector(t *testing.T) {
	m := NewModule("test")
	fn, b := m.NewFunction("swiz", Void, Float32x4)
	v := fn.Param(0)
	xy := v.Swizzle(0, 1)
	if xy.Type().Lanes != 2 {
		t.Fatalf("expected 2-lane result, got %d", xy.Type().Lanes)
	}
	b.Ret()
}

func TestIfElseBalancesLabels(t *testing.T) {
	m := NewModule("test")
	fn, b := m.NewFunction("branch", Void, Bool)
	cond := fn.Param(0)
	var thenRan, elseRan bool
	b.IfElse(cond, func() { thenRan = true }, func() { elseRan = true })
	b.Ret()
	if !thenRan || !elseRan {
		t.Fatalf("expected both branches to be built")
	}
	labels := 0
	for _, in := range fn.Instructions() {
		if in.Op == OpLabel {
			labels++
		}
	}
	if labels != 2 {
		t.Fatalf("expected 2 labels (else + end), got %d", labels)
	}
}

func TestForLoopEmitsBranchAndJump(t *testing.T) {
	m := NewModule("test")
	fn, b := m.NewFunction("loop", Void)
	var i Value
	b.ForLoop(
		func() { i = b.ConstInt(0) },
		func() Value { return b.CmpLT(i, b.ConstInt(4)) },
		func() { i = b.Add(i, b.ConstInt(1)) },
		func() {},
	)
	b.Ret()
	var jumps, branches int
	for _, in := range fn.Instructions() {
		switch in.Op {
		case OpJump:
			jumps++
		case OpBranch:
			branches++
		}
	}
	if jumps != 1 || branches != 1 {
		t.Fatalf("expected 1 jump and 1 branch, got %d jumps %d branches", jumps, branches)
	}
}

func TestMulAddIsFused(t *testing.T) {
	m := NewModule("test")
	fn, b := m.NewFunction("mad", Float32, Float32, Float32, Float32)
	r := b.MulAdd(fn.Param(0), fn.Param(1), fn.Param(2))
	b.RetValue(r)
	found := false
	for _, in := range fn.Instructions() {
		if in.Op == OpIntrinsic && in.Intrinsic == IntrinsicMulAdd {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fused MulAdd intrinsic instruction")
	}
}

func TestAtomicAddCarriesMemoryOrder(t *testing.T) {
	m := NewModule("test")
	fn, b := m.NewFunction("atomic", Void, PointerTo(Int32))
	ptr := fn.Param(0)
	b.AtomicAdd(ptr, b.ConstInt(1), OrderSeqCst)
	b.Ret()
	found := false
	for _, in := range fn.Instructions() {
		if in.Op == OpAtomicAdd && in.Order == OrderSeqCst {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an AtomicAdd instruction with SeqCst order")
	}
}
