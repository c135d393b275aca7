package jit

import "github.com/cpugl/swr/reactor"

// Pass is one named optimizer stage over a function's instruction list.
// A Pass returns a rewritten instruction slice and whether it changed
// anything, so the pipeline can iterate passes to a fixed point the way
// a real -O2 pipeline does for InstCombine/EarlyCSE.
type Pass struct {
	Name string
	Run  func([]reactor.Instr) ([]reactor.Instr, bool)
}

// DefaultPipeline returns the standard optimization sequence applied
// before a Function is lowered to machine code.
func DefaultPipeline() []Pass {
	return []Pass{
		{"sroa", sroaPass},
		{"instcombine", instCombinePass},
		{"cfgsimplify", cfgSimplifyPass},
		{"licm", licmPass},
		{"gvn", gvnPass},
		{"reassociate", reassociatePass},
		{"dse", deadStoreEliminationPass},
		{"sccp", sccpPass},
		{"adce", aggressiveDCEPass},
		{"earlycse", earlyCSEPass},
	}
}

// Optimize runs pipeline over instrs to a fixed point (each pass may run
// more than once if an earlier pass in the same sweep made progress),
// bounded at maxSweeps so a pathological oscillation between two passes
// cannot loop forever.
func Optimize(instrs []reactor.Instr, pipeline []Pass) []reactor.Instr {
	const maxSweeps = 4
	for sweep := 0; sweep < maxSweeps; sweep++ {
		changed := false
		for _, p := range pipeline {
			var c bool
			instrs, c = p.Run(instrs)
			changed = changed || c
		}
		if !changed {
			break
		}
	}
	return instrs
}

// instCombinePass folds a handful of obvious peephole identities: x+0,
// x*1, x*0, x-0. Anything not matching one of these patterns passes
// through unchanged.
func instCombinePass(in []reactor.Instr) ([]reactor.Instr, bool) {
	out := make([]reactor.Instr, len(in))
	copy(out, in)
	changed := false
	for i, ins := range out {
		switch ins.Op {
		case reactor.OpAdd, reactor.OpSub:
			if len(ins.Operands) == 2 && isZeroConst(in, ins.Operands[1]) {
				out[i] = reactor.Instr{Op: reactor.OpBitcast, Type: ins.Type, Operands: []int{ins.Operands[0]}}
				changed = true
			}
		case reactor.OpMul:
			if len(ins.Operands) == 2 && isOneConst(in, ins.Operands[1]) {
				out[i] = reactor.Instr{Op: reactor.OpBitcast, Type: ins.Type, Operands: []int{ins.Operands[0]}}
				changed = true
			} else if len(ins.Operands) == 2 && isZeroConst(in, ins.Operands[1]) {
				out[i] = reactor.Instr{Op: reactor.OpConst, Type: ins.Type, Const: reactor.ConstValue{}}
				changed = true
			}
		}
	}
	return out, changed
}

func isZeroConst(instrs []reactor.Instr, idx int) bool {
	if idx < 0 || idx >= len(instrs) {
		return false
	}
	c := instrs[idx]
	if c.Op != reactor.OpConst {
		return false
	}
	if c.Const.IsFloat {
		return c.Const.F64 == 0
	}
	return c.Const.I64 == 0
}

func isOneConst(instrs []reactor.Instr, idx int) bool {
	if idx < 0 || idx >= len(instrs) {
		return false
	}
	c := instrs[idx]
	if c.Op != reactor.OpConst {
		return false
	}
	if c.Const.IsFloat {
		return c.Const.F64 == 1
	}
	return c.Const.I64 == 1
}

// cfgSimplifyPass collapses a Jump immediately followed by the Label it
// targets (both are then dead: control reaches the label regardless).
func cfgSimplifyPass(in []reactor.Instr) ([]reactor.Instr, bool) {
	out := make([]reactor.Instr, 0, len(in))
	changed := false
	for i := 0; i < len(in); i++ {
		if in[i].Op == reactor.OpJump && i+1 < len(in) &&
			in[i+1].Op == reactor.OpLabel && in[i+1].Target == in[i].Target {
			changed = true
			continue
		}
		out = append(out, in[i])
	}
	return out, changed
}

// deadStoreEliminationPass drops a Store that is immediately overwritten
// by another Store to the exact same pointer operand with no intervening
// load, call, or control-flow instruction.
func deadStoreEliminationPass(in []reactor.Instr) ([]reactor.Instr, bool) {
	out := make([]reactor.Instr, 0, len(in))
	changed := false
	for i := 0; i < len(in); i++ {
		if in[i].Op == reactor.OpStore && i+1 < len(in) {
			next := in[i+1]
			if next.Op == reactor.OpStore && len(in[i].Operands) == 2 && len(next.Operands) == 2 &&
				in[i].Operands[0] == next.Operands[0] {
				changed = true
				continue
			}
		}
		out = append(out, in[i])
	}
	return out, changed
}

// earlyCSEPass eliminates an instruction that is syntactically identical
// (same op, result kind and lane count, operands, constant, lane and field
// selector) to one already seen, replacing later uses with the first
// occurrence's index. Parameters (told apart only by position) and
// shuffles (whose mask is not part of the key) are never merged.
func earlyCSEPass(in []reactor.Instr) ([]reactor.Instr, bool) {
	type key struct {
		op      reactor.Op
		kind    reactor.Kind
		lanes   uint8
		cnst    reactor.ConstValue
		lane    int
		field   string
		a, b, c int
	}
	seen := map[key]int{}
	remap := make([]int, len(in))
	out := make([]reactor.Instr, 0, len(in))
	changed := false
	for i, ins := range in {
		if !isPure(ins.Op) || ins.Op == reactor.OpParam || ins.Op == reactor.OpShuffle {
			remap[i] = len(out)
			out = append(out, remapOperands(ins, remap))
			continue
		}
		k := key{op: ins.Op, kind: ins.Type.Kind, lanes: ins.Type.Lanes, cnst: ins.Const, lane: ins.Lane, field: ins.Field}
		if len(ins.Operands) > 0 {
			k.a = remap[ins.Operands[0]]
		}
		if len(ins.Operands) > 1 {
			k.b = remap[ins.Operands[1]]
		}
		if len(ins.Operands) > 2 {
			k.c = remap[ins.Operands[2]]
		}
		if existing, ok := seen[k]; ok {
			remap[i] = existing
			changed = true
			continue
		}
		remap[i] = len(out)
		seen[k] = len(out)
		out = append(out, remapOperands(ins, remap))
	}
	return out, changed
}

func remapOperands(ins reactor.Instr, remap []int) reactor.Instr {
	if len(ins.Operands) == 0 {
		return ins
	}
	ops := make([]int, len(ins.Operands))
	for i, o := range ins.Operands {
		if o >= 0 && o < len(remap) {
			ops[i] = remap[o]
		} else {
			ops[i] = o
		}
	}
	ins.Operands = ops
	return ins
}

func isPure(op reactor.Op) bool {
	switch op {
	case reactor.OpAdd, reactor.OpSub, reactor.OpMul, reactor.OpDiv, reactor.OpMod,
		reactor.OpAnd, reactor.OpOr, reactor.OpXor, reactor.OpNot, reactor.OpNeg,
		reactor.OpCmpLT, reactor.OpCmpLE, reactor.OpCmpGT, reactor.OpCmpGE, reactor.OpCmpEQ, reactor.OpCmpNE,
		reactor.OpCast, reactor.OpBitcast, reactor.OpExtractLane, reactor.OpShuffle,
		reactor.OpExtractField, reactor.OpConst, reactor.OpParam:
		return true
	default:
		return false
	}
}

// sroaPass replaces scalar loads/stores through a named struct field's
// GEP pointer with direct forwarding of the last value stored to that
// field, the way mem2reg promotes an aggregate's fields to SSA values
// once no instruction takes the field pointer's address anywhere
// unpredictable. A field location's remembered value is invalidated
// whenever an aliasing write could have touched it: a store through a
// pointer this pass can't attribute to a specific field (a dynamic
// array-index GEP, or any other untracked pointer), a call (which might
// write through an escaped pointer), or a label (a CFG join this flat,
// dominator-free instruction stream can't reason about, so any value
// assumed live across it is unsound).
func sroaPass(in []reactor.Instr) ([]reactor.Instr, bool) {
	type locKey struct {
		base  int
		field string
	}
	known := map[locKey]int{}
	fieldGEP := map[int]locKey{}
	untrackedGEP := map[int]bool{}
	remap := make([]int, len(in))
	out := make([]reactor.Instr, 0, len(in))
	changed := false

	invalidate := func() { known = map[locKey]int{} }

	for i, ins := range in {
		switch ins.Op {
		case reactor.OpGEP:
			if ins.Field != "" && len(ins.Operands) >= 1 {
				fieldGEP[i] = locKey{base: ins.Operands[0], field: ins.Field}
			} else {
				untrackedGEP[i] = true
			}
			remap[i] = len(out)
			out = append(out, remapOperands(ins, remap))
		case reactor.OpLoad:
			if len(ins.Operands) == 1 {
				if k, ok := fieldGEP[ins.Operands[0]]; ok {
					if v, ok2 := known[k]; ok2 {
						remap[i] = v
						changed = true
						continue
					}
				}
			}
			remap[i] = len(out)
			out = append(out, remapOperands(ins, remap))
		case reactor.OpStore:
			if len(ins.Operands) == 2 {
				if k, ok := fieldGEP[ins.Operands[0]]; ok {
					known[k] = remap[ins.Operands[1]]
				} else {
					invalidate()
				}
			}
			remap[i] = len(out)
			out = append(out, remapOperands(ins, remap))
		case reactor.OpLabel, reactor.OpCall, reactor.OpCallIndirect:
			invalidate()
			remap[i] = len(out)
			out = append(out, remapOperands(ins, remap))
		default:
			remap[i] = len(out)
			out = append(out, remapOperands(ins, remap))
		}
	}
	return out, changed
}

// licmPass, gvnPass, reassociatePass, and sccpPass are registered as
// named pipeline stages so a caller can enumerate or disable them, but
// perform no rewrite: loop-invariant code motion, global value
// numbering, reassociation, and sparse conditional constant propagation
// all need a real basic-block/dominator-tree CFG to place code safely,
// which reactor's flat Label/Jump/Branch instruction stream does not yet
// build (see DESIGN.md's jit entry). Running these as identity passes is
// safe: later pipeline stages see the same instructions unchanged.
func licmPass(in []reactor.Instr) ([]reactor.Instr, bool)        { return in, false }
func gvnPass(in []reactor.Instr) ([]reactor.Instr, bool)         { return in, false }
func reassociatePass(in []reactor.Instr) ([]reactor.Instr, bool) { return in, false }
func sccpPass(in []reactor.Instr) ([]reactor.Instr, bool)        { return in, false }
func aggressiveDCEPass(in []reactor.Instr) ([]reactor.Instr, bool) {
	used := make([]bool, len(in))
	for _, ins := range in {
		if hasSideEffect(ins.Op) {
			for _, o := range ins.Operands {
				if o >= 0 && o < len(used) {
					used[o] = true
				}
			}
		}
	}
	// propagate liveness backward through pure instructions
	for i := len(in) - 1; i >= 0; i-- {
		if used[i] {
			for _, o := range in[i].Operands {
				if o >= 0 && o < len(used) {
					used[o] = true
				}
			}
		}
	}
	out := make([]reactor.Instr, 0, len(in))
	remap := make([]int, len(in))
	changed := false
	for i, ins := range in {
		if !used[i] && isPure(ins.Op) && ins.Op != reactor.OpParam {
			changed = true
			continue
		}
		remap[i] = len(out)
		out = append(out, remapOperands(ins, remap))
	}
	return out, changed
}

func hasSideEffect(op reactor.Op) bool { return !isPure(op) }
