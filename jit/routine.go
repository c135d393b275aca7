package jit

import (
	"fmt"
	"math"

	"github.com/cpugl/swr/reactor"
)

// Symbol is one externally callable routine a compiled Function's Call
// instructions may invoke — the texture samplers and the StandardSymbols
// math functions that package pipeline wires in. Compile rejects any Call whose Callee is not present in the
// SymbolTable passed to it (spec.md §4.4 "symbol whitelist resolution"):
// an unresolved or unexpected external call is a build-time error here,
// never a runtime crash.
type Symbol struct {
	Name string
	Func func(args []float64) float64
}

// SymbolTable is the whitelist Compile resolves external Call
// instructions against.
type SymbolTable map[string]Symbol

// Routine is a specialized, optimized routine ready to execute. Its
// instruction stream has already gone through the DefaultPipeline and had
// every external call resolved; Invoke interprets that stream directly.
//
// A real multi-architecture machine-code encoder is out of scope for
// this package (see DESIGN.md): Routine still reserves and releases a
// genuine RW-then-RX page per spec.md §4.4 so the allocator and W^X
// lifecycle are exercised end-to-end, but the bytes that page holds are
// a serialized marker, not executable machine code — Invoke always runs
// the portable interpreter over the optimized IR.
type Routine struct {
	Name    string
	ISA     ISA
	instrs  []reactor.Instr
	symbols SymbolTable
	pg      *page
}

// Compile optimizes fn's instruction stream, resolves its external calls
// against symbols, reserves an executable page, and returns a ready
// Routine.
func Compile(fn *reactor.Function, symbols SymbolTable) (*Routine, error) {
	instrs := Optimize(fn.Instructions(), DefaultPipeline())
	for _, in := range instrs {
		if in.Op == reactor.OpCall {
			if _, ok := symbols[in.Callee]; !ok {
				return nil, fmt.Errorf("jit: routine %q calls unresolved symbol %q", fn.Name, in.Callee)
			}
		}
	}
	marker := []byte("swr-jit-routine:" + fn.Name)
	pg, err := allocExecutable(marker)
	if err != nil {
		return nil, err
	}
	return &Routine{Name: fn.Name, ISA: detectISA(), instrs: instrs, symbols: symbols, pg: pg}, nil
}

// Close releases the Routine's executable page. Routines are normally
// kept for the lifetime of a Module and never closed individually.
func (r *Routine) Close() error {
	if r.pg == nil {
		return nil
	}
	err := r.pg.free()
	r.pg = nil
	return err
}

// Invoke runs the routine over args (one float64 per parameter) and
// returns its single return value. Vector parameters are not supported
// by this entry point; package pipeline calls InvokeMulti instead.
func (r *Routine) Invoke(args ...float64) (float64, error) {
	interp := &interpreter{instrs: r.instrs, symbols: r.symbols}
	rets, err := interp.run(args)
	if err != nil || len(rets) == 0 {
		return 0, err
	}
	return rets[0], nil
}

// InvokeMulti runs the routine and returns every operand of its
// terminating OpRet, in order, rather than just the first. Package
// pipeline's per-stage routines (RetValues) use this to read back several
// output components from one invocation.
func (r *Routine) InvokeMulti(args ...float64) ([]float64, error) {
	interp := &interpreter{instrs: r.instrs, symbols: r.symbols}
	return interp.run(args)
}

type interpreter struct {
	instrs  []reactor.Instr
	symbols SymbolTable
	values  []float64
}

func (it *interpreter) run(args []float64) ([]float64, error) {
	it.values = make([]float64, len(it.instrs))
	paramIdx := 0
	pc := 0
	labels := it.indexLabels()
	var ret []float64
	for pc < len(it.instrs) {
		in := it.instrs[pc]
		switch in.Op {
		case reactor.OpParam:
			if paramIdx < len(args) {
				it.values[pc] = args[paramIdx]
			}
			paramIdx++
		case reactor.OpConst:
			if in.Const.IsFloat {
				it.values[pc] = in.Const.F64
			} else {
				it.values[pc] = float64(in.Const.I64)
			}
		case reactor.OpAdd:
			it.values[pc] = it.operand(in, 0) + it.operand(in, 1)
		case reactor.OpSub:
			it.values[pc] = it.operand(in, 0) - it.operand(in, 1)
		case reactor.OpMul:
			it.values[pc] = it.operand(in, 0) * it.operand(in, 1)
		case reactor.OpDiv:
			it.values[pc] = it.operand(in, 0) / it.operand(in, 1)
		case reactor.OpMod:
			it.values[pc] = math.Mod(it.operand(in, 0), it.operand(in, 1))
		case reactor.OpNeg:
			it.values[pc] = -it.operand(in, 0)
		case reactor.OpNot:
			it.values[pc] = boolF(it.operand(in, 0) == 0)
		case reactor.OpCmpLT:
			it.values[pc] = boolF(it.operand(in, 0) < it.operand(in, 1))
		case reactor.OpCmpLE:
			it.values[pc] = boolF(it.operand(in, 0) <= it.operand(in, 1))
		case reactor.OpCmpGT:
			it.values[pc] = boolF(it.operand(in, 0) > it.operand(in, 1))
		case reactor.OpCmpGE:
			it.values[pc] = boolF(it.operand(in, 0) >= it.operand(in, 1))
		case reactor.OpCmpEQ:
			it.values[pc] = boolF(it.operand(in, 0) == it.operand(in, 1))
		case reactor.OpCmpNE:
			it.values[pc] = boolF(it.operand(in, 0) != it.operand(in, 1))
		case reactor.OpSelect:
			if it.operand(in, 0) != 0 {
				it.values[pc] = it.operand(in, 1)
			} else {
				it.values[pc] = it.operand(in, 2)
			}
		case reactor.OpCast, reactor.OpBitcast:
			it.values[pc] = it.operand(in, 0)
		case reactor.OpIntrinsic:
			it.values[pc] = it.intrinsic(in)
		case reactor.OpCall:
			sym, ok := it.symbols[in.Callee]
			if !ok {
				return nil, fmt.Errorf("jit: unresolved symbol %q at runtime", in.Callee)
			}
			callArgs := make([]float64, len(in.Operands))
			for i := range in.Operands {
				callArgs[i] = it.operand(in, i)
			}
			it.values[pc] = sym.Func(callArgs)
		case reactor.OpJump:
			pc = labels[in.Target]
			continue
		case reactor.OpBranch:
			if it.operand(in, 0) == 0 {
				pc = labels[in.TargetElse]
				continue
			}
		case reactor.OpLabel:
			// no-op marker
		case reactor.OpRet:
			ret = make([]float64, len(in.Operands))
			for i := range in.Operands {
				ret[i] = it.operand(in, i)
			}
			return ret, nil
		}
		pc++
	}
	return ret, nil
}

func (it *interpreter) operand(in reactor.Instr, i int) float64 {
	if i >= len(in.Operands) {
		return 0
	}
	return it.values[in.Operands[i]]
}

func (it *interpreter) indexLabels() map[int]int {
	m := map[int]int{}
	for pc, in := range it.instrs {
		if in.Op == reactor.OpLabel {
			m[in.Target] = pc
		}
	}
	return m
}

func (it *interpreter) intrinsic(in reactor.Instr) float64 {
	a := it.operand(in, 0)
	switch in.Intrinsic {
	case reactor.IntrinsicSaturatingAdd:
		return math.Min(1, a+it.operand(in, 1))
	case reactor.IntrinsicSaturatingSub:
		return math.Max(0, a-it.operand(in, 1))
	case reactor.IntrinsicMin:
		return math.Min(a, it.operand(in, 1))
	case reactor.IntrinsicMax:
		return math.Max(a, it.operand(in, 1))
	case reactor.IntrinsicRound:
		// GLSL ES round() and Reactor's RoundInt use round-to-nearest-even
		// (spec.md §8 boundary scenario 6: RoundInt(2.5) == 2), not the
		// round-half-away-from-zero math.Round gives.
		return math.RoundToEven(a)
	case reactor.IntrinsicFloor:
		return math.Floor(a)
	case reactor.IntrinsicCeil:
		return math.Ceil(a)
	case reactor.IntrinsicTrunc:
		return math.Trunc(a)
	case reactor.IntrinsicReciprocal:
		return 1 / a
	case reactor.IntrinsicRSqrt:
		return 1 / math.Sqrt(a)
	case reactor.IntrinsicSqrt:
		return math.Sqrt(a)
	case reactor.IntrinsicMulHi:
		return math.Trunc(a * it.operand(in, 1) / 65536)
	case reactor.IntrinsicMulAdd:
		return a*it.operand(in, 1) + it.operand(in, 2)
	case reactor.IntrinsicSignMask:
		return boolF(a < 0)
	case reactor.IntrinsicVectorShiftLeft:
		return float64(int64(a) << uint(it.operand(in, 1)))
	case reactor.IntrinsicVectorShiftRight:
		return float64(int64(a) >> uint(it.operand(in, 1)))
	default:
		return 0
	}
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
