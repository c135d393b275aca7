package shaderir

import "fmt"

// ValidationError reports one structural defect found by Validate.
type ValidationError struct {
	Index int // instruction index
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("shaderir: instruction %d: %s", e.Index, e.Msg)
}

// Validate checks p against the structural invariants spec.md §3 and §6
// place on a shader IR program: every instruction's declared source count
// matches its opcode's arity, register banks referenced are within the
// ranges Program declares, and control-flow opcodes are balanced.
func Validate(p *Program) []error {
	var errs []error
	var ifDepth, loopDepth int

	for i, in := range p.Instructions {
		if want, ok := arity[in.Opcode]; ok && int(in.SrcCount) != want {
			errs = append(errs, &ValidationError{i, fmt.Sprintf("%s expects %d source operand(s), got %d", opcodeName(in.Opcode), want, in.SrcCount)})
		}
		for s := 0; s < int(in.SrcCount); s++ {
			if err := checkBank(p, in.Src[s], i); err != nil {
				errs = append(errs, err)
			}
		}
		if in.Opcode != OpNop {
			if err := checkBank(p, in.Dst, i); err != nil && needsDst(in.Opcode) {
				errs = append(errs, err)
			}
		}
		switch in.Opcode {
		case OpIf:
			ifDepth++
		case OpEndIf:
			ifDepth--
			if ifDepth < 0 {
				errs = append(errs, &ValidationError{i, "OpEndIf with no matching OpIf"})
				ifDepth = 0
			}
		case OpLoop:
			loopDepth++
		case OpEndLoop:
			loopDepth--
			if loopDepth < 0 {
				errs = append(errs, &ValidationError{i, "OpEndLoop with no matching OpLoop"})
				loopDepth = 0
			}
		}
		if in.Predicate && in.Opcode != OpIf && in.Opcode != OpBreakC {
			// predication is only meaningful as a guard on control flow in
			// this ISA; other opcodes ignore PredicateRef.
		}
	}
	if ifDepth != 0 {
		errs = append(errs, &ValidationError{len(p.Instructions), "unbalanced OpIf/OpEndIf"})
	}
	if loopDepth != 0 {
		errs = append(errs, &ValidationError{len(p.Instructions), "unbalanced OpLoop/OpEndLoop"})
	}
	return errs
}

func needsDst(op Opcode) bool {
	switch op {
	case OpDiscard, OpReturn, OpIf, OpElse, OpEndIf, OpLoop, OpEndLoop,
		OpBreak, OpBreakC, OpContinue, OpLabel, OpRet, OpNop:
		return false
	default:
		return true
	}
}

func checkBank(p *Program, r Ref, idx int) error {
	switch r.Bank {
	case BankTemp:
		if r.Index >= p.NumTemps {
			return &ValidationError{idx, fmt.Sprintf("temp register t%d out of range (NumTemps=%d)", r.Index, p.NumTemps)}
		}
	case BankInput:
		if r.Index >= p.NumInputs {
			return &ValidationError{idx, fmt.Sprintf("input register i%d out of range (NumInputs=%d)", r.Index, p.NumInputs)}
		}
	case BankOutput:
		if r.Index >= p.NumOutputs {
			return &ValidationError{idx, fmt.Sprintf("output register o%d out of range (NumOutputs=%d)", r.Index, p.NumOutputs)}
		}
	case BankAddress:
		if r.Index >= p.NumAddress {
			return &ValidationError{idx, fmt.Sprintf("address register a%d out of range (NumAddress=%d)", r.Index, p.NumAddress)}
		}
	}
	return nil
}

// arity lists the fixed source-operand count for opcodes whose arity is
// invariant; opcodes not listed here (e.g. OpMov with an optional dynamic
// index) are not arity-checked.
var arity = map[Opcode]int{
	OpAdd: 2, OpSub: 2, OpMul: 2, OpDiv: 2, OpMod: 2, OpMin: 2, OpMax: 2,
	OpDp2: 2, OpDp3: 2, OpDp4: 2, OpSlt: 2, OpSge: 2, OpSeq: 2, OpSne: 2,
	OpAnd: 2, OpOr: 2, OpXor: 2,
	OpMad: 3,
	OpNeg: 1, OpNot: 1, OpRsq: 1, OpSqrt: 1, OpRcp: 1, OpExp: 1, OpExp2: 1,
	OpLog: 1, OpLog2: 1, OpSin: 1, OpCos: 1, OpAbs: 1, OpSat: 1,
	OpFloor: 1, OpCeil: 1, OpFrac: 1, OpTrunc: 1, OpRound: 1,
	OpPow: 2, OpClampFn: 3, OpMixFn: 3, OpStepFn: 2, OpSmoothstepFn: 3,
	OpLengthFn: 1, OpNormalizeFn: 1, OpCrossFn: 2, OpDotFn: 2,
}

func opcodeName(op Opcode) string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

var opcodeNames = map[Opcode]string{
	OpNop: "OpNop", OpMov: "OpMov", OpAdd: "OpAdd", OpSub: "OpSub", OpMul: "OpMul",
	OpDiv: "OpDiv", OpMad: "OpMad", OpMod: "OpMod", OpMin: "OpMin", OpMax: "OpMax",
	OpDp2: "OpDp2", OpDp3: "OpDp3", OpDp4: "OpDp4", OpRsq: "OpRsq", OpSqrt: "OpSqrt",
	OpRcp: "OpRcp", OpExp: "OpExp", OpExp2: "OpExp2", OpLog: "OpLog", OpLog2: "OpLog2",
	OpSin: "OpSin", OpCos: "OpCos", OpAbs: "OpAbs", OpNeg: "OpNeg", OpSat: "OpSat",
	OpFloor: "OpFloor", OpCeil: "OpCeil", OpFrac: "OpFrac", OpTrunc: "OpTrunc",
	OpRound: "OpRound", OpSlt: "OpSlt", OpSge: "OpSge", OpSeq: "OpSeq", OpSne: "OpSne",
	OpAnd: "OpAnd", OpOr: "OpOr", OpXor: "OpXor", OpNot: "OpNot", OpCmp: "OpCmp",
	OpTex: "OpTex", OpTexLod: "OpTexLod", OpTexOffset: "OpTexOffset", OpMov4x4: "OpMov4x4",
	OpPow: "OpPow", OpClampFn: "OpClampFn", OpMixFn: "OpMixFn", OpStepFn: "OpStepFn",
	OpSmoothstepFn: "OpSmoothstepFn", OpLengthFn: "OpLengthFn", OpNormalizeFn: "OpNormalizeFn",
	OpCrossFn: "OpCrossFn", OpDotFn: "OpDotFn",
	OpDiscard: "OpDiscard", OpReturn: "OpReturn", OpIf: "OpIf", OpElse: "OpElse",
	OpEndIf: "OpEndIf", OpLoop: "OpLoop", OpEndLoop: "OpEndLoop", OpBreak: "OpBreak",
	OpBreakC: "OpBreakC", OpContinue: "OpContinue", OpLabel: "OpLabel", OpCall: "OpCall",
	OpRet: "OpRet",
}
