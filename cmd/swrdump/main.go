// Command swrdump disassembles package shaderir's binary instruction
// wire format into a readable per-instruction text listing.
package main

import (
	"fmt"
	"os"

	"github.com/cpugl/swr/shaderir"
)

var opcodeNames = map[shaderir.Opcode]string{
	shaderir.OpNop: "nop", shaderir.OpMov: "mov", shaderir.OpAdd: "add",
	shaderir.OpSub: "sub", shaderir.OpMul: "mul", shaderir.OpDiv: "div",
	shaderir.OpMad: "mad", shaderir.OpMod: "mod", shaderir.OpMin: "min",
	shaderir.OpMax: "max", shaderir.OpDp2: "dp2", shaderir.OpDp3: "dp3",
	shaderir.OpDp4: "dp4", shaderir.OpRsq: "rsq", shaderir.OpSqrt: "sqrt",
	shaderir.OpRcp: "rcp", shaderir.OpExp: "exp", shaderir.OpExp2: "exp2",
	shaderir.OpLog: "log", shaderir.OpLog2: "log2", shaderir.OpSin: "sin",
	shaderir.OpCos: "cos", shaderir.OpAbs: "abs", shaderir.OpNeg: "neg",
	shaderir.OpSat: "sat", shaderir.OpFloor: "floor", shaderir.OpCeil: "ceil",
	shaderir.OpFrac: "frac", shaderir.OpTrunc: "trunc", shaderir.OpRound: "round",
	shaderir.OpSlt: "slt", shaderir.OpSge: "sge", shaderir.OpSeq: "seq",
	shaderir.OpSne: "sne", shaderir.OpAnd: "and", shaderir.OpOr: "or",
	shaderir.OpXor: "xor", shaderir.OpNot: "not", shaderir.OpCmp: "cmp",
	shaderir.OpTex: "tex", shaderir.OpTexLod: "tex_lod", shaderir.OpTexOffset: "tex_off",
	shaderir.OpMov4x4: "mov4x4", shaderir.OpPow: "pow", shaderir.OpClampFn: "clamp",
	shaderir.OpMixFn: "mix", shaderir.OpStepFn: "step", shaderir.OpSmoothstepFn: "smoothstep",
	shaderir.OpLengthFn: "length", shaderir.OpNormalizeFn: "normalize", shaderir.OpCrossFn: "cross",
	shaderir.OpDotFn: "dot", shaderir.OpDiscard: "discard", shaderir.OpReturn: "return",
	shaderir.OpIf: "if", shaderir.OpElse: "else", shaderir.OpEndIf: "endif",
	shaderir.OpLoop: "loop", shaderir.OpEndLoop: "endloop", shaderir.OpBreak: "break",
	shaderir.OpBreakC: "breakc", shaderir.OpContinue: "continue", shaderir.OpLabel: "label",
	shaderir.OpCall: "call", shaderir.OpRet: "ret",
}

var bankNames = map[shaderir.RegisterBank]string{
	shaderir.BankConstant: "c", shaderir.BankUniform: "u", shaderir.BankTemp: "r",
	shaderir.BankInput: "v", shaderir.BankOutput: "o", shaderir.BankSampler: "s",
	shaderir.BankAddress: "a",
}

func opName(op shaderir.Opcode) string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("op%d", op)
}

func refString(r shaderir.Ref) string {
	bank, ok := bankNames[r.Bank]
	if !ok {
		bank = fmt.Sprintf("bank%d", r.Bank)
	}
	return fmt.Sprintf("%s%d", bank, r.Index)
}

func writeMaskString(m shaderir.WriteMask) string {
	lanes := "xyzw"
	var out []byte
	for i := 0; i < 4; i++ {
		if m&(1<<uint(i)) != 0 {
			out = append(out, lanes[i])
		}
	}
	if len(out) == 0 {
		return ""
	}
	return "." + string(out)
}

func swizzleString(s shaderir.Swizzle) string {
	lanes := "xyzw"
	out := make([]byte, 4)
	for i := 0; i < 4; i++ {
		out[i] = lanes[s.Lane(i)]
	}
	return "." + string(out)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: swrdump <file.swrir>")
		return
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	instrs, err := shaderir.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("; shader IR, %d instruction(s)\n\n", len(instrs))
	for i, in := range instrs {
		line := fmt.Sprintf("%4d: %s %s%s", i, opName(in.Opcode), refString(in.Dst), writeMaskString(in.DstMask))
		for s := 0; s < int(in.SrcCount); s++ {
			line += fmt.Sprintf(", %s%s", refString(in.Src[s]), swizzleString(in.SrcSwiz[s]))
		}
		if in.Predicate {
			line += fmt.Sprintf(" (pred %s)", refString(in.PredicateRef))
		}
		fmt.Println(line)
	}
}
