package shaderir

import "testing"

func TestValidateAcceptsWellFormedProgram(t *testing.T) {
	prog := &Program{
		NumTemps: 2,
		Instructions: []Instruction{
			{Opcode: OpAdd, Dst: Ref{Bank: BankTemp, Index: 0}, DstMask: WriteAll,
				Src: [4]Ref{{Bank: BankTemp, Index: 1}, {Bank: BankConstant, Index: 0}}, SrcCount: 2},
			{Opcode: OpReturn},
		},
	}
	if errs := Validate(prog); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateCatchesArityMismatch(t *testing.T) {
	prog := &Program{
		NumTemps: 1,
		Instructions: []Instruction{
			{Opcode: OpAdd, Dst: Ref{Bank: BankTemp, Index: 0}, DstMask: WriteAll,
				Src: [4]Ref{{Bank: BankTemp, Index: 0}}, SrcCount: 1},
		},
	}
	errs := Validate(prog)
	if len(errs) == 0 {
		t.Fatalf("expected an arity mismatch error")
	}
}

func TestValidateCatchesOutOfRangeTemp(t *testing.T) {
	prog := &Program{
		NumTemps: 1,
		Instructions: []Instruction{
			{Opcode: OpNeg, Dst: Ref{Bank: BankTemp, Index: 5}, DstMask: WriteAll,
				Src: [4]Ref{{Bank: BankTemp, Index: 0}}, SrcCount: 1},
		},
	}
	if errs := Validate(prog); len(errs) == 0 {
		t.Fatalf("expected an out-of-range temp register error")
	}
}

func TestValidateCatchesUnbalancedControlFlow(t *testing.T) {
	prog := &Program{
		Instructions: []Instruction{
			{Opcode: OpIf},
			{Opcode: OpReturn},
		},
	}
	if errs := Validate(prog); len(errs) == 0 {
		t.Fatalf("expected an unbalanced OpIf/OpEndIf error")
	}
}
