package shaderir

import "testing"

func TestEncodeDecodeRoundTrips(t *testing.T) {
	prog := &Program{
		Instructions: []Instruction{
			{
				Opcode:   OpAdd,
				Dst:      Ref{Bank: BankTemp, Index: 0},
				DstMask:  WriteAll,
				Src:      [4]Ref{{Bank: BankTemp, Index: 1}, {Bank: BankUniform, Index: 2}},
				SrcSwiz:  [4]Swizzle{Identity, MakeSwizzle(0, 0, 0, 0)},
				SrcCount: 2,
			},
			{Opcode: OpReturn},
		},
	}
	data := Encode(prog)
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(prog.Instructions) {
		t.Fatalf("got %d instructions, want %d", len(decoded), len(prog.Instructions))
	}
	first := decoded[0]
	if first.Opcode != OpAdd || first.Dst != prog.Instructions[0].Dst || first.SrcCount != 2 {
		t.Fatalf("round-tripped instruction mismatch: %+v", first)
	}
	if first.Src[0] != prog.Instructions[0].Src[0] || first.SrcSwiz[0] != Identity {
		t.Fatalf("source/swizzle mismatch: %+v", first)
	}
	if decoded[1].Opcode != OpReturn {
		t.Fatalf("expected second instruction to be OpReturn, got %v", decoded[1].Opcode)
	}
}

func TestDecodeRejectsMalformedLength(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected an error decoding a non-multiple-of-wordsize byte stream")
	}
}
