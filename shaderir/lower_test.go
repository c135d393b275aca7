package shaderir

import (
	"testing"

	"github.com/cpugl/swr/glsl"
)

func compile(t *testing.T, src string, stage glsl.ShaderStage) *glsl.TranslationUnit {
	t.Helper()
	tu, diags := glsl.Compile(src, 0, stage)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return tu
}

func TestLowerEmptyFragmentShader(t *testing.T) {
	tu := compile(t, "#version 100\nvoid main(){ gl_FragColor = vec4(0,0,0,1); }\n", glsl.StageFragment)
	prog, err := Lower(tu, "main")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(prog.Instructions) == 0 {
		t.Fatalf("expected at least one instruction")
	}
	last := prog.Instructions[len(prog.Instructions)-1]
	if last.Opcode != OpReturn {
		t.Fatalf("expected program to end with OpReturn, got %v", last.Opcode)
	}
}

func TestLowerMadFusion(t *testing.T) {
	src := `#version 100
uniform float a;
uniform float b;
uniform float c;
void main() {
  float r = a * b + c;
  gl_FragColor = vec4(r, r, r, 1.0);
}
`
	tu := compile(t, src, glsl.StageFragment)
	prog, err := Lower(tu, "main")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	found := false
	for _, in := range prog.Instructions {
		if in.Opcode == OpMad {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a*b+c to fuse into OpMad")
	}
}

func TestLowerMarksUniformUsed(t *testing.T) {
	src := `#version 100
uniform float used;
uniform float unused;
void main() {
  gl_FragColor = vec4(used, used, used, 1.0);
}
`
	tu := compile(t, src, glsl.StageFragment)
	prog, err := Lower(tu, "main")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	for _, u := range prog.Uniforms {
		if u.Name == "unused" {
			t.Fatalf("expected unused uniform to be pruned, found %+v", u)
		}
	}
	found := false
	for _, u := range prog.Uniforms {
		if u.Name == "used" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected used uniform to survive pruning")
	}
}

func TestLowerLoopCarriesUnroll(t *testing.T) {
	src := `#version 100
uniform sampler2D s;
void main() {
  vec4 c = vec4(0.0);
  for (int i = 0; i < 4; ++i) {
    c += texture2D(s, vec2(float(i) * 0.25, 0.0));
  }
  gl_FragColor = c;
}
`
	tu := compile(t, src, glsl.StageFragment)
	prog, err := Lower(tu, "main")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	found := false
	for _, in := range prog.Instructions {
		if in.Opcode == OpLoop && in.Unroll {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected OpLoop to carry Unroll=true")
	}
}

func TestLowerMatrixVectorMultiply(t *testing.T) {
	src := `#version 100
uniform mat4 mvp;
attribute vec4 position;
void main() {
  gl_Position = mvp * position;
}
`
	tu := compile(t, src, glsl.StageVertex)
	prog, err := Lower(tu, "main")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	// A uniform mat4 must reserve 4 consecutive uniform registers, one
	// per column, not a single register.
	var mvpReg *Ref
	for i := range prog.Uniforms {
		if prog.Uniforms[i].Name == "mvp" {
			mvpReg = &prog.Uniforms[i].Register
		}
	}
	if mvpReg == nil {
		t.Fatalf("expected mvp uniform to survive pruning")
	}

	var muls, mads int
	for _, in := range prog.Instructions {
		switch in.Opcode {
		case OpMul:
			muls++
		case OpMad:
			mads++
		}
	}
	if muls != 1 || mads != 3 {
		t.Fatalf("expected mat4*vec4 to expand into 1 OpMul + 3 OpMad, got %d OpMul, %d OpMad", muls, mads)
	}

	// every column's multiply/multiply-add must read a distinct column
	// register of mvp: four consecutive source indices across the four
	// column terms, not the same register repeated.
	cols := map[uint32]bool{}
	for _, in := range prog.Instructions {
		if in.Opcode == OpMul || in.Opcode == OpMad {
			if in.Src[0].Bank == BankUniform {
				cols[in.Src[0].Index] = true
			}
		}
	}
	if len(cols) != 4 {
		t.Fatalf("expected 4 distinct matrix column registers read, got %d (%v)", len(cols), cols)
	}
}

func TestLowerMatrixMatrixMultiply(t *testing.T) {
	src := `#version 100
uniform mat4 a;
uniform mat4 b;
attribute vec4 position;
void main() {
  mat4 c = a * b;
  gl_Position = c * position;
}
`
	tu := compile(t, src, glsl.StageVertex)
	prog, err := Lower(tu, "main")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	// mat*mat must produce 4 result columns, each built from a*mad chain:
	// expect at least 4 OpMul (one per result column's first term) and
	// 12 OpMad (3 accumulation terms per column) from the mat*mat alone,
	// plus the trailing mat*vec expansion's own 1 OpMul + 3 OpMad.
	var muls, mads int
	for _, in := range prog.Instructions {
		switch in.Opcode {
		case OpMul:
			muls++
		case OpMad:
			mads++
		}
	}
	if muls != 5 || mads != 15 {
		t.Fatalf("expected mat*mat (4 OpMul/12 OpMad) + mat*vec (1 OpMul/3 OpMad) = 5 OpMul/15 OpMad, got %d OpMul, %d OpMad", muls, mads)
	}
}

func TestValidateRejectsUnbalancedLoop(t *testing.T) {
	p := &Program{Instructions: []Instruction{{Opcode: OpLoop}}}
	errs := Validate(p)
	if len(errs) == 0 {
		t.Fatalf("expected a validation error for unbalanced loop")
	}
}

func TestValidateRejectsOutOfRangeTemp(t *testing.T) {
	p := &Program{
		NumTemps: 1,
		Instructions: []Instruction{
			{Opcode: OpAdd, Dst: Ref{Bank: BankTemp, Index: 5}, SrcCount: 2, Src: [4]Ref{{Bank: BankTemp, Index: 0}, {Bank: BankTemp, Index: 0}}},
		},
	}
	errs := Validate(p)
	if len(errs) == 0 {
		t.Fatalf("expected an out-of-range temp register error")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := &Program{
		NumTemps: 2,
		Instructions: []Instruction{
			{
				Opcode: OpAdd, Dst: Ref{Bank: BankTemp, Index: 1}, DstMask: WriteAll,
				Src: [4]Ref{{Bank: BankTemp, Index: 0}, {Bank: BankUniform, Index: 3}},
				SrcSwiz: [4]Swizzle{Identity, MakeSwizzle(1, 1, 1, 1)}, SrcCount: 2,
			},
			{Opcode: OpReturn},
		},
	}
	data := Encode(p)
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(p.Instructions) {
		t.Fatalf("expected %d instructions, got %d", len(p.Instructions), len(decoded))
	}
	first := decoded[0]
	if first.Opcode != OpAdd || first.Dst != p.Instructions[0].Dst || first.SrcCount != 2 {
		t.Fatalf("round trip mismatch: %+v", first)
	}
	if first.SrcSwiz[1] != MakeSwizzle(1, 1, 1, 1) {
		t.Fatalf("swizzle did not round-trip: %v", first.SrcSwiz[1])
	}
}
