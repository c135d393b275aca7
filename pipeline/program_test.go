package pipeline

import (
	"testing"

	"github.com/cpugl/swr/glsl"
	"github.com/cpugl/swr/shaderir"
)

func lower(t *testing.T, src string, stage glsl.ShaderStage) *shaderir.Program {
	t.Helper()
	tu, diags := glsl.Compile(src, 0, stage)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics compiling: %v", diags)
	}
	prog, err := shaderir.Lower(tu, "main")
	if err != nil {
		t.Fatalf("shaderir.Lower: %v", err)
	}
	return prog
}

func TestCompileProgramEmptyFragmentShader(t *testing.T) {
	prog := lower(t, "#version 100\nvoid main(){ gl_FragColor = vec4(0,0,0,1); }\n", glsl.StageFragment)
	compiled, err := CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	pr, err := NewPixelRoutine(compiled, prog)
	if err != nil {
		t.Fatalf("NewPixelRoutine: %v", err)
	}
	out, err := pr.Invoke(nil, nil, [4]float64{0.5, 0.5, 0, 1}, true)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := [4]float64{0, 0, 0, 1}
	if out.Color != want {
		t.Fatalf("got color %v, want %v", out.Color, want)
	}
	if out.Discarded {
		t.Fatalf("unexpected discard")
	}
}

func TestCompileProgramVertexPassesThroughPosition(t *testing.T) {
	prog := lower(t, `#version 100
attribute vec4 aPos;
void main() {
  gl_Position = aPos;
}
`, glsl.StageVertex)
	compiled, err := CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	vr, err := NewVertexRoutine(compiled, prog)
	if err != nil {
		t.Fatalf("NewVertexRoutine: %v", err)
	}
	attrRef, ok := findAttribute(prog, "aPos")
	if !ok {
		t.Fatalf("aPos attribute not found")
	}
	attrs := map[uint32][4]float64{attrRef: {1, 2, 3, 1}}
	out, err := vr.Invoke(attrs, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := [4]float64{1, 2, 3, 1}
	if out.Position != want {
		t.Fatalf("got position %v, want %v", out.Position, want)
	}
}

func TestCompileProgramArithmeticAndMix(t *testing.T) {
	prog := lower(t, `#version 100
uniform float a;
uniform float b;
uniform float t;
void main() {
  float m = mix(a, b, t);
  gl_FragColor = vec4(m, m, m, 1.0);
}
`, glsl.StageFragment)
	compiled, err := CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	pr, err := NewPixelRoutine(compiled, prog)
	if err != nil {
		t.Fatalf("NewPixelRoutine: %v", err)
	}
	aRef, _ := findUniform(prog, "a")
	bRef, _ := findUniform(prog, "b")
	tRef, _ := findUniform(prog, "t")
	uniforms := map[uint32][4]float64{
		aRef: {0, 0, 0, 0},
		bRef: {10, 0, 0, 0},
		tRef: {0.25, 0, 0, 0},
	}
	out, err := pr.Invoke(nil, uniforms, [4]float64{0, 0, 0, 1}, true)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if diff := out.Color[0] - 2.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("got %v, want 2.5", out.Color[0])
	}
}

func TestCompileProgramIfElsePredication(t *testing.T) {
	prog := lower(t, `#version 100
uniform float x;
void main() {
  float r;
  if (x > 0.5) {
    r = 1.0;
  } else {
    r = 0.0;
  }
  gl_FragColor = vec4(r, r, r, 1.0);
}
`, glsl.StageFragment)
	compiled, err := CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	pr, err := NewPixelRoutine(compiled, prog)
	if err != nil {
		t.Fatalf("NewPixelRoutine: %v", err)
	}
	xRef, _ := findUniform(prog, "x")
	for _, tc := range []struct {
		x    float64
		want float64
	}{{0.9, 1.0}, {0.1, 0.0}} {
		out, err := pr.Invoke(nil, map[uint32][4]float64{xRef: {tc.x, 0, 0, 0}}, [4]float64{0, 0, 0, 1}, true)
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if out.Color[0] != tc.want {
			t.Fatalf("x=%v: got %v, want %v", tc.x, out.Color[0], tc.want)
		}
	}
}

func TestCompileProgramContinueResumesNextIteration(t *testing.T) {
	prog := lower(t, `#version 100
void main() {
  float sum = 0.0;
  for (int i = 0; i < 4; i++) {
    if (i == 2) {
      continue;
    }
    sum += 1.0;
  }
  gl_FragColor = vec4(sum, sum, sum, 1.0);
}
`, glsl.StageFragment)
	compiled, err := CompileProgram(prog, nil)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	pr, err := NewPixelRoutine(compiled, prog)
	if err != nil {
		t.Fatalf("NewPixelRoutine: %v", err)
	}
	out, err := pr.Invoke(nil, nil, [4]float64{0, 0, 0, 1}, true)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	// Only iteration i==2 is skipped; the other three (i=0,1,3) must
	// still each add 1.0 -- a continue-as-break regression would stop
	// accumulating after i==2 and leave sum at 2.
	if out.Color[0] != 3.0 {
		t.Fatalf("got sum %v, want 3 (continue must not behave like break)", out.Color[0])
	}
}

func findAttribute(prog *shaderir.Program, name string) (uint32, bool) {
	for _, a := range prog.Attributes {
		if a.Name == name {
			return a.Register.Index, true
		}
	}
	return 0, false
}

func findUniform(prog *shaderir.Program, name string) (uint32, bool) {
	for _, u := range prog.Uniforms {
		if u.Name == name {
			return u.Register.Index, true
		}
	}
	return 0, false
}
