package glsl

import "testing"

func TestCompileEmptyFragmentShader(t *testing.T) {
	src := "#version 100\nvoid main(){ gl_FragColor = vec4(0,0,0,1); }\n"
	tu, diags := Compile(src, 0, StageFragment)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tu.Functions) != 1 || tu.Functions[0].Name != "main" {
		t.Fatalf("expected a single main() function, got %+v", tu.Functions)
	}
}

func TestLoopMarkedUnrollWhenIndexingSampler(t *testing.T) {
	src := `#version 100
uniform sampler2D s;
void main() {
  vec4 c = vec4(0.0);
  for (int i = 0; i < 4; ++i) {
    c += texture2D(s, vec2(float(i) * 0.25, 0.0));
  }
}
`
	tu, diags := Compile(src, 0, StageFragment)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := tu.Functions[0]
	loop, ok := fn.Body.Stmts[1].(*LoopStmt)
	if !ok {
		t.Fatalf("expected second statement to be a loop, got %T", fn.Body.Stmts[1])
	}
	if !loop.Canonical {
		t.Fatalf("expected loop to be recognized as canonical")
	}
	if !loop.Unroll {
		t.Fatalf("expected loop to be marked unroll")
	}
}

func TestLoopBodyCannotAssignInductionVar(t *testing.T) {
	src := `#version 100
void main() {
  for (int i = 0; i < 4; ++i) {
    i = 2;
  }
}
`
	_, diags := Compile(src, 0, StageFragment)
	if !diags.HasErrors() {
		t.Fatalf("expected an error for assigning to the induction variable")
	}
}

func TestArrayIndexMustBeConstantOutsideLoop(t *testing.T) {
	src := `#version 100
uniform int idx;
void main() {
  float a[4];
  float b = a[idx];
}
`
	_, diags := Compile(src, 0, StageFragment)
	if !diags.HasErrors() {
		t.Fatalf("expected an error: non-constant array index outside a loop")
	}
}

func TestSamplerNotUsableInArithmetic(t *testing.T) {
	src := `#version 100
uniform sampler2D s;
void main() {
  sampler2D t = s + s;
}
`
	_, diags := Compile(src, 0, StageFragment)
	if !diags.HasErrors() {
		t.Fatalf("expected an error: sampler used in arithmetic")
	}
}
