package raster

import (
	"context"
	"testing"

	"github.com/cpugl/swr/glsl"
	"github.com/cpugl/swr/pipeline"
	"github.com/cpugl/swr/shaderir"
)

func lowerProgram(t *testing.T, src string, stage glsl.ShaderStage) *shaderir.Program {
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

func findAttributeRegister(prog *shaderir.Program, name string) uint32 {
	for _, a := range prog.Attributes {
		if a.Name == name {
			return a.Register.Index
		}
	}
	return 0
}

// TestDrawFullscreenTriangleEmptyFragmentShader is the boundary scenario:
// an empty fragment shader over a fullscreen triangle on a 1x1 RGBA8
// framebuffer resolves to exactly one opaque-black pixel.
func TestDrawFullscreenTriangleEmptyFragmentShader(t *testing.T) {
	vs := lowerProgram(t, `#version 100
attribute vec4 aPos;
void main() {
  gl_Position = aPos;
}
`, glsl.StageVertex)
	fs := lowerProgram(t, "#version 100\nvoid main(){ gl_FragColor = vec4(0,0,0,1); }\n", glsl.StageFragment)

	spec, err := pipeline.Link(vs, fs, pipeline.RasterState{FrontFaceCCW: true}, pipeline.BlendState{}, pipeline.DepthState{}, [2]pipeline.StencilState{}, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	fb := NewFramebuffer(1, 1)
	drv := NewDriver(fb, 1)

	aPos := findAttributeRegister(vs, "aPos")
	attrs := map[uint32][][4]float64{
		aPos: {
			{-1, -1, 0, 1},
			{3, -1, 0, 1},
			{-1, 3, 0, 1},
		},
	}
	if err := drv.Draw(context.Background(), spec, TopologyTriangles, []int{0, 1, 2}, 3, attrs, nil); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	want := [4]float64{0, 0, 0, 1}
	if got := fb.ColorAt(0, 0); got != want {
		t.Fatalf("pixel (0,0) = %v, want %v", got, want)
	}
	resolved := fb.Resolve(VisualOrderRGBA)
	if len(resolved) != 4 || resolved[0] != 0 || resolved[1] != 0 || resolved[2] != 0 || resolved[3] != 255 {
		t.Fatalf("resolved pixel = %v, want [0 0 0 255] (0x000000FF)", resolved)
	}
}

func TestDrawWithNilSpecSetsInvalidOperation(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	drv := NewDriver(fb, 1)
	err := drv.Draw(context.Background(), nil, TopologyTriangles, []int{0, 1, 2}, 3, nil, nil)
	if err == nil {
		t.Fatalf("expected an error drawing with a nil specialization")
	}
	if drv.Ctx.LastError() != ErrInvalidOperation {
		t.Fatalf("expected ErrInvalidOperation to be recorded, got %v", drv.Ctx.LastError())
	}
}
