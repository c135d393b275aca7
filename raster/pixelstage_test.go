package raster

import (
	"testing"

	"github.com/cpugl/swr/pipeline"
)

func TestDepthPasses(t *testing.T) {
	cases := []struct {
		fn       pipeline.CompareFunc
		z, cur   float64
		expected bool
	}{
		{pipeline.CompareNever, 0.5, 0.5, false},
		{pipeline.CompareLess, 0.4, 0.5, true},
		{pipeline.CompareLess, 0.6, 0.5, false},
		{pipeline.CompareEqual, 0.5, 0.5, true},
		{pipeline.CompareEqual, 0.4, 0.5, false},
		{pipeline.CompareLEqual, 0.5, 0.5, true},
		{pipeline.CompareLEqual, 0.6, 0.5, false},
		{pipeline.CompareGreater, 0.6, 0.5, true},
		{pipeline.CompareNotEqual, 0.4, 0.5, true},
		{pipeline.CompareGEqual, 0.5, 0.5, true},
		{pipeline.CompareAlways, 0.9, 0.1, true},
	}
	for _, c := range cases {
		if got := depthPasses(c.fn, c.z, c.cur); got != c.expected {
			t.Fatalf("depthPasses(%v, %v, %v) = %v, want %v", c.fn, c.z, c.cur, got, c.expected)
		}
	}
}

func TestBlendColorStandardAlphaOver(t *testing.T) {
	state := pipeline.BlendState{
		Enabled:    true,
		Equation:   pipeline.BlendFuncAdd,
		SrcFactor:  pipeline.BlendSrcAlpha,
		DstFactor:  pipeline.BlendOneMinusSrcAlpha,
		SrcFactorA: pipeline.BlendOne,
		DstFactorA: pipeline.BlendZero,
	}
	src := [4]float64{1, 0, 0, 0.5}
	dst := [4]float64{0, 0, 1, 1}
	got := blendColor(state, src, dst)
	want := [4]float64{0.5, 0, 0.5, 0.5}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("blendColor = %v, want %v", got, want)
		}
	}
}

func TestBlendCombineSubtractVariants(t *testing.T) {
	if got := blendCombine(pipeline.BlendFuncSubtract, 0.8, 0.3); got < 0.499999 || got > 0.500001 {
		t.Fatalf("subtract: got %v, want 0.5", got)
	}
	if got := blendCombine(pipeline.BlendFuncReverseSubtract, 0.8, 0.3); got < -0.500001 || got > -0.499999 {
		t.Fatalf("reverse subtract: got %v, want -0.5", got)
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-1) != 0 || clamp01(2) != 1 || clamp01(0.3) != 0.3 {
		t.Fatalf("clamp01 out of range")
	}
}
