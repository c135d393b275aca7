package raster

import (
	"testing"

	"github.com/cpugl/swr/pipeline"
)

func vertexAt(x, y, z, w float64) pipeline.VertexOutput {
	return pipeline.VertexOutput{Position: [4]float64{x, y, z, w}, Varyings: map[uint32][4]float64{}}
}

// TestSetupCoversExactIntegerPixelCenters checks that a triangle
// (0,0),(2,0),(0,2) rasterized into a 4x4 framebuffer at integer pixel
// centers covers exactly {(0,0),(1,0),(0,1)}.
func TestSetupCoversExactIntegerPixelCenters(t *testing.T) {
	tri := [3]pipeline.VertexOutput{
		vertexAt(0, 0, 0, 1),
		vertexAt(2, 0, 0, 1),
		vertexAt(0, 2, 0, 1),
	}
	prim, ok := Setup(tri, 4, 4, pipeline.RasterState{})
	if !ok {
		t.Fatalf("Setup rejected a non-degenerate triangle")
	}

	want := map[[2]int]bool{{0, 0}: true, {1, 0}: true, {0, 1}: true}
	got := map[[2]int]bool{}
	for y := prim.YMin; y <= prim.YMax; y++ {
		sp := prim.Outline[y]
		if sp.Empty() {
			continue
		}
		for x := sp.Left; x <= sp.Right; x++ {
			got[[2]int{x, y}] = true
		}
	}
	if len(got) != len(want) {
		t.Fatalf("covered %v pixels, want %v", got, want)
	}
	for p := range want {
		if !got[p] {
			t.Fatalf("missing expected pixel %v in %v", p, got)
		}
	}
}

// TestSetupOutlineAreaInvariant checks that for a triangle of non-zero
// area, the sum of outline span widths equals the edge-function pixel
// count, computed here by a brute-force per-pixel edge test over the
// triangle's bounding box as an independent oracle.
func TestSetupOutlineAreaInvariant(t *testing.T) {
	tri := [3]pipeline.VertexOutput{
		vertexAt(1, 1, 0, 1),
		vertexAt(9, 2, 0, 1),
		vertexAt(3, 8, 0, 1),
	}
	prim, ok := Setup(tri, 16, 16, pipeline.RasterState{})
	if !ok {
		t.Fatalf("Setup rejected a non-degenerate triangle")
	}

	sum := 0
	for y := prim.YMin; y <= prim.YMax; y++ {
		sp := prim.Outline[y]
		if !sp.Empty() {
			sum += sp.Right - sp.Left + 1
		}
	}

	oracle := bruteForceCoverage(tri, 16, 16)
	if sum != oracle {
		t.Fatalf("outline covers %d pixels, brute-force edge test covers %d", sum, oracle)
	}
}

func bruteForceCoverage(tri [3]pipeline.VertexOutput, w, h int) int {
	sign := func(x, y float64, a, b pipeline.VertexOutput) float64 {
		return (b.Position[0]-a.Position[0])*(y-a.Position[1]) - (b.Position[1]-a.Position[1])*(x-a.Position[0])
	}
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cx, cy := float64(x)+0.5, float64(y)+0.5
			d1 := sign(cx, cy, tri[0], tri[1])
			d2 := sign(cx, cy, tri[1], tri[2])
			d3 := sign(cx, cy, tri[2], tri[0])
			hasNeg := d1 < 0 || d2 < 0 || d3 < 0
			hasPos := d1 > 0 || d2 > 0 || d3 > 0
			if !(hasNeg && hasPos) {
				count++
			}
		}
	}
	return count
}

func TestSetupCullsBackFace(t *testing.T) {
	tri := [3]pipeline.VertexOutput{
		vertexAt(0, 0, 0, 1),
		vertexAt(2, 0, 0, 1),
		vertexAt(0, 2, 0, 1),
	}
	_, ok := Setup(tri, 4, 4, pipeline.RasterState{Cull: pipeline.CullFront, FrontFaceCCW: true})
	if ok {
		t.Fatalf("expected front-facing triangle to be culled")
	}
	prim, ok := Setup(tri, 4, 4, pipeline.RasterState{Cull: pipeline.CullBack, FrontFaceCCW: true})
	if !ok || prim == nil {
		t.Fatalf("expected front-facing triangle to survive back-face culling")
	}
}

func TestSetupRejectsDegenerateTriangle(t *testing.T) {
	tri := [3]pipeline.VertexOutput{vertexAt(0, 0, 0, 1), vertexAt(1, 1, 0, 1), vertexAt(2, 2, 0, 1)}
	if _, ok := Setup(tri, 4, 4, pipeline.RasterState{}); ok {
		t.Fatalf("expected a zero-area triangle to be rejected")
	}
}
