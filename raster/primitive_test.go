package raster

import (
	"testing"

	"github.com/cpugl/swr/pipeline"
)

func idVerts(n int) []pipeline.VertexOutput {
	out := make([]pipeline.VertexOutput, n)
	for i := range out {
		out[i] = pipeline.VertexOutput{Position: [4]float64{float64(i), 0, 0, 1}}
	}
	return out
}

func TestAssembleTrianglesFan(t *testing.T) {
	verts := idVerts(5)
	tris := AssembleTriangles(TopologyTriangleFan, []int{0, 1, 2, 3, 4}, verts)
	if len(tris) != 3 {
		t.Fatalf("expected 3 triangles from a 5-vertex fan, got %d", len(tris))
	}
	for i, tri := range tris {
		if tri[0].Position[0] != 0 {
			t.Fatalf("triangle %d: fan apex should always be vertex 0", i)
		}
	}
}

func TestAssembleTrianglesStripAlternatesWinding(t *testing.T) {
	verts := idVerts(4)
	tris := AssembleTriangles(TopologyTriangleStrip, []int{0, 1, 2, 3}, verts)
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles from a 4-vertex strip, got %d", len(tris))
	}
	if tris[1][0].Position[0] != 2 {
		t.Fatalf("expected second triangle's first vertex to be swapped to preserve winding, got %v", tris[1][0].Position[0])
	}
}

func TestAssembleLinesLoopClosesPath(t *testing.T) {
	verts := idVerts(3)
	segs := AssembleLines(TopologyLineLoop, []int{0, 1, 2}, verts)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments (including the closing one), got %d", len(segs))
	}
	last := segs[2]
	if last[0].Position[0] != 2 || last[1].Position[0] != 0 {
		t.Fatalf("expected closing segment 2->0, got %v", last)
	}
}

func TestAssemblePoints(t *testing.T) {
	verts := idVerts(3)
	pts := AssemblePoints([]int{2, 0, 1}, verts)
	if len(pts) != 3 || pts[0].Position[0] != 2 {
		t.Fatalf("unexpected point order: %v", pts)
	}
}
