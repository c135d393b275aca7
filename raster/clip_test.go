package raster

import (
	"math"
	"testing"

	"github.com/cpugl/swr/pipeline"
)

func clipVert(x, y, z, w float64) pipeline.VertexOutput {
	return pipeline.VertexOutput{
		Position: [4]float64{x, y, z, w},
		Varyings: map[uint32][4]float64{0: {x, y, 0, 1}},
	}
}

func TestClipTriangleInsideVolumeIsUntouched(t *testing.T) {
	tri := [3]pipeline.VertexOutput{
		clipVert(-0.5, -0.5, 0, 1),
		clipVert(0.5, -0.5, 0, 1),
		clipVert(0, 0.5, 0, 1),
	}
	poly := ClipTriangle(tri)
	if len(poly) != 3 {
		t.Fatalf("expected an unclipped triangle to pass through with 3 vertices, got %d", len(poly))
	}
	for i, v := range poly {
		if v.Position != tri[i].Position {
			t.Fatalf("vertex %d changed: got %v, want %v", i, v.Position, tri[i].Position)
		}
	}
}

// TestClipTriangleInterpolatesNewVertex clips a triangle with one vertex
// outside the x<=w plane and checks the two new vertices land exactly on
// the boundary (x == w) with linearly interpolated varyings.
func TestClipTriangleInterpolatesNewVertex(t *testing.T) {
	v0 := clipVert(-0.5, -0.5, 0, 1)
	v1 := clipVert(0.5, -0.5, 0, 1)
	v2 := clipVert(2, 0.5, 0, 1) // outside x <= w

	poly := ClipTriangle([3]pipeline.VertexOutput{v0, v1, v2})
	if len(poly) != 4 {
		t.Fatalf("expected clipping to produce a 4-vertex polygon, got %d: %v", len(poly), poly)
	}

	const eps = 1e-9
	newCount := 0
	for _, v := range poly {
		if math.Abs(v.Position[0]-v.Position[3]) < eps {
			newCount++
			// Varying 0's x-component was seeded equal to Position.x, so
			// the interpolated varying should track the interpolated x.
			if math.Abs(v.Varyings[0][0]-v.Position[0]) > eps {
				t.Fatalf("varying not linearly interpolated with position: varying=%v position=%v", v.Varyings[0], v.Position)
			}
		}
	}
	if newCount != 2 {
		t.Fatalf("expected exactly 2 new on-boundary vertices, found %d in %v", newCount, poly)
	}

	foundV0, foundV1 := false, false
	for _, v := range poly {
		if v.Position == v0.Position {
			foundV0 = true
		}
		if v.Position == v1.Position {
			foundV1 = true
		}
	}
	if !foundV0 || !foundV1 {
		t.Fatalf("expected both original in-volume vertices to survive clipping, got %v", poly)
	}
}

func TestClipTriangleFullyOutsideIsEmpty(t *testing.T) {
	tri := [3]pipeline.VertexOutput{
		clipVert(2, 2, 0, 1),
		clipVert(3, 2, 0, 1),
		clipVert(2, 3, 0, 1),
	}
	if poly := ClipTriangle(tri); len(poly) != 0 {
		t.Fatalf("expected a fully out-of-volume triangle to clip to nothing, got %v", poly)
	}
}

func TestTriangulateFansPolygon(t *testing.T) {
	poly := []pipeline.VertexOutput{
		clipVert(0, 0, 0, 1),
		clipVert(1, 0, 0, 1),
		clipVert(1, 1, 0, 1),
		clipVert(0, 1, 0, 1),
	}
	tris := Triangulate(poly)
	if len(tris) != 2 {
		t.Fatalf("expected a 4-gon to fan into 2 triangles, got %d", len(tris))
	}
	for i, tri := range tris {
		if tri[0].Position != poly[0].Position {
			t.Fatalf("triangle %d should share the fan apex, got %v", i, tri[0].Position)
		}
	}
}
