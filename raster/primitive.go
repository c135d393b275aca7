package raster

import "github.com/cpugl/swr/pipeline"

// Topology enumerates the GL ES primitive assembly orders.
type Topology uint8

const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyLineStrip
	TopologyLineLoop
	TopologyTriangles
	TopologyTriangleStrip
	TopologyTriangleFan
)

// PlaneEq is a plane z = A*x + B*y + C, evaluated over window-space x/y.
// Setup fits one per depth, reciprocal-w, and varying component.
type PlaneEq struct {
	A, B, C float64
}

// Eval returns the plane's value at (x, y).
func (p PlaneEq) Eval(x, y float64) float64 { return p.A*x + p.B*y + p.C }

// Span is one scanline's covered pixel-column range, inclusive. Right <
// Left marks an empty span.
type Span struct {
	Left, Right int
}

// Empty reports whether the span covers no pixels.
func (s Span) Empty() bool { return s.Right < s.Left }

// Primitive is a post-transform, post-setup triangle ready for scan
// conversion. Outline is sized to the framebuffer's row count rather
// than a fixed resolution constant — a slice indexed by absolute
// window-space row covers any framebuffer height without a hard-coded
// maximum.
type Primitive struct {
	V                 [3]pipeline.VertexOutput
	ZPlane, WPlane    PlaneEq
	VaryingPlanes     map[uint32][4]PlaneEq
	Area              float64
	FrontFacing       bool
	StencilMaskFront  uint64
	StencilMaskBack   uint64
	YMin, YMax        int
	Outline           []Span
}

// AssembleTriangles walks an index stream per the rules of topology,
// producing the ordered vertex triples Sutherland-Hodgman clipping and
// setup (clip.go, setup.go) consume next. Only the triangle-family
// topologies are handled here; AssemblePoints/AssembleLines below cover
// the remaining two GL ES primitive kinds, which raster draws directly
// without the clip/setup/outline machinery triangles need.
func AssembleTriangles(topology Topology, indices []int, vertices []pipeline.VertexOutput) [][3]pipeline.VertexOutput {
	var tris [][3]pipeline.VertexOutput
	fetch := func(i int) (pipeline.VertexOutput, bool) {
		if i < 0 || i >= len(indices) {
			return pipeline.VertexOutput{}, false
		}
		idx := indices[i]
		if idx < 0 || idx >= len(vertices) {
			return pipeline.VertexOutput{}, false
		}
		return vertices[idx], true
	}
	switch topology {
	case TopologyTriangles:
		for i := 0; i+2 <= len(indices)-1; i += 3 {
			a, ok1 := fetch(i)
			b, ok2 := fetch(i + 1)
			c, ok3 := fetch(i + 2)
			if ok1 && ok2 && ok3 {
				tris = append(tris, [3]pipeline.VertexOutput{a, b, c})
			}
		}
	case TopologyTriangleStrip:
		for i := 0; i+2 <= len(indices)-1; i++ {
			a, ok1 := fetch(i)
			b, ok2 := fetch(i + 1)
			c, ok3 := fetch(i + 2)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			if i%2 == 1 {
				a, b = b, a
			}
			tris = append(tris, [3]pipeline.VertexOutput{a, b, c})
		}
	case TopologyTriangleFan:
		a, ok0 := fetch(0)
		if !ok0 {
			break
		}
		for i := 1; i+1 <= len(indices)-1; i++ {
			b, ok1 := fetch(i)
			c, ok2 := fetch(i + 1)
			if ok1 && ok2 {
				tris = append(tris, [3]pipeline.VertexOutput{a, b, c})
			}
		}
	}
	return tris
}

// AssemblePoints returns the vertex stream in GL_POINTS order.
func AssemblePoints(indices []int, vertices []pipeline.VertexOutput) []pipeline.VertexOutput {
	out := make([]pipeline.VertexOutput, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(vertices) {
			out = append(out, vertices[idx])
		}
	}
	return out
}

// AssembleLines returns vertex pairs for lines/line_strip/line_loop.
func AssembleLines(topology Topology, indices []int, vertices []pipeline.VertexOutput) [][2]pipeline.VertexOutput {
	fetch := func(i int) (pipeline.VertexOutput, bool) {
		if i < 0 || i >= len(indices) {
			return pipeline.VertexOutput{}, false
		}
		idx := indices[i]
		if idx < 0 || idx >= len(vertices) {
			return pipeline.VertexOutput{}, false
		}
		return vertices[idx], true
	}
	var out [][2]pipeline.VertexOutput
	switch topology {
	case TopologyLines:
		for i := 0; i+1 <= len(indices)-1; i += 2 {
			a, ok1 := fetch(i)
			b, ok2 := fetch(i + 1)
			if ok1 && ok2 {
				out = append(out, [2]pipeline.VertexOutput{a, b})
			}
		}
	case TopologyLineStrip, TopologyLineLoop:
		for i := 0; i+1 <= len(indices)-1; i++ {
			a, ok1 := fetch(i)
			b, ok2 := fetch(i + 1)
			if ok1 && ok2 {
				out = append(out, [2]pipeline.VertexOutput{a, b})
			}
		}
		if topology == TopologyLineLoop && len(indices) > 1 {
			a, ok1 := fetch(len(indices) - 1)
			b, ok2 := fetch(0)
			if ok1 && ok2 {
				out = append(out, [2]pipeline.VertexOutput{a, b})
			}
		}
	}
	return out
}
