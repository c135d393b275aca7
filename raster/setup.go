package raster

import (
	"math"

	"github.com/cpugl/swr/pipeline"
)

// Setup computes a Primitive's edge/plane equations and outline spans
// from a post-perspective-divide, post-viewport-transform triangle. It
// returns false when the triangle has zero area or is culled; the
// caller should then treat the primitive as skipped and continue with
// the remaining primitives, not abort the draw.
func Setup(tri [3]pipeline.VertexOutput, fbWidth, fbHeight int, raster pipeline.RasterState) (*Primitive, bool) {
	x0, y0 := tri[0].Position[0], tri[0].Position[1]
	x1, y1 := tri[1].Position[0], tri[1].Position[1]
	x2, y2 := tri[2].Position[0], tri[2].Position[1]

	area := 0.5 * ((x1-x0)*(y2-y0) - (x2-x0)*(y1-y0))
	if area == 0 {
		return nil, false
	}
	frontFacing := (area > 0) == raster.FrontFaceCCW
	switch raster.Cull {
	case pipeline.CullFront:
		if frontFacing {
			return nil, false
		}
	case pipeline.CullBack:
		if !frontFacing {
			return nil, false
		}
	case pipeline.CullFrontAndBack:
		return nil, false
	}

	prim := &Primitive{V: tri, Area: area, FrontFacing: frontFacing}
	prim.ZPlane = planeFromPoints(tri, func(v pipeline.VertexOutput) float64 { return v.Position[2] })
	prim.WPlane = planeFromPoints(tri, func(v pipeline.VertexOutput) float64 { return v.Position[3] })

	prim.VaryingPlanes = map[uint32][4]PlaneEq{}
	for key := range tri[0].Varyings {
		var planes [4]PlaneEq
		for lane := 0; lane < 4; lane++ {
			l := lane
			planes[l] = planeFromPoints(tri, func(v pipeline.VertexOutput) float64 { return v.Varyings[key][l] })
		}
		prim.VaryingPlanes[key] = planes
	}

	yMinF := math.Min(y0, math.Min(y1, y2))
	yMaxF := math.Max(y0, math.Max(y1, y2))
	yMin := int(math.Ceil(yMinF - 0.5))
	yMax := int(math.Floor(yMaxF - 0.5))
	if yMin < 0 {
		yMin = 0
	}
	if yMax > fbHeight-1 {
		yMax = fbHeight - 1
	}
	prim.YMin, prim.YMax = yMin, yMax
	if yMin > yMax {
		return prim, true
	}

	prim.Outline = make([]Span, fbHeight)
	for y := yMin; y <= yMax; y++ {
		prim.Outline[y] = outlineSpan(tri, float64(y)+0.5, fbWidth)
	}
	return prim, true
}

func planeFromPoints(tri [3]pipeline.VertexOutput, f func(pipeline.VertexOutput) float64) PlaneEq {
	x0, y0, f0 := tri[0].Position[0], tri[0].Position[1], f(tri[0])
	x1, y1, f1 := tri[1].Position[0], tri[1].Position[1], f(tri[1])
	x2, y2, f2 := tri[2].Position[0], tri[2].Position[1], f(tri[2])

	denom := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if denom == 0 {
		return PlaneEq{A: 0, B: 0, C: f0}
	}
	a := ((f1-f0)*(y2-y0) - (f2-f0)*(y1-y0)) / denom
	b := ((x1-x0)*(f2-f0) - (x2-x0)*(f1-f0)) / denom
	c := f0 - a*x0 - b*y0
	return PlaneEq{A: a, B: b, C: c}
}

// outlineSpan computes the pixel-column range at row-center y covered by
// tri, by evaluating each edge's half-space as an x-bound at that row
// (an edge function linear in x at fixed y collapses to a single
// boundary crossing) and intersecting the three bounds — a closed-form
// per-row solve rather than an incremental edge-stepping walk.
func outlineSpan(tri [3]pipeline.VertexOutput, rowY float64, fbWidth int) Span {
	edges := [3][2]int{{0, 1}, {1, 2}, {2, 0}}
	low, high := math.Inf(-1), math.Inf(1)
	for _, e := range edges {
		p0, p1 := tri[e[0]], tri[e[1]]
		other := tri[3-e[0]-e[1]]
		dy := p1.Position[1] - p0.Position[1]
		dx := p1.Position[0] - p0.Position[0]
		// Orient so the triangle's third vertex evaluates non-negative.
		val := func(x, y float64) float64 { return dy*(x-p0.Position[0]) - dx*(y-p0.Position[1]) }
		if val(other.Position[0], other.Position[1]) < 0 {
			dy, dx = -dy, -dx
		}
		if dy == 0 {
			if -dx*(rowY-p0.Position[1]) < 0 {
				return Span{0, -1}
			}
			continue
		}
		boundary := p0.Position[0] + dx*(rowY-p0.Position[1])/dy
		if dy > 0 {
			if boundary > low {
				low = boundary
			}
		} else {
			if boundary < high {
				high = boundary
			}
		}
	}
	left := int(math.Ceil(low - 0.5))
	right := int(math.Floor(high - 0.5))
	if left < 0 {
		left = 0
	}
	if right > fbWidth-1 {
		right = fbWidth - 1
	}
	if left > right {
		return Span{0, -1}
	}
	return Span{left, right}
}
