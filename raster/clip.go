package raster

import "github.com/cpugl/swr/pipeline"

// clipPlane is one of the six view-volume half-spaces tested in clip
// space, before the perspective divide: -w <= x <= w, -w <= y <= w,
// -w <= z <= w.
type clipPlane func(v pipeline.VertexOutput) float64

var clipPlanes = [6]clipPlane{
	func(v pipeline.VertexOutput) float64 { return v.Position[3] + v.Position[0] }, // x >= -w
	func(v pipeline.VertexOutput) float64 { return v.Position[3] - v.Position[0] }, // x <= w
	func(v pipeline.VertexOutput) float64 { return v.Position[3] + v.Position[1] }, // y >= -w
	func(v pipeline.VertexOutput) float64 { return v.Position[3] - v.Position[1] }, // y <= w
	func(v pipeline.VertexOutput) float64 { return v.Position[3] + v.Position[2] }, // z >= -w
	func(v pipeline.VertexOutput) float64 { return v.Position[3] - v.Position[2] }, // z <= w
}

// ClipTriangle clips a triangle against the full view volume via
// Sutherland-Hodgman, one plane at a time, returning the resulting convex
// polygon as a vertex fan (up to 7 additional vertices beyond the
// original 3; varyings and w are linearly interpolated at each
// intersection).
func ClipTriangle(tri [3]pipeline.VertexOutput) []pipeline.VertexOutput {
	poly := []pipeline.VertexOutput{tri[0], tri[1], tri[2]}
	for _, plane := range clipPlanes {
		if len(poly) == 0 {
			return nil
		}
		poly = clipAgainst(poly, plane)
	}
	return poly
}

// Triangulate fans a clipped polygon back into triangles sharing vertex 0.
func Triangulate(poly []pipeline.VertexOutput) [][3]pipeline.VertexOutput {
	if len(poly) < 3 {
		return nil
	}
	var out [][3]pipeline.VertexOutput
	for i := 1; i+1 < len(poly); i++ {
		out = append(out, [3]pipeline.VertexOutput{poly[0], poly[i], poly[i+1]})
	}
	return out
}

func clipAgainst(poly []pipeline.VertexOutput, plane clipPlane) []pipeline.VertexOutput {
	var out []pipeline.VertexOutput
	n := len(poly)
	for i := 0; i < n; i++ {
		cur := poly[i]
		prev := poly[(i-1+n)%n]
		curIn := plane(cur) >= 0
		prevIn := plane(prev) >= 0
		if curIn {
			if !prevIn {
				out = append(out, lerpVertex(prev, cur, plane))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, lerpVertex(prev, cur, plane))
		}
	}
	return out
}

// lerpVertex finds the parametric point along prev->cur where plane
// crosses zero and linearly interpolates position, varyings, and point
// size there.
func lerpVertex(prev, cur pipeline.VertexOutput, plane clipPlane) pipeline.VertexOutput {
	dPrev, dCur := plane(prev), plane(cur)
	denom := dPrev - dCur
	t := 0.5
	if denom != 0 {
		t = dPrev / denom
	}
	out := pipeline.VertexOutput{Varyings: map[uint32][4]float64{}}
	for i := range out.Position {
		out.Position[i] = prev.Position[i] + t*(cur.Position[i]-prev.Position[i])
	}
	out.PointSize = prev.PointSize + t*(cur.PointSize-prev.PointSize)
	for k, pv := range prev.Varyings {
		cv := cur.Varyings[k]
		var lane [4]float64
		for i := range lane {
			lane[i] = pv[i] + t*(cv[i]-pv[i])
		}
		out.Varyings[k] = lane
	}
	return out
}
