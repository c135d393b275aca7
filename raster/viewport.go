package raster

import "github.com/cpugl/swr/pipeline"

// prepareVertex performs the perspective divide and viewport transform a
// real rasterizer applies between clipping and setup. Position becomes
// window-space (x, y, depth in [0,1], 1/w_clip) — the fourth component
// is deliberately repurposed to
// carry 1/w rather than raw w, matching GL's own gl_FragCoord.w
// convention and letting setup.go's existing "w plane" machinery double
// as the reciprocal-w plane perspective-correct interpolation needs.
// Varyings are pre-multiplied by 1/w so their plane equations, like the
// reciprocal-w plane, are affine in window space; shadePixel (pixelstage.go)
// divides back out at the point of use.
func prepareVertex(v pipeline.VertexOutput, vpX, vpY, vpW, vpH float64) pipeline.VertexOutput {
	w := v.Position[3]
	if w == 0 {
		w = 1
	}
	invW := 1 / w
	ndcX := v.Position[0] * invW
	ndcY := v.Position[1] * invW
	ndcZ := v.Position[2] * invW

	out := pipeline.VertexOutput{
		Position:  [4]float64{vpX + (ndcX*0.5+0.5)*vpW, vpY + (1-(ndcY*0.5+0.5))*vpH, ndcZ*0.5 + 0.5, invW},
		PointSize: v.PointSize,
		Varyings:  make(map[uint32][4]float64, len(v.Varyings)),
	}
	for key, val := range v.Varyings {
		var lane [4]float64
		for i := range lane {
			lane[i] = val[i] * invW
		}
		out.Varyings[key] = lane
	}
	return out
}
