package raster

import (
	"context"

	"github.com/cpugl/swr/pipeline"
)

// Driver orchestrates one context's draw calls end to end: vertex
// shading, primitive assembly, clipping, setup, and the worker-pool scan
// conversion. It owns the framebuffer and the context's last-error slot;
// a draw call's Specialization (set by the caller's use_program/link
// step) may be nil, modeling a JIT compile failure that disables drawing
// with that program.
type Driver struct {
	FB   *Framebuffer
	Pool *WorkerPool
	Ctx  *Context
}

// NewDriver wires a framebuffer to a fresh worker pool and context.
func NewDriver(fb *Framebuffer, concurrency int) *Driver {
	return &Driver{FB: fb, Pool: &WorkerPool{Concurrency: concurrency}, Ctx: &Context{}}
}

// Draw runs one draw call: attrs maps an attribute register index to its
// per-vertex values (length = vertexCount); indices is the element
// stream (identity 0..vertexCount-1 for a non-indexed draw).
func (d *Driver) Draw(ctx context.Context, spec *pipeline.Specialization, topology Topology, indices []int, vertexCount int, attrs map[uint32][][4]float64, uniforms map[uint32][4]float64) error {
	if spec == nil {
		d.Ctx.SetError(ErrInvalidOperation)
		return &ContextError{Code: ErrInvalidOperation, Msg: "draw call with no linked program"}
	}

	verts := make([]pipeline.VertexOutput, vertexCount)
	for i := 0; i < vertexCount; i++ {
		vAttrs := make(map[uint32][4]float64, len(attrs))
		for reg, values := range attrs {
			if i < len(values) {
				vAttrs[reg] = values[i]
			}
		}
		out, err := spec.Vertex.Invoke(vAttrs, uniforms)
		if err != nil {
			d.Ctx.SetError(ErrOutOfMemory)
			return &ContextError{Code: ErrOutOfMemory, Msg: err.Error()}
		}
		verts[i] = out
	}

	vpW, vpH := float64(d.FB.Width), float64(d.FB.Height)

	switch topology {
	case TopologyPoints:
		for _, v := range AssemblePoints(indices, verts) {
			d.plotPoint(spec, prepareVertex(v, 0, 0, vpW, vpH), uniforms)
		}
		return nil
	case TopologyLines, TopologyLineStrip, TopologyLineLoop:
		for _, seg := range AssembleLines(topology, indices, verts) {
			d.plotLine(spec, [2]pipeline.VertexOutput{
				prepareVertex(seg[0], 0, 0, vpW, vpH),
				prepareVertex(seg[1], 0, 0, vpW, vpH),
			}, uniforms)
		}
		return nil
	}

	for _, tri := range AssembleTriangles(topology, indices, verts) {
		for _, clipped := range Triangulate(ClipTriangle(tri)) {
			screen := [3]pipeline.VertexOutput{
				prepareVertex(clipped[0], 0, 0, vpW, vpH),
				prepareVertex(clipped[1], 0, 0, vpW, vpH),
				prepareVertex(clipped[2], 0, 0, vpW, vpH),
			}
			if err := d.drawTriangle(ctx, spec, screen, uniforms); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawTriangle runs setup and rasterizes one already-clipped triangle.
// A setup failure (degenerate area or culled) skips just this triangle;
// rasterization continues with the remaining primitives rather than
// aborting the draw.
func (d *Driver) drawTriangle(ctx context.Context, spec *pipeline.Specialization, tri [3]pipeline.VertexOutput, uniforms map[uint32][4]float64) error {
	prim, ok := Setup(tri, d.FB.Width, d.FB.Height, spec.Raster)
	if !ok {
		return nil
	}
	strips := d.Pool.Strips(prim.YMin, prim.YMax)
	if len(strips) == 0 {
		return nil
	}
	return d.Pool.Run(ctx, strips, func(_ context.Context, s Strip) error {
		return RasterizeStrip(prim, spec, d.FB, uniforms, s)
	})
}

// plotPoint and plotLine give GL_POINTS/GL_LINES a minimal, un-clipped
// direct write: a point runs the pixel shader once at its vertex's own
// varyings, and each pixel of a line runs it at varyings interpolated
// linearly between the two endpoints (no plane equations, since a point
// or line has no triangle interior to derive one from). Depth/stencil
// and blending are intentionally skipped here — see DESIGN.md for why
// only the triangle family gets the full setup/outline/blend pipeline.
func (d *Driver) plotPoint(spec *pipeline.Specialization, v pipeline.VertexOutput, uniforms map[uint32][4]float64) {
	x, y := int(v.Position[0]), int(v.Position[1])
	out, err := spec.Pixel.Invoke(v.Varyings, uniforms, v.Position, true)
	if err != nil || out.Discarded {
		return
	}
	d.FB.SetColorAt(x, y, out.Color)
}

func (d *Driver) plotLine(spec *pipeline.Specialization, seg [2]pipeline.VertexOutput, uniforms map[uint32][4]float64) {
	x0, y0 := int(seg[0].Position[0]), int(seg[0].Position[1])
	x1, y1 := int(seg[1].Position[0]), int(seg[1].Position[1])
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	x, y := x0, y0
	for {
		t := lineParam(x, y, x0, y0, x1, y1)
		v := lerpLineVertex(seg[0], seg[1], t)
		out, ierr := spec.Pixel.Invoke(v.Varyings, uniforms, v.Position, true)
		if ierr == nil && !out.Discarded {
			d.FB.SetColorAt(x, y, out.Color)
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func lineParam(x, y, x0, y0, x1, y1 int) float64 {
	totalDx, totalDy := x1-x0, y1-y0
	total := float64(totalDx*totalDx + totalDy*totalDy)
	if total == 0 {
		return 0
	}
	cur := float64((x-x0)*totalDx + (y-y0)*totalDy)
	t := cur / total
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func lerpLineVertex(a, b pipeline.VertexOutput, t float64) pipeline.VertexOutput {
	out := pipeline.VertexOutput{Varyings: map[uint32][4]float64{}}
	for i := range out.Position {
		out.Position[i] = a.Position[i] + t*(b.Position[i]-a.Position[i])
	}
	for k, av := range a.Varyings {
		bv := b.Varyings[k]
		var lane [4]float64
		for i := range lane {
			lane[i] = av[i] + t*(bv[i]-av[i])
		}
		out.Varyings[k] = lane
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
