package raster

import "github.com/cpugl/swr/pipeline"

// RasterizeStrip runs the pixel routine over one scanline strip of prim,
// in 2x2 quad groups. Each lane of a quad is tested against its own
// row's outline span independently, then depth-tested, shaded and
// blended into fb (no stencil test is applied); uncovered, depth-failed
// and discarded lanes never write the framebuffer.
func RasterizeStrip(prim *Primitive, spec *pipeline.Specialization, fb *Framebuffer, uniforms map[uint32][4]float64, strip Strip) error {
	yMin, yMax := strip.YMin, strip.YMax
	if yMin < prim.YMin {
		yMin = prim.YMin
	}
	if yMax > prim.YMax {
		yMax = prim.YMax
	}
	if yMin > yMax {
		return nil
	}

	xMin, xMax := fb.Width, -1
	for y := yMin; y <= yMax; y++ {
		sp := prim.Outline[y]
		if sp.Empty() {
			continue
		}
		if sp.Left < xMin {
			xMin = sp.Left
		}
		if sp.Right > xMax {
			xMax = sp.Right
		}
	}
	if xMax < xMin {
		return nil
	}

	for qy := yMin - (yMin & 1); qy <= yMax; qy += 2 {
		for qx := xMin - (xMin & 1); qx <= xMax; qx += 2 {
			for ly := 0; ly < 2; ly++ {
				py := qy + ly
				if py < yMin || py > yMax {
					continue
				}
				sp := prim.Outline[py]
				if sp.Empty() {
					continue
				}
				for lx := 0; lx < 2; lx++ {
					px := qx + lx
					if px < sp.Left || px > sp.Right {
						continue
					}
					if err := shadePixel(prim, spec, fb, uniforms, px, py); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func shadePixel(prim *Primitive, spec *pipeline.Specialization, fb *Framebuffer, uniforms map[uint32][4]float64, x, y int) error {
	cx, cy := float64(x)+0.5, float64(y)+0.5
	// WPlane carries 1/w_clip (prepareVertex in viewport.go), matching
	// gl_FragCoord.w. Varying planes were built from varying*1/w so they
	// stay affine in window space; dividing back out here recovers the
	// perspective-correct value.
	invW := prim.WPlane.Eval(cx, cy)
	z := prim.ZPlane.Eval(cx, cy)

	if spec.Depth.TestEnabled {
		cur := fb.DepthAt(x, y)
		if !depthPasses(spec.Depth.Func, z, cur) {
			return nil
		}
	}

	varyings := make(map[uint32][4]float64, len(prim.VaryingPlanes))
	for key, planes := range prim.VaryingPlanes {
		var v [4]float64
		for lane := 0; lane < 4; lane++ {
			v[lane] = planes[lane].Eval(cx, cy)
			if invW != 0 {
				v[lane] /= invW
			}
		}
		varyings[key] = v
	}

	out, err := spec.Pixel.Invoke(varyings, uniforms, [4]float64{cx, cy, z, invW}, prim.FrontFacing)
	if err != nil {
		return err
	}
	if out.Discarded {
		return nil
	}

	depth := z
	if out.HasDepth {
		depth = out.Depth
	}
	if spec.Depth.WriteEnabled {
		fb.SetDepthAt(x, y, depth)
	}

	color := out.Color
	if spec.Blend.Enabled {
		dst := fb.ColorAt(x, y)
		color = blendColor(spec.Blend, color, dst)
	}
	fb.SetColorAt(x, y, color)
	return nil
}

func depthPasses(fn pipeline.CompareFunc, z, cur float64) bool {
	switch fn {
	case pipeline.CompareNever:
		return false
	case pipeline.CompareLess:
		return z < cur
	case pipeline.CompareEqual:
		return z == cur
	case pipeline.CompareLEqual:
		return z <= cur
	case pipeline.CompareGreater:
		return z > cur
	case pipeline.CompareNotEqual:
		return z != cur
	case pipeline.CompareGEqual:
		return z >= cur
	case pipeline.CompareAlways:
		return true
	default:
		return true
	}
}

func blendFactorValue(f pipeline.BlendFactor, src, dst [4]float64, lane int) float64 {
	switch f {
	case pipeline.BlendZero:
		return 0
	case pipeline.BlendOne:
		return 1
	case pipeline.BlendSrcColor:
		return src[lane]
	case pipeline.BlendOneMinusSrcColor:
		return 1 - src[lane]
	case pipeline.BlendSrcAlpha:
		return src[3]
	case pipeline.BlendOneMinusSrcAlpha:
		return 1 - src[3]
	case pipeline.BlendDstColor:
		return dst[lane]
	case pipeline.BlendOneMinusDstColor:
		return 1 - dst[lane]
	case pipeline.BlendDstAlpha:
		return dst[3]
	case pipeline.BlendOneMinusDstAlpha:
		return 1 - dst[3]
	default:
		return 0
	}
}

func blendCombine(eq pipeline.BlendEquation, s, d float64) float64 {
	switch eq {
	case pipeline.BlendFuncAdd:
		return s + d
	case pipeline.BlendFuncSubtract:
		return s - d
	case pipeline.BlendFuncReverseSubtract:
		return d - s
	default:
		return s + d
	}
}

func blendColor(state pipeline.BlendState, src, dst [4]float64) [4]float64 {
	var out [4]float64
	for lane := 0; lane < 3; lane++ {
		sf := blendFactorValue(state.SrcFactor, src, dst, lane)
		df := blendFactorValue(state.DstFactor, src, dst, lane)
		out[lane] = clamp01(blendCombine(state.Equation, src[lane]*sf, dst[lane]*df))
	}
	sfA := blendFactorValue(state.SrcFactorA, src, dst, 3)
	dfA := blendFactorValue(state.DstFactorA, src, dst, 3)
	out[3] = clamp01(blendCombine(state.Equation, src[3]*sfA, dst[3]*dfA))
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
