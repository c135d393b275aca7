package pipeline

import "golang.org/x/image/math/f32"

// Texture is a CPU-resident RGBA8 image OpTex samples from. It is the
// minimal surface the pixel routine needs: width/height and a row-major
// byte buffer, no mip chain (OpTexLod and OpTexOffset sample this single
// level exactly as OpTex does).
type Texture struct {
	Width, Height int
	Pixels        []byte // RGBA8, row-major, 4 bytes/texel
}

func (t *Texture) texel(x, y int) [4]float64 {
	i := (y*t.Width + x) * 4
	if i < 0 || i+4 > len(t.Pixels) {
		return [4]float64{0, 0, 0, 1}
	}
	return [4]float64{
		float64(t.Pixels[i]) / 255,
		float64(t.Pixels[i+1]) / 255,
		float64(t.Pixels[i+2]) / 255,
		float64(t.Pixels[i+3]) / 255,
	}
}

// Sample performs nearest-neighbor, repeat-wrap sampling at normalized
// texture coordinates uv. Coordinate math is expressed with
// golang.org/x/image/math/f32's Vec2, matching the vector type the rest
// of the retrieval pack's 2D-image code (gogpu/gg) uses, per SPEC_FULL's
// domain-stack wiring.
func (t *Texture) Sample(uv f32.Vec2) [4]float64 {
	if t == nil || t.Width <= 0 || t.Height <= 0 {
		return [4]float64{0, 0, 0, 1}
	}
	u, v := wrap(uv[0]), wrap(uv[1])
	x := int(u * float32(t.Width))
	y := int(v * float32(t.Height))
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}
	return t.texel(x, y)
}

func wrap(f float32) float32 {
	f -= f32f(fl(f))
	if f < 0 {
		f += 1
	}
	return f
}

func fl(f float32) float32 {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return float32(i)
}

func f32f(f float32) float32 { return f }

// TextureUnit is a mutable texture-unit binding: a compiled program's
// sample_texture symbol closes over the TextureUnit rather than a
// specific Texture, so one JIT-compiled routine (package jit) can be
// reused across draws that bind different textures to the same sampler
// (spec.md §2 "specialization path" is a one-time cost; bindings change
// per draw).
type TextureUnit struct {
	Tex *Texture
}

// SampleAt is the scalar-argument entry point CompileProgram's
// sample_texture_* symbols call through (package jit's interpreter only
// passes/returns float64, never a f32.Vec2 directly).
func (u *TextureUnit) SampleAt(s, t float64) [4]float64 {
	return u.Tex.Sample(f32.Vec2{float32(s), float32(t)})
}
