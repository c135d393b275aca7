package pipeline

import (
	"fmt"

	"github.com/cpugl/swr/shaderir"
)

// PixelOutput is one fragment invocation's result (spec.md §4.6 "Pixel
// routine"): the color gl_FragColor was last written ((0,0,0,1) if the
// program never writes it; a user-declared `out` variable is not read
// back as the color), an optional depth override, and whether the shader
// executed a discard.
type PixelOutput struct {
	Color     [4]float64
	Depth     float64
	HasDepth  bool
	Discarded bool
}

// PixelRoutine runs a compiled fragment program per covered sample
// (spec.md §4.6, driven by package raster's quad dispatch).
type PixelRoutine struct {
	Program    *CompiledProgram
	ShaderProg *shaderir.Program
}

// NewPixelRoutine wraps a compiled fragment-stage CompiledProgram.
func NewPixelRoutine(compiled *CompiledProgram, prog *shaderir.Program) (*PixelRoutine, error) {
	if compiled.Stage != shaderir.StageFragment {
		return nil, fmt.Errorf("pipeline: NewPixelRoutine given a %v-stage program", compiled.Stage)
	}
	return &PixelRoutine{Program: compiled, ShaderProg: prog}, nil
}

// Invoke runs the fragment shader once. varyings maps an input register's
// index to its interpolated value (package raster computes these from the
// triangle's plane equations); uniforms and samplers are as in
// VertexRoutine.Invoke. fragCoord is the window-space (x, y, z, 1/w)
// position GLSL's gl_FragCoord exposes.
func (r *PixelRoutine) Invoke(varyings, uniforms map[uint32][4]float64, fragCoord [4]float64, frontFacing bool) (PixelOutput, error) {
	args := make([]float64, len(r.Program.Inputs))
	coordRef, hasCoord := r.ShaderProg.Builtins["gl_FragCoord"]
	facingRef, hasFacing := r.ShaderProg.Builtins["gl_FrontFacing"]
	for i, slot := range r.Program.Inputs {
		switch {
		case hasCoord && slot.Bank == shaderir.BankInput && slot.Index == coordRef.Index:
			args[i] = fragCoord[slot.Lane]
		case hasFacing && slot.Bank == shaderir.BankInput && slot.Index == facingRef.Index:
			if frontFacing {
				args[i] = 1
			}
		case slot.Bank == shaderir.BankUniform:
			if v, ok := uniforms[slot.Index]; ok {
				args[i] = v[slot.Lane]
			}
		default:
			if v, ok := varyings[slot.Index]; ok {
				args[i] = v[slot.Lane]
			}
		}
	}

	rets, err := r.Program.Routine.InvokeMulti(args...)
	if err != nil {
		return PixelOutput{}, err
	}

	out := PixelOutput{Color: [4]float64{0, 0, 0, 1}}
	colorRef, hasColor := r.ShaderProg.Builtins["gl_FragColor"]
	depthRef, hasDepthOut := r.ShaderProg.Builtins["gl_FragDepth"]
	for i, slot := range r.Program.Outputs {
		if i >= len(rets) {
			continue
		}
		val := rets[i]
		switch {
		case slot.Bank == DiscardBank:
			out.Discarded = val != 0
		case hasColor && slot.Index == colorRef.Index:
			out.Color[slot.Lane] = val
		case hasDepthOut && slot.Index == depthRef.Index:
			out.Depth = val
			out.HasDepth = true
		}
	}
	return out, nil
}
