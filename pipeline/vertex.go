package pipeline

import (
	"fmt"

	"github.com/cpugl/swr/shaderir"
)

// VertexOutput is one vertex's output bundle after running the vertex
// shader: clip-space position, per-varying values keyed by the varying's
// output register index (matching shaderir.VaryingLinkage.Register.Index),
// and point size for GL_POINTS draws.
type VertexOutput struct {
	Position  [4]float64
	Varyings  map[uint32][4]float64
	PointSize float64
}

// VertexRoutine runs a compiled vertex program over a stream of vertices
// (spec.md §4.6 "Vertex routine").
type VertexRoutine struct {
	Program    *CompiledProgram
	ShaderProg *shaderir.Program
}

// NewVertexRoutine wraps a compiled vertex-stage CompiledProgram.
func NewVertexRoutine(compiled *CompiledProgram, prog *shaderir.Program) (*VertexRoutine, error) {
	if compiled.Stage != shaderir.StageVertex {
		return nil, fmt.Errorf("pipeline: NewVertexRoutine given a %v-stage program", compiled.Stage)
	}
	return &VertexRoutine{Program: compiled, ShaderProg: prog}, nil
}

// Invoke runs the vertex shader once. attrs maps an attribute register's
// index (shaderir.AttributeInfo.Register.Index) to its fetched value;
// uniforms maps a uniform register's index to its bound value.
func (r *VertexRoutine) Invoke(attrs, uniforms map[uint32][4]float64) (VertexOutput, error) {
	args := make([]float64, len(r.Program.Inputs))
	for i, slot := range r.Program.Inputs {
		src := uniforms
		if slot.Bank == shaderir.BankInput {
			src = attrs
		}
		if v, ok := src[slot.Index]; ok {
			args[i] = v[slot.Lane]
		}
	}

	rets, err := r.Program.Routine.InvokeMulti(args...)
	if err != nil {
		return VertexOutput{}, err
	}

	out := VertexOutput{Varyings: map[uint32][4]float64{}}
	posRef, hasPos := r.ShaderProg.Builtins["gl_Position"]
	sizeRef, hasSize := r.ShaderProg.Builtins["gl_PointSize"]
	for i, slot := range r.Program.Outputs {
		if slot.Bank == DiscardBank || i >= len(rets) {
			continue
		}
		val := rets[i]
		switch {
		case hasPos && slot.Index == posRef.Index:
			out.Position[slot.Lane] = val
		case hasSize && slot.Index == sizeRef.Index:
			out.PointSize = val
		default:
			arr := out.Varyings[slot.Index]
			arr[slot.Lane] = val
			out.Varyings[slot.Index] = arr
		}
	}
	return out, nil
}
