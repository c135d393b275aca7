package pipeline

import (
	"fmt"

	"github.com/cpugl/swr/shaderir"
)

// LinkError reports a program-link-time defect: a vertex/fragment stage
// pairing whose varying interfaces don't agree, or a stage whose
// compiled routine the JIT backend rejected.
type LinkError struct {
	Stage shaderir.Stage
	Msg   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("pipeline: link: %s", e.Msg)
}

// Link specializes a vertex/fragment shaderir.Program pair against state
// into a ready-to-draw Specialization. It checks varying linkage the
// way a real GL program link does: every varying the fragment stage
// reads must have a same-location counterpart the vertex stage writes,
// with a matching width.
func Link(vs, fs *shaderir.Program, state RasterState, blend BlendState, depth DepthState, stencil [2]StencilState, units map[uint32]*TextureUnit) (*Specialization, error) {
	if vs.Stage != shaderir.StageVertex {
		return nil, &LinkError{vs.Stage, "first program is not a vertex-stage program"}
	}
	if fs.Stage != shaderir.StageFragment {
		return nil, &LinkError{fs.Stage, "second program is not a fragment-stage program"}
	}

	byLocation := make(map[uint32]shaderir.VaryingLinkage, len(vs.Varyings))
	for _, v := range vs.Varyings {
		byLocation[v.Location] = v
	}
	for _, want := range fs.Varyings {
		have, ok := byLocation[want.Location]
		if !ok {
			return nil, &LinkError{fs.Stage, fmt.Sprintf("fragment shader reads varying at location %d with no matching vertex output", want.Location)}
		}
		if have.Register.Width != want.Register.Width {
			return nil, &LinkError{fs.Stage, fmt.Sprintf("varying at location %d: vertex writes width %d, fragment reads width %d", want.Location, have.Register.Width, want.Register.Width)}
		}
	}

	compiledVS, err := CompileProgram(vs, nil)
	if err != nil {
		return nil, &LinkError{vs.Stage, err.Error()}
	}
	compiledFS, err := CompileProgram(fs, units)
	if err != nil {
		return nil, &LinkError{fs.Stage, err.Error()}
	}

	vr, err := NewVertexRoutine(compiledVS, vs)
	if err != nil {
		return nil, &LinkError{vs.Stage, err.Error()}
	}
	pr, err := NewPixelRoutine(compiledFS, fs)
	if err != nil {
		return nil, &LinkError{fs.Stage, err.Error()}
	}

	return &Specialization{
		Vertex:  vr,
		Pixel:   pr,
		Blend:   blend,
		Depth:   depth,
		Stencil: stencil,
		Raster:  state,
	}, nil
}
