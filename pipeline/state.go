package pipeline

// BlendFactor enumerates the GL ES blend-factor constants relevant to the
// fixed-function blend stage (spec.md §4.7's framebuffer resolve reads
// these off the active Specialization).
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendEquation enumerates the GL ES blend-equation constants.
type BlendEquation uint8

const (
	BlendFuncAdd BlendEquation = iota
	BlendFuncSubtract
	BlendFuncReverseSubtract
)

// BlendState is the fixed-function blend configuration for one draw.
type BlendState struct {
	Enabled    bool
	Equation   BlendEquation
	SrcFactor  BlendFactor
	DstFactor  BlendFactor
	SrcFactorA BlendFactor
	DstFactorA BlendFactor
}

// CompareFunc enumerates the GL ES depth/stencil comparison constants.
type CompareFunc uint8

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLEqual
	CompareGreater
	CompareNotEqual
	CompareGEqual
	CompareAlways
)

// DepthState is the fixed-function depth-test configuration.
type DepthState struct {
	TestEnabled  bool
	WriteEnabled bool
	Func         CompareFunc
}

// StencilOp enumerates the GL ES stencil-op constants.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncr
	StencilDecr
	StencilInvert
	StencilIncrWrap
	StencilDecrWrap
)

// StencilState is the fixed-function stencil-test configuration for one
// face (front or back; GL ES allows them to differ).
type StencilState struct {
	TestEnabled bool
	Func        CompareFunc
	Ref         uint8
	ReadMask    uint8
	WriteMask   uint8
	Fail        StencilOp
	DepthFail   StencilOp
	Pass        StencilOp
}

// CullMode enumerates the GL ES face-culling constants.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
	CullFrontAndBack
)

// RasterState bundles the fixed-function state that sits outside either
// shader stage but still shapes a draw call: culling, multisampling, and
// alpha-to-coverage. Package raster reads only Cull and FrontFaceCCW. The
// display channel order is not part of RasterState: raster's
// Framebuffer.Resolve takes it as a VisualOrder argument.
type RasterState struct {
	Cull               CullMode
	FrontFaceCCW       bool
	SampleCount        int
	AlphaToCoverage    bool
	SampleAlphaToOne   bool
	PolygonOffsetUnits float64
}

// Specialization is the result of the link step (link.go): one draw's
// compiled vertex and pixel routines plus every piece of fixed-function
// state that was baked into them (uniform bindings aside; those are
// supplied fresh per draw through VertexRoutine.Invoke/PixelRoutine.Invoke).
type Specialization struct {
	Vertex  *VertexRoutine
	Pixel   *PixelRoutine
	Blend   BlendState
	Depth   DepthState
	Stencil [2]StencilState // [0]=front, [1]=back
	Raster  RasterState
}
