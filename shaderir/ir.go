package shaderir

// RegisterBank partitions the register file per spec.md §3 and the wire
// encoding of §6.
type RegisterBank uint8

const (
	BankConstant RegisterBank = iota // 0
	BankUniform                      // 1
	BankTemp                         // 2
	BankInput                        // 3
	BankOutput                       // 4
	BankSampler                      // 5
	BankAddress                      // 6
)

// RegisterType is the scalar kind stored in a register, needed to check
// operand-signature compatibility (spec.md §3 invariant).
type RegisterType uint8

const (
	RegFloat RegisterType = iota
	RegInt
	RegUint
	RegBool
	RegAddress
)

// Ref identifies one operand: a bank, an index within that bank, and the
// register's declared type/width, matching the §6 word encoding
// (bank:4, index:28).
type Ref struct {
	Bank  RegisterBank
	Index uint32
	Type  RegisterType
	Width uint8 // vector size, 1..4
}

// Swizzle packs up to four 2-bit lane selectors, lane 0 in the two most
// significant bits, matching spec.md's GLOSSARY definition. Reactor's
// Value.Swizzle takes an explicit lane-index list instead; package
// pipeline builds that list from Lane.
type Swizzle uint8

// Identity is the "xyzw"/no-op swizzle.
const Identity Swizzle = 0b00_01_10_11

// Lane extracts the 2-bit selector for output lane i (0=x..3=w).
func (s Swizzle) Lane(i int) uint8 {
	shift := uint(6 - 2*i)
	return uint8(s>>shift) & 0b11
}

// MakeSwizzle builds a Swizzle from four lane indices 0..3.
func MakeSwizzle(x, y, z, w uint8) Swizzle {
	return Swizzle(x<<6 | y<<4 | z<<2 | w)
}

// WriteMask is a 4-bit per-component write enable (bit 0 = x).
type WriteMask uint8

const WriteAll WriteMask = 0b1111

// Opcode enumerates shader IR instruction operations.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpMov
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMad // dst = src0*src1 + src2, emitted by the a*b+c fusion
	OpMod
	OpMin
	OpMax
	OpDp2
	OpDp3
	OpDp4
	OpRsq
	OpSqrt
	OpRcp
	OpExp
	OpExp2
	OpLog
	OpLog2
	OpSin
	OpCos
	OpAbs
	OpNeg
	OpSat // clamp to [0,1]
	OpFloor
	OpCeil
	OpFrac
	OpTrunc
	OpRound
	OpSlt
	OpSge
	OpSeq
	OpSne
	OpAnd
	OpOr
	OpXor
	OpNot
	OpCmp // predicate-setting compare, feeds OpIf/OpLoop predicates
	OpTex // sample Ref(sampler) at coordinate src0
	OpTexLod
	OpTexOffset
	OpMov4x4 // matrix-by-vector, expanded from a single AST matrix op
	OpPow
	OpClampFn
	OpMixFn
	OpStepFn
	OpSmoothstepFn
	OpLengthFn
	OpNormalizeFn
	OpCrossFn
	OpDotFn
	OpDiscard
	OpReturn
	OpIf
	OpElse
	OpEndIf
	OpLoop
	OpEndLoop
	OpBreak
	OpBreakC // conditional break (for-loop exit test)
	OpContinue
	OpLabel
	OpCall
	OpRet
)

// Instruction is one shader IR instruction (spec.md §3, §6).
type Instruction struct {
	Opcode    Opcode
	Dst       Ref
	DstMask   WriteMask
	Src       [4]Ref
	SrcSwiz   [4]Swizzle
	SrcCount  uint8
	Predicate bool
	// PredicateRef names the boolean temp tested when Predicate is set.
	PredicateRef Ref
	LoopID   uint32
	LabelID  uint32
	// Unroll marks a loop-header instruction whose induction variable
	// either indexes a sampler array or is an integer index used to
	// compute a sample coordinate (spec.md §3, §8 scenario 2).
	Unroll bool
	Line   int
}

// VaryingLinkage records the interpolation metadata the lowerer attaches to
// each varying register (spec.md §4.3 "per-varying linkage metadata").
type VaryingLinkage struct {
	Register     Ref
	Location     uint32
	Interpolate  Interpolation
}

// Interpolation mirrors GLSL's interpolation qualifiers.
type Interpolation uint8

const (
	InterpSmooth Interpolation = iota
	InterpFlat
	InterpCentroid
	InterpNoPerspective
)

// UniformInfo records one uniform register's declared shape, used by the
// specializer to build constant-buffer descriptors and by the lowerer to
// mark unused uniforms for pruning (spec.md §4.3).
type UniformInfo struct {
	Name      string
	Register  Ref
	ArrayLen  uint32
	Used      bool
}

// SamplerInfo records one sampler register's texture target.
type SamplerInfo struct {
	Name     string
	Register Ref
	Target   SamplerTarget
}

// AttributeInfo records one vertex-attribute or plain varying-in input
// register's source name, so the specializer (package pipeline) can match
// a compiled program's input registers against the caller's attribute
// descriptors by name rather than by allocation order.
type AttributeInfo struct {
	Name     string
	Register Ref
}

// SamplerTarget enumerates the sampler dimensionalities GLSL ES defines.
type SamplerTarget uint8

const (
	Sampler2D SamplerTarget = iota
	Sampler3D
	SamplerCube
	Sampler2DArray
	Sampler2DShadow
)

// Program is the self-contained output of the C3 lowering pass: once
// emitted it no longer depends on the AST it was built from (spec.md
// §4.3).
type Program struct {
	Stage        Stage
	Instructions []Instruction
	Varyings     []VaryingLinkage
	Uniforms     []UniformInfo
	Samplers     []SamplerInfo
	Attributes   []AttributeInfo
	// Builtins maps predeclared GL names (gl_Position, gl_FragColor,
	// gl_FragCoord, ...) to the fixed register the lowerer gave them, since
	// they never appear in Program.Attributes/Uniforms/Varyings.
	Builtins map[string]Ref
	// Constants is the literal pool BankConstant refs index into: a
	// literal's numeric value has nowhere else to live once lowering
	// flattens the AST away (spec.md §4.3 "self-contained... does not
	// depend on the AST after emission").
	Constants  []float64
	NumTemps   uint32
	NumInputs  uint32
	NumOutputs uint32
	NumAddress uint32
}

// Stage identifies the pipeline stage a Program targets.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)
