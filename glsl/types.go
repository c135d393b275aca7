package glsl

// BasicType enumerates the scalar kinds GLSL ES expressions resolve to.
type BasicType uint8

const (
	TyVoid BasicType = iota
	TyBool
	TyInt
	TyUint
	TyFloat
	TySampler2D
	TySampler3D
	TySamplerCube
	TySampler2DArray
	TySampler2DShadow
	TySamplerCubeShadow
	TySampler2DArrayShadow
	TyStruct
)

// Precision qualifiers (spec.md §3).
type Precision uint8

const (
	PrecisionDefault Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

// Qualifier is the storage/interpolation qualifier of a declaration.
type Qualifier uint8

const (
	QualNone Qualifier = iota
	QualConst
	QualIn
	QualOut
	QualInout
	QualUniform
	QualVarying
	QualAttribute
	QualCentroid
	QualFlat
	QualSmooth
	QualInvariant
)

// ValueType is the fully resolved type of an expression or declaration:
// basic type, precision, vector size (1 for scalar), matrix dimensions (0
// when not a matrix), array length (0 when not an array), and qualifier —
// every field spec.md §3 requires an AST node to carry.
type ValueType struct {
	Basic       BasicType
	Precision   Precision
	VectorSize  uint8 // 1..4
	MatrixCols  uint8 // 0 if not a matrix
	MatrixRows  uint8
	ArrayLen    uint32 // 0 if not an array
	Qualifier   Qualifier
	StructName  string // set when Basic == TyStruct
}

// IsSampler reports whether t is one of the sampler basic types. Samplers
// are not assignable nor usable in arithmetic (spec.md §4.2).
func (t ValueType) IsSampler() bool {
	switch t.Basic {
	case TySampler2D, TySampler3D, TySamplerCube, TySampler2DArray,
		TySampler2DShadow, TySamplerCubeShadow, TySampler2DArrayShadow:
		return true
	default:
		return false
	}
}

// IsMatrix reports whether t is a matrix type.
func (t ValueType) IsMatrix() bool { return t.MatrixCols > 0 }

// IsArray reports whether t is an array type.
func (t ValueType) IsArray() bool { return t.ArrayLen > 0 }

// IsNumeric reports whether arithmetic operators are defined over t.
func (t ValueType) IsNumeric() bool {
	switch t.Basic {
	case TyInt, TyUint, TyFloat:
		return true
	default:
		return false
	}
}

// Scalar builds the ValueType for a plain scalar of the given basic type.
func Scalar(b BasicType) ValueType { return ValueType{Basic: b, VectorSize: 1} }

// Vector builds the ValueType for a vector of size n (2..4) over basic type b.
func Vector(b BasicType, n uint8) ValueType { return ValueType{Basic: b, VectorSize: n} }

// Matrix builds the ValueType for a cols x rows matrix of floats.
func Matrix(cols, rows uint8) ValueType {
	return ValueType{Basic: TyFloat, VectorSize: rows, MatrixCols: cols, MatrixRows: rows}
}

// typeForKeyword maps a type-name token kind to its ValueType, or reports
// ok=false for non-type tokens.
func typeForKeyword(k TokenKind) (ValueType, bool) {
	switch k {
	case TokenVoid:
		return ValueType{Basic: TyVoid}, true
	case TokenBool:
		return Scalar(TyBool), true
	case TokenInt:
		return Scalar(TyInt), true
	case TokenUint:
		return Scalar(TyUint), true
	case TokenFloat:
		return Scalar(TyFloat), true
	case TokenVec2:
		return Vector(TyFloat, 2), true
	case TokenVec3:
		return Vector(TyFloat, 3), true
	case TokenVec4:
		return Vector(TyFloat, 4), true
	case TokenBvec2:
		return Vector(TyBool, 2), true
	case TokenBvec3:
		return Vector(TyBool, 3), true
	case TokenBvec4:
		return Vector(TyBool, 4), true
	case TokenIvec2:
		return Vector(TyInt, 2), true
	case TokenIvec3:
		return Vector(TyInt, 3), true
	case TokenIvec4:
		return Vector(TyInt, 4), true
	case TokenUvec2:
		return Vector(TyUint, 2), true
	case TokenUvec3:
		return Vector(TyUint, 3), true
	case TokenUvec4:
		return Vector(TyUint, 4), true
	case TokenMat2:
		return Matrix(2, 2), true
	case TokenMat3:
		return Matrix(3, 3), true
	case TokenMat4:
		return Matrix(4, 4), true
	case TokenMat2x3:
		return Matrix(2, 3), true
	case TokenMat2x4:
		return Matrix(2, 4), true
	case TokenMat3x2:
		return Matrix(3, 2), true
	case TokenMat3x4:
		return Matrix(3, 4), true
	case TokenMat4x2:
		return Matrix(4, 2), true
	case TokenMat4x3:
		return Matrix(4, 3), true
	case TokenSampler2D:
		return Scalar(TySampler2D), true
	case TokenSampler3D:
		return Scalar(TySampler3D), true
	case TokenSamplerCube:
		return Scalar(TySamplerCube), true
	case TokenSampler2DArray:
		return Scalar(TySampler2DArray), true
	case TokenSampler2DShadow:
		return Scalar(TySampler2DShadow), true
	case TokenSamplerCubeShadow:
		return Scalar(TySamplerCubeShadow), true
	case TokenSampler2DArrayShadow:
		return Scalar(TySampler2DArrayShadow), true
	default:
		return ValueType{}, false
	}
}

func qualifierForKeyword(k TokenKind) (Qualifier, bool) {
	switch k {
	case TokenConst:
		return QualConst, true
	case TokenIn:
		return QualIn, true
	case TokenOut:
		return QualOut, true
	case TokenInout:
		return QualInout, true
	case TokenUniform:
		return QualUniform, true
	case TokenVarying:
		return QualVarying, true
	case TokenAttribute:
		return QualAttribute, true
	case TokenCentroid:
		return QualCentroid, true
	case TokenFlat:
		return QualFlat, true
	case TokenSmooth:
		return QualSmooth, true
	case TokenInvariant:
		return QualInvariant, true
	default:
		return QualNone, false
	}
}

func precisionForKeyword(k TokenKind) (Precision, bool) {
	switch k {
	case TokenHighp:
		return PrecisionHigh, true
	case TokenMediump:
		return PrecisionMedium, true
	case TokenLowp:
		return PrecisionLow, true
	default:
		return PrecisionDefault, false
	}
}
