package reactor

import "fmt"

// Kind is the scalar element kind of a Type.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindPointer
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type describes the shape of a Value: a scalar kind, a lane count for
// SIMD composite values (1 for plain scalars), and — for KindPointer —
// the pointee Type, or — for KindStruct — its Fields.
type Type struct {
	Kind    Kind
	Lanes   uint8 // 1, 2, 3, 4, 8, 16...
	Elem    *Type // pointee, when Kind == KindPointer
	Fields  []Field
	Name    string
}

// Field is one named member of a struct Type.
type Field struct {
	Name   string
	Type   Type
	Offset uint32
}

func Scalar(k Kind) Type { return Type{Kind: k, Lanes: 1} }

// Vector builds a lane-wise SIMD composite type: n lanes of scalar kind k.
func Vector(k Kind, n uint8) Type { return Type{Kind: k, Lanes: n} }

func PointerTo(elem Type) Type { return Type{Kind: KindPointer, Lanes: 1, Elem: &elem} }

func StructOf(name string, fields ...Field) Type {
	var off uint32
	for i := range fields {
		fields[i].Offset = off
		off += fields[i].Type.Size()
	}
	return Type{Kind: KindStruct, Lanes: 1, Fields: fields, Name: name}
}

// IsVector reports whether t has more than one lane.
func (t Type) IsVector() bool { return t.Lanes > 1 }

// IsFloat reports whether t's scalar kind is a floating-point kind.
func (t Type) IsFloat() bool { return t.Kind == KindFloat32 || t.Kind == KindFloat64 }

// IsSigned reports whether arithmetic on t's scalar kind is signed.
func (t Type) IsSigned() bool {
	switch t.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t's scalar kind is an integer kind.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}

// ElementSize returns the size in bytes of one lane/scalar of t.
func (t Type) ElementSize() uint32 {
	switch t.Kind {
	case KindBool, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64, KindPointer:
		return 8
	case KindStruct:
		return t.Size()
	default:
		return 0
	}
}

// Size returns the total size in bytes of a value of type t.
func (t Type) Size() uint32 {
	if t.Kind == KindStruct {
		var sz uint32
		for _, f := range t.Fields {
			sz = f.Offset + f.Type.Size()
		}
		return sz
	}
	n := uint32(t.Lanes)
	if n == 0 {
		n = 1
	}
	return t.ElementSize() * n
}

func (t Type) String() string {
	if t.Kind == KindPointer {
		return "*" + t.Elem.String()
	}
	if t.Kind == KindStruct {
		return "struct " + t.Name
	}
	if t.Lanes > 1 {
		return fmt.Sprintf("%v<%d>", t.Kind, t.Lanes)
	}
	return t.Kind.String()
}

var (
	Void    = Scalar(KindVoid)
	Bool    = Scalar(KindBool)
	Int32   = Scalar(KindInt32)
	Uint32  = Scalar(KindUint32)
	Float32 = Scalar(KindFloat32)
	Float32x2 = Vector(KindFloat32, 2)
	Float32x3 = Vector(KindFloat32, 3)
	Float32x4 = Vector(KindFloat32, 4)
	Int32x4   = Vector(KindInt32, 4)
)
