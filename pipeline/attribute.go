package pipeline

import (
	"encoding/binary"
	"math"
)

// ComponentType enumerates the vertex-attribute storage formats GL ES
// 2.0/3.0 define (spec.md §4.6 "Vertex routine": attribute fetch).
type ComponentType uint8

const (
	ComponentFloat32 ComponentType = iota
	ComponentByte
	ComponentUnsignedByte
	ComponentShort
	ComponentUnsignedShort
	ComponentFixed // 16.16 fixed point
)

// AttributeDescriptor describes one bound vertex attribute's layout
// within its buffer, the GL vertex-attrib-pointer shape.
type AttributeDescriptor struct {
	Name       string
	Type       ComponentType
	Count      int // 1..4 components
	Normalized bool
	Stride     int // bytes between consecutive vertices; 0 means tightly packed
	Offset     int // byte offset of the first component within a vertex
}

func (d AttributeDescriptor) componentSize() int {
	switch d.Type {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	default:
		return 4
	}
}

func (d AttributeDescriptor) stride() int {
	if d.Stride > 0 {
		return d.Stride
	}
	return d.componentSize() * d.Count
}

// Fetch decodes the Count components of vertex index vtx from buf,
// returning them left-aligned in a 4-lane array (trailing lanes 0, except
// lane 3 which GL defaults to 1 for a missing alpha/w component).
func (d AttributeDescriptor) Fetch(buf []byte, vtx int) [4]float64 {
	out := [4]float64{0, 0, 0, 1}
	base := vtx*d.stride() + d.Offset
	sz := d.componentSize()
	for i := 0; i < d.Count && i < 4; i++ {
		off := base + i*sz
		if off < 0 || off+sz > len(buf) {
			continue
		}
		out[i] = d.decode(buf[off : off+sz])
	}
	return out
}

func (d AttributeDescriptor) decode(b []byte) float64 {
	switch d.Type {
	case ComponentFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case ComponentByte:
		v := int8(b[0])
		if d.Normalized {
			return math.Max(float64(v)/127, -1)
		}
		return float64(v)
	case ComponentUnsignedByte:
		v := b[0]
		if d.Normalized {
			return float64(v) / 255
		}
		return float64(v)
	case ComponentShort:
		v := int16(binary.LittleEndian.Uint16(b))
		if d.Normalized {
			return math.Max(float64(v)/32767, -1)
		}
		return float64(v)
	case ComponentUnsignedShort:
		v := binary.LittleEndian.Uint16(b)
		if d.Normalized {
			return float64(v) / 65535
		}
		return float64(v)
	case ComponentFixed:
		v := int32(binary.LittleEndian.Uint32(b))
		return float64(v) / 65536
	default:
		return 0
	}
}
