package shaderir

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes p into the little-endian 32-bit-word wire format of
// spec.md §6: each instruction is a header word
// ([opcode:8][dst_mask:4][predicate:4][reserved:16]) followed by a dst_ref
// word and four src_ref|swizzle words.
//
// A bare Ref (bank:4, index:28) carries no swizzle; a source operand needs
// one, so src words use a different split — swizzle:8, bank:4, index:20 —
// trading source-register address space (1M registers per bank) for the
// swizzle bits the spec's "src_ref|swizzle" phrase calls for. Destination
// words never carry a swizzle (only a write mask, already in the header),
// so they keep the full bank:4/index:28 split.
func Encode(p *Program) []byte {
	buf := make([]byte, 0, len(p.Instructions)*6*4)
	var word [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(word[:], v)
		buf = append(buf, word[:]...)
	}
	for _, in := range p.Instructions {
		pred := uint32(0)
		if in.Predicate {
			pred = 1
		}
		header := uint32(in.Opcode)<<24 | uint32(in.DstMask)<<20 | pred<<16
		put(header)
		put(encodeRef(in.Dst))
		for i := 0; i < 4; i++ {
			if i < int(in.SrcCount) {
				put(encodeSrcRef(in.Src[i], in.SrcSwiz[i]))
			} else {
				put(0)
			}
		}
	}
	return buf
}

func encodeRef(r Ref) uint32 {
	return uint32(r.Bank&0xF)<<28 | (r.Index & 0x0FFFFFFF)
}

func decodeRef(w uint32) Ref {
	return Ref{Bank: RegisterBank(w >> 28), Index: w & 0x0FFFFFFF}
}

func encodeSrcRef(r Ref, s Swizzle) uint32 {
	return uint32(s)<<24 | uint32(r.Bank&0xF)<<20 | (r.Index & 0x000FFFFF)
}

func decodeSrcRef(w uint32) (Ref, Swizzle) {
	s := Swizzle(w >> 24)
	bank := RegisterBank((w >> 20) & 0xF)
	idx := w & 0x000FFFFF
	return Ref{Bank: bank, Index: idx}, s
}

// Decode parses the wire format Encode produces back into instructions.
// It does not reconstruct Program.Varyings/Uniforms/Samplers/NumTemps —
// those are linkage metadata carried out-of-band by the specializer, not
// part of the per-instruction wire stream.
func Decode(data []byte) ([]Instruction, error) {
	const wordsPerInstr = 6
	if len(data)%(wordsPerInstr*4) != 0 {
		return nil, fmt.Errorf("shaderir: malformed instruction stream: %d bytes is not a multiple of %d", len(data), wordsPerInstr*4)
	}
	n := len(data) / (wordsPerInstr * 4)
	out := make([]Instruction, 0, n)
	for i := 0; i < n; i++ {
		base := i * wordsPerInstr * 4
		header := binary.LittleEndian.Uint32(data[base : base+4])
		dstWord := binary.LittleEndian.Uint32(data[base+4 : base+8])
		in := Instruction{
			Opcode:    Opcode(header >> 24),
			DstMask:   WriteMask((header >> 20) & 0xF),
			Predicate: (header>>16)&0x1 != 0,
			Dst:       decodeRef(dstWord),
		}
		count := uint8(0)
		for s := 0; s < 4; s++ {
			off := base + 8 + s*4
			w := binary.LittleEndian.Uint32(data[off : off+4])
			if w == 0 {
				continue
			}
			ref, swiz := decodeSrcRef(w)
			in.Src[s] = ref
			in.SrcSwiz[s] = swiz
			count = uint8(s + 1)
		}
		in.SrcCount = count
		out = append(out, in)
	}
	return out, nil
}
