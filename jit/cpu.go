package jit

import "github.com/klauspost/cpuid/v2"

// ISA identifies a vector instruction set extension of the host.
// Routine compilation records the widest ISA the host supports at
// process start and never re-checks it mid-run, since cpuid.CPU does not
// change underneath a running process.
type ISA uint8

const (
	ISAScalar ISA = iota
	ISASSE2
	ISAAVX2
	ISAAVX512
	ISANeon
)

// detectISA inspects the host's feature bits via cpuid and returns the
// widest vector ISA the host supports.
func detectISA() ISA {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return ISAAVX512
	case cpuid.CPU.Supports(cpuid.AVX2):
		return ISAAVX2
	case cpuid.CPU.Supports(cpuid.SSE2):
		return ISASSE2
	case cpuid.CPU.Supports(cpuid.ASIMD):
		return ISANeon
	default:
		return ISAScalar
	}
}

// LaneWidth returns the number of float32 lanes a single vector register
// holds for isa. Package pipeline does not consult it: its batch sizes
// are fixed.
func (isa ISA) LaneWidth() int {
	switch isa {
	case ISAAVX512:
		return 16
	case ISAAVX2:
		return 8
	case ISASSE2, ISANeon:
		return 4
	default:
		return 1
	}
}

func (isa ISA) String() string {
	switch isa {
	case ISAScalar:
		return "scalar"
	case ISASSE2:
		return "sse2"
	case ISAAVX2:
		return "avx2"
	case ISAAVX512:
		return "avx512"
	case ISANeon:
		return "neon"
	default:
		return "unknown"
	}
}
