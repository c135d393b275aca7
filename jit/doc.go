// Package jit is the native backend of spec.md §2 C5: it optimizes a
// reactor.Function's SSA instruction list through a named pass pipeline
// and returns the result as a Routine. A Routine reserves an executable
// page holding only a marker naming it, not machine code; Invoke and
// InvokeMulti interpret the optimized instruction list.
//
// The pass pipeline's naming and ordering is modeled on a standard LLVM
// -O2 pipeline (SROA, InstCombine, CFG simplification, LICM, DCE, GVN,
// reassociation, dead-store elimination, SCCP, early CSE), the same
// family of passes the teacher's codegen grounding (core/codegen,
// google/gapid) configures through llvm.NewPassManager. Because reactor's
// IR is a small flat instruction list rather than LLVM IR, only the
// passes that are straightforward to express over that representation
// (SROA-of-struct-locals, peephole InstructionCombining, straight-line
// CFGSimplification, AggressiveDCE, DeadStoreElimination, EarlyCSE) are
// real rewrites here; LICM, GVN, Reassociate, and SCCP are registered as
// named, callable stages with a documented no-op body — see DESIGN.md for
// the scope decision.
//
// Executable memory is obtained through golang.org/x/sys/unix mmap/
// mprotect (the page is mapped read-write, the marker is copied in, then
// the page is remapped to read-execute), and available SIMD ISA
// extensions are probed with github.com/klauspost/cpuid/v2; the detected
// ISA is recorded on the Routine and does not change how it executes.
package jit
