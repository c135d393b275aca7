// Package shaderir defines the linear, register-allocated shader
// intermediate representation described by spec.md §3 and §6: an ordered
// instruction list over a partitioned register file (temporary, input,
// output, uniform, sampler, constant, address), with explicit opcodes,
// write-masks, per-source swizzles, predication, and loop/label metadata.
//
// This is deliberately not the SSA-expression IR the teacher package
// (github.com/gogpu/naga/ir) uses internally: that IR targets further
// source-to-source translation (SPIR-V/MSL/HLSL/GLSL text), while
// shaderir's linear register form targets direct interpretation by
// pipeline.CompileProgram into reactor routines, mirroring a real GPU
// micro-ISA rather than a portable SSA graph (spec.md §9 "deep inheritance…
// becomes a tagged sum type" applies here to Instruction.Opcode rather than
// to an expression tree). The handle-indexed table layout and the
// separate Validate pass are adapted
// directly from the teacher's ir package (ir.go, resolve.go, validate.go).
//
// Lower (in lower.go) is the C3 AST→IR lowering pass: it walks a
// *glsl.TranslationUnit and emits a Program.
package shaderir
