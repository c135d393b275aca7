// Package reactor is the embedded code-generation DSL of spec.md §2 C4:
// Go expressions that, when executed on the host, build an in-memory SSA
// intermediate representation for a routine rather than computing a
// result directly. Package jit (C5) optimizes that IR and interprets
// it; package pipeline (C6) is reactor's principal
// caller, walking a shaderir.Program opcode-by-opcode to build vertex,
// setup, and pixel routines.
//
// The type family (Value, Type, Builder, Function, Module) and the
// "methods on *Value return a new *Value recording one more
// instruction" idiom are adapted from the teacher's core/codegen package
// (github.com/google/gapid/core/codegen), which wraps LLVM's C++ API the
// same way; reactor wraps its own flat SSA instruction list instead of
// binding to LLVM, since the target here is a small CPU-only JIT rather
// than a general multi-target compiler. Pointer/GEP semantics
// (value.go's path/Index), struct Extract/Insert, and the Builder's
// load/store/arithmetic method surface all mirror that file; control-flow
// macros (If/Else/While/For) replay builder.go's block-splicing pattern
// without an LLVM basic-block type underneath.
package reactor
