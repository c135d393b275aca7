// Package pipeline is the Pipeline Specializer (spec.md §4.6, component
// C6): given a GL state vector and a linked program's shader IR
// (package shaderir), it builds the Reactor (package reactor) routines the
// Rasterizer Driver (package raster) invokes per draw call, JIT-compiling
// them through package jit.
//
// The teacher's own backends (hlsl/statements.go, msl/statements.go in the
// retrieval pack) walk a typed IR opcode-by-opcode and emit target-language
// statements; CompileProgram follows the identical shape, emitting Reactor
// builder calls instead of text.
package pipeline
