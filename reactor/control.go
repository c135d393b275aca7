package reactor

// control-flow macros. These don't return Values; they splice
// Label/Jump/Branch instructions into the function the way a real
// language's if/while would, so callers write If/While/For the way they
// would in Go, and package jit's interpreter later jumps between the
// Label/Jump/Branch markers by label id without forming basic blocks —
// the same builder.go insertion-point pattern the teacher uses, minus
// the llvm.BasicBlock underneath.

// If emits `if cond { then() }`.
func (b *Builder) If(cond Value, then func()) {
	elseLabel := b.newLabel()
	b.fn.value(Void, Instr{Op: OpBranch, Operands: []int{cond.idx}, Target: elseLabel, TargetElse: elseLabel})
	then()
	b.fn.value(Void, Instr{Op: OpLabel, Target: elseLabel})
}

// IfElse emits `if cond { then() } else { els() }`.
func (b *Builder) IfElse(cond Value, then func(), els func()) {
	elseLabel := b.newLabel()
	endLabel := b.newLabel()
	b.fn.value(Void, Instr{Op: OpBranch, Operands: []int{cond.idx}, Target: elseLabel, TargetElse: elseLabel})
	then()
	b.fn.value(Void, Instr{Op: OpJump, Target: endLabel})
	b.fn.value(Void, Instr{Op: OpLabel, Target: elseLabel})
	els()
	b.fn.value(Void, Instr{Op: OpLabel, Target: endLabel})
}

// While emits a pretest loop: `while cond() { body() }`. cond is called
// each time the condition needs (re-)evaluating, since Value handles
// can't be re-read after new instructions have been spliced around them.
func (b *Builder) While(cond func() Value, body func()) {
	headLabel := b.newLabel()
	endLabel := b.newLabel()
	b.fn.value(Void, Instr{Op: OpLabel, Target: headLabel})
	c := cond()
	b.fn.value(Void, Instr{Op: OpBranch, Operands: []int{c.idx}, Target: endLabel, TargetElse: endLabel})
	body()
	b.fn.value(Void, Instr{Op: OpJump, Target: headLabel})
	b.fn.value(Void, Instr{Op: OpLabel, Target: endLabel})
}

// DoUntil emits a posttest loop: `do { body() } while (!cond())`.
func (b *Builder) DoUntil(body func(), cond func() Value) {
	headLabel := b.newLabel()
	b.fn.value(Void, Instr{Op: OpLabel, Target: headLabel})
	body()
	c := cond()
	b.fn.value(Void, Instr{Op: OpBranch, Operands: []int{c.idx}, Target: headLabel, TargetElse: headLabel})
}

// ForLoop emits a canonical counted loop: `for init; cond(); post() { body() }`.
func (b *Builder) ForLoop(init func(), cond func() Value, post func(), body func()) {
	headLabel := b.newLabel()
	endLabel := b.newLabel()
	init()
	b.fn.value(Void, Instr{Op: OpLabel, Target: headLabel})
	c := cond()
	b.fn.value(Void, Instr{Op: OpBranch, Operands: []int{c.idx}, Target: endLabel, TargetElse: endLabel})
	body()
	post()
	b.fn.value(Void, Instr{Op: OpJump, Target: headLabel})
	b.fn.value(Void, Instr{Op: OpLabel, Target: endLabel})
}

// Ret emits a return, with or without a value.
func (b *Builder) Ret() {
	b.fn.value(Void, Instr{Op: OpRet})
}

func (b *Builder) RetValue(v Value) {
	b.fn.value(Void, Instr{Op: OpRet, Operands: []int{v.idx}})
}

// RetValues returns several values at once: package pipeline's per-stage
// routines produce more than one live output component (varyings, a
// clip-space position, a discard flag), and jit.Routine.InvokeMulti reads
// every operand of the terminating OpRet back out in order.
func (b *Builder) RetValues(vs ...Value) {
	ops := make([]int, len(vs))
	for i, v := range vs {
		ops[i] = v.idx
	}
	b.fn.value(Void, Instr{Op: OpRet, Operands: ops})
}
