package pipeline

import (
	"fmt"

	"github.com/cpugl/swr/jit"
	"github.com/cpugl/swr/reactor"
	"github.com/cpugl/swr/shaderir"
)

// DiscardBank tags the synthetic discard-flag slot CompileProgram appends
// to a fragment program's Outputs. It is not a real shaderir.RegisterBank
// value (discard has no register of its own in the ISA); RegisterBank is
// a uint8 so 0xFF is safely outside shaderir's declared range.
const DiscardBank shaderir.RegisterBank = 0xFF

// maxLoopUnroll bounds how many times CompileProgram statically unrolls a
// shader-IR loop. A software rasterizer executes a whole SIMD lane group
// through the same compiled routine, so divergent loop trip counts across
// lanes are handled the way a real wide-SIMD shader compiler handles
// them: every lane runs every unrolled iteration, with a per-lane active
// mask (see compiler.active) suppressing the iterations a given lane's
// break condition has already fired for. Loops that legitimately need
// more iterations than this silently truncate; see DESIGN.md.
const maxLoopUnroll = 64

// RegisterSlot names one flat scalar argument or return value of a
// CompiledProgram's Routine: lane Lane of the vector register (Bank,
// Index). Package pipeline's vertex and pixel routines use Inputs/Outputs
// to marshal named attributes, uniforms, varyings and builtins into and
// out of a single Invoke/InvokeMulti call, matching them up against
// shaderir.Program's Attributes/Uniforms/Builtins by register rather than
// by position.
type RegisterSlot struct {
	Bank  shaderir.RegisterBank
	Index uint32
	Lane  int
}

// CompiledProgram is one shader stage specialized all the way down to a
// jit.Routine (spec.md §4.6, component C6): the opcode-by-opcode walk a
// target-language backend would do (the retrieval pack's hlsl/statements.go,
// msl/statements.go) here emits Reactor builder calls instead of text.
type CompiledProgram struct {
	Stage   shaderir.Stage
	Routine *jit.Routine
	Inputs  []RegisterSlot
	Outputs []RegisterSlot
}

type regKey struct {
	bank  shaderir.RegisterBank
	index uint32
}

// compiler walks a shaderir.Program once, translating each instruction
// into reactor.Builder calls. Rather than modeling shader IR's flat
// label/loop-ID control flow as real Reactor branches -- which would
// need SSA phi nodes Reactor's Builder doesn't have -- it does what a
// lane-vectorized software rasterizer has to do anyway: convert control
// flow to predication. if/else compiles both arms and Select()s between
// them; loops statically unroll with a per-lane active mask that freezes
// a lane's register writes once its break condition fires.
type compiler struct {
	b          *reactor.Builder
	prog       *shaderir.Program
	values     map[regKey][4]reactor.Value
	widths     map[regKey]uint8
	constCache map[uint32]reactor.Value
	active     reactor.Value // 1 while the current lane is still "executing"
	broken     reactor.Value // sticky 0/1: lane has hit a break in the innermost loop
	discard    reactor.Value // sticky 0/1 discard flag
}

// CompileProgram specializes prog into a ready-to-invoke routine. units
// binds sampler registers (by their shaderir.Ref.Index) to the texture
// currently in that unit; a sampler with no entry samples as opaque
// black (0,0,0,1), matching GL's behavior for an incomplete texture.
func CompileProgram(prog *shaderir.Program, units map[uint32]*TextureUnit) (*CompiledProgram, error) {
	name := "vertex"
	if prog.Stage == shaderir.StageFragment {
		name = "fragment"
	}

	inputs := discoverRegisters(prog, func(in shaderir.Instruction, yield func(shaderir.Ref)) {
		for i := 0; i < int(in.SrcCount); i++ {
			yield(in.Src[i])
		}
		if in.Predicate {
			yield(in.PredicateRef)
		}
	}, func(r shaderir.Ref) bool {
		return r.Bank == shaderir.BankInput || r.Bank == shaderir.BankUniform
	})

	params := make([]reactor.Type, len(inputs))
	for i := range params {
		params[i] = reactor.Float32
	}

	m := reactor.NewModule(name)
	fn, b := m.NewFunction(name, reactor.Float32, params...)

	c := &compiler{
		b:          b,
		prog:       prog,
		values:     map[regKey][4]reactor.Value{},
		widths:     map[regKey]uint8{},
		constCache: map[uint32]reactor.Value{},
		active:     b.ConstFloat(1),
		broken:     b.ConstFloat(0),
		discard:    b.ConstFloat(0),
	}
	for i, slot := range inputs {
		key := regKey{slot.Bank, slot.Index}
		arr := c.values[key]
		arr[slot.Lane] = fn.Param(i)
		c.values[key] = arr
		if uint8(slot.Lane+1) > c.widths[key] {
			c.widths[key] = uint8(slot.Lane + 1)
		}
	}

	if err := c.compileBlock(prog.Instructions); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", name, err)
	}

	outputs := discoverRegisters(prog, func(in shaderir.Instruction, yield func(shaderir.Ref)) {
		if in.Dst.Bank == shaderir.BankOutput {
			yield(in.Dst)
		}
	}, func(r shaderir.Ref) bool { return true })

	rets := make([]reactor.Value, 0, len(outputs)+1)
	for _, slot := range outputs {
		rets = append(rets, c.lane(shaderir.Ref{Bank: slot.Bank, Index: slot.Index}, slot.Lane))
	}
	rets = append(rets, c.discard)
	outputs = append(outputs, RegisterSlot{Bank: DiscardBank})
	b.RetValues(rets...)

	symbols := jit.Merge(jit.StandardSymbols(), c.textureSymbols(units))
	routine, err := jit.Compile(fn, symbols)
	if err != nil {
		return nil, err
	}
	return &CompiledProgram{Stage: prog.Stage, Routine: routine, Inputs: inputs, Outputs: outputs}, nil
}

// discoverRegisters walks prog's instructions once, collecting every Ref
// passing keep (as seen via walk) into a deterministic, first-seen-order
// slot list, using the widest Width ever observed for a given register so
// a narrow swizzled view encountered first doesn't truncate later lanes.
func discoverRegisters(prog *shaderir.Program, walk func(shaderir.Instruction, func(shaderir.Ref)), keep func(shaderir.Ref) bool) []RegisterSlot {
	var order []regKey
	maxW := map[regKey]int{}
	see := func(r shaderir.Ref) {
		if !keep(r) {
			return
		}
		key := regKey{r.Bank, r.Index}
		w := int(r.Width)
		if w == 0 {
			w = 1
		}
		if _, ok := maxW[key]; !ok {
			order = append(order, key)
		}
		if w > maxW[key] {
			maxW[key] = w
		}
	}
	for _, in := range prog.Instructions {
		walk(in, see)
	}
	var slots []RegisterSlot
	for _, key := range order {
		for lane := 0; lane < maxW[key]; lane++ {
			slots = append(slots, RegisterSlot{Bank: key.bank, Index: key.index, Lane: lane})
		}
	}
	return slots
}

func (c *compiler) textureSymbols(units map[uint32]*TextureUnit) jit.SymbolTable {
	out := jit.SymbolTable{}
	channels := [4]string{"r", "g", "b", "a"}
	for _, s := range c.prog.Samplers {
		unit := units[s.Register.Index]
		if unit == nil {
			unit = &TextureUnit{}
		}
		bound := unit
		for ch := 0; ch < 4; ch++ {
			name := fmt.Sprintf("sample_texture_%d_%s", s.Register.Index, channels[ch])
			chIdx := ch
			out[name] = jit.Symbol{Name: name, Func: func(args []float64) float64 {
				rgba := bound.SampleAt(args[0], args[1])
				return rgba[chIdx]
			}}
		}
	}
	return out
}

// lane returns the current Value of register ref at lane, or a zero
// constant for a register never written (an unbound input, or a local
// read before its declaration's initializer runs).
func (c *compiler) lane(ref shaderir.Ref, lane int) reactor.Value {
	if ref.Bank == shaderir.BankConstant {
		return c.constLane(ref)
	}
	key := regKey{ref.Bank, ref.Index}
	if arr, ok := c.values[key]; ok {
		return arr[lane]
	}
	return c.b.ConstFloat(0)
}

func (c *compiler) constLane(ref shaderir.Ref) reactor.Value {
	if v, ok := c.constCache[ref.Index]; ok {
		return v
	}
	var val float64
	if int(ref.Index) < len(c.prog.Constants) {
		val = c.prog.Constants[ref.Index]
	}
	v := c.b.ConstFloat(val)
	c.constCache[ref.Index] = v
	return v
}

func (c *compiler) srcLane(ref shaderir.Ref, sw shaderir.Swizzle, outLane int) reactor.Value {
	return c.lane(ref, int(sw.Lane(outLane)))
}

// write stores v at dst's lane under the lane's current active mask:
// masked-off lanes keep whatever value the register already held, which
// is how if/else and loop predication (see compiler's doc comment)
// suppress a write without ever emitting a real branch.
func (c *compiler) write(dst shaderir.Ref, lane int, v reactor.Value, width uint8) {
	if width == 0 {
		width = 1
	}
	key := regKey{dst.Bank, dst.Index}
	if width > c.widths[key] {
		c.widths[key] = width
	}
	old := c.lane(dst, lane)
	merged := c.b.Select(c.active, v, old)
	arr := c.values[key]
	arr[lane] = merged
	c.values[key] = arr
}

func (c *compiler) snapshotValues() map[regKey][4]reactor.Value {
	out := make(map[regKey][4]reactor.Value, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func laneWidth(in shaderir.Instruction) int {
	if in.Dst.Width == 0 {
		return 1
	}
	return int(in.Dst.Width)
}

func findIfBounds(instrs []shaderir.Instruction, start int, id uint32) (elseIdx, endIdx int) {
	elseIdx = -1
	for j := start + 1; j < len(instrs); j++ {
		switch {
		case instrs[j].Opcode == shaderir.OpElse && instrs[j].LabelID == id:
			elseIdx = j
		case instrs[j].Opcode == shaderir.OpEndIf && instrs[j].LabelID == id:
			return elseIdx, j
		}
	}
	return elseIdx, len(instrs)
}

func findLoopEnd(instrs []shaderir.Instruction, start int, id uint32) int {
	for j := start + 1; j < len(instrs); j++ {
		if instrs[j].Opcode == shaderir.OpEndLoop && instrs[j].LoopID == id {
			return j
		}
	}
	return len(instrs)
}

// compileBlock compiles a flat span of shader IR, recursing into nested
// if/loop regions by slicing out their bodies and delegating to
// compileIf/compileLoop.
func (c *compiler) compileBlock(instrs []shaderir.Instruction) error {
	for i := 0; i < len(instrs); i++ {
		in := instrs[i]
		switch in.Opcode {
		case shaderir.OpIf:
			elseIdx, endIdx := findIfBounds(instrs, i, in.LabelID)
			thenEnd := endIdx
			if elseIdx >= 0 {
				thenEnd = elseIdx
			}
			thenSpan := instrs[i+1 : thenEnd]
			var elseSpan []shaderir.Instruction
			if elseIdx >= 0 {
				elseSpan = instrs[elseIdx+1 : endIdx]
			}
			cond := c.lane(in.PredicateRef, 0)
			if err := c.compileIf(cond, thenSpan, elseSpan); err != nil {
				return err
			}
			i = endIdx
		case shaderir.OpLoop:
			endIdx := findLoopEnd(instrs, i, in.LoopID)
			if err := c.compileLoop(instrs[i+1 : endIdx]); err != nil {
				return err
			}
			i = endIdx
		case shaderir.OpBreakC:
			cond := c.lane(in.PredicateRef, 0)
			c.broken = c.b.Max(c.broken, cond)
			notCond := c.b.Sub(c.b.ConstFloat(1), cond)
			c.active = c.b.Mul(c.active, notCond)
		case shaderir.OpBreak:
			c.broken = c.b.ConstFloat(1)
			c.active = c.b.ConstFloat(0)
		case shaderir.OpContinue:
			// Only suppresses the remainder of the current unrolled
			// iteration (c.active); c.broken is left untouched so
			// compileLoop re-arms the lane at the start of the next
			// iteration, unlike break's iteration-spanning suppression.
			c.active = c.b.ConstFloat(0)
		case shaderir.OpElse, shaderir.OpEndIf, shaderir.OpEndLoop, shaderir.OpLabel, shaderir.OpNop:
			// structural markers, already consumed by the spans above
		default:
			if err := c.compileInstr(in); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) compileIf(cond reactor.Value, thenSpan, elseSpan []shaderir.Instruction) error {
	outerActive := c.active
	outerBroken := c.broken
	saved := c.snapshotValues()

	c.values = c.snapshotValues()
	c.active = c.b.Mul(outerActive, cond)
	c.broken = outerBroken
	if err := c.compileBlock(thenSpan); err != nil {
		return err
	}
	thenValues := c.values
	thenActive := c.active
	thenBroken := c.broken

	notCond := c.b.Sub(c.b.ConstFloat(1), cond)
	c.values = saved
	c.active = c.b.Mul(outerActive, notCond)
	c.broken = outerBroken
	if err := c.compileBlock(elseSpan); err != nil {
		return err
	}
	elseValues := c.values
	elseActive := c.active
	elseBroken := c.broken

	// A break/continue inside either arm narrows that arm's active/broken
	// unconditionally (it doesn't know at compile time whether cond held
	// for this invocation), so the actual post-if state has to be picked
	// the same way register values are: whichever arm cond says actually
	// ran.
	c.active = c.b.Select(cond, thenActive, elseActive)
	c.broken = c.b.Select(cond, thenBroken, elseBroken)

	merged := map[regKey][4]reactor.Value{}
	keys := map[regKey]bool{}
	for k := range thenValues {
		keys[k] = true
	}
	for k := range elseValues {
		keys[k] = true
	}
	for k := range keys {
		w := c.widths[k]
		if w == 0 {
			w = 1
		}
		var arr [4]reactor.Value
		for lane := 0; lane < int(w); lane++ {
			arr[lane] = c.b.Select(cond, laneOr(c, thenValues, k, lane), laneOr(c, elseValues, k, lane))
		}
		merged[k] = arr
	}
	c.values = merged
	return nil
}

func laneOr(c *compiler, m map[regKey][4]reactor.Value, k regKey, lane int) reactor.Value {
	if arr, ok := m[k]; ok {
		return arr[lane]
	}
	return c.b.ConstFloat(0)
}

func (c *compiler) compileLoop(body []shaderir.Instruction) error {
	outer := c.active
	outerBroken := c.broken
	c.broken = c.b.ConstFloat(0)
	for iter := 0; iter < maxLoopUnroll; iter++ {
		// Re-derive active from outer && !broken at the top of every
		// iteration: a continue only cleared active for the iteration
		// that just finished, so a lane that continued (but didn't
		// break) must run again here, while a lane that broke stays
		// masked off by the sticky c.broken it set.
		notBroken := c.b.Sub(c.b.ConstFloat(1), c.broken)
		c.active = c.b.Mul(outer, notBroken)
		if err := c.compileBlock(body); err != nil {
			return err
		}
	}
	c.active = outer
	c.broken = outerBroken
	return nil
}

func (c *compiler) compileInstr(in shaderir.Instruction) error {
	switch in.Opcode {
	case shaderir.OpMov:
		return c.compileMov(in)
	case shaderir.OpMov4x4:
		return fmt.Errorf("pipeline: OpMov4x4 is unsupported (matrix multiplies lower to multiply-add chains and dot products)")
	case shaderir.OpAdd, shaderir.OpSub, shaderir.OpMul, shaderir.OpDiv, shaderir.OpMod,
		shaderir.OpMin, shaderir.OpMax, shaderir.OpSlt, shaderir.OpSge, shaderir.OpSeq, shaderir.OpSne,
		shaderir.OpAnd, shaderir.OpOr, shaderir.OpXor:
		return c.compileBinary(in)
	case shaderir.OpMad:
		return c.compileMad(in)
	case shaderir.OpDp2, shaderir.OpDp3, shaderir.OpDp4:
		return c.compileDot(in)
	case shaderir.OpRsq, shaderir.OpSqrt, shaderir.OpRcp, shaderir.OpExp, shaderir.OpExp2,
		shaderir.OpLog, shaderir.OpLog2, shaderir.OpSin, shaderir.OpCos, shaderir.OpAbs,
		shaderir.OpNeg, shaderir.OpSat, shaderir.OpFloor, shaderir.OpCeil, shaderir.OpFrac,
		shaderir.OpTrunc, shaderir.OpRound, shaderir.OpNot:
		return c.compileUnary(in)
	case shaderir.OpPow:
		return c.compileN(in, 2, func(a []reactor.Value) reactor.Value { return c.b.Call(reactor.Float32, "powf", a[0], a[1]) })
	case shaderir.OpClampFn:
		return c.compileN(in, 3, func(a []reactor.Value) reactor.Value { return c.b.Min(c.b.Max(a[0], a[1]), a[2]) })
	case shaderir.OpMixFn:
		return c.compileN(in, 3, func(a []reactor.Value) reactor.Value {
			one := c.b.ConstFloat(1)
			return c.b.Add(c.b.Mul(a[0], c.b.Sub(one, a[2])), c.b.Mul(a[1], a[2]))
		})
	case shaderir.OpStepFn:
		return c.compileN(in, 2, func(a []reactor.Value) reactor.Value { return c.b.CmpGE(a[1], a[0]) })
	case shaderir.OpSmoothstepFn:
		return c.compileN(in, 3, func(a []reactor.Value) reactor.Value {
			lo, hi, x := a[0], a[1], a[2]
			one, three, two := c.b.ConstFloat(1), c.b.ConstFloat(3), c.b.ConstFloat(2)
			t := c.b.Div(c.b.Sub(x, lo), c.b.Sub(hi, lo))
			t = c.b.Min(c.b.Max(t, c.b.ConstFloat(0)), one)
			return c.b.Mul(c.b.Mul(t, t), c.b.Sub(three, c.b.Mul(two, t)))
		})
	case shaderir.OpLengthFn:
		return c.compileLength(in)
	case shaderir.OpNormalizeFn:
		return c.compileNormalize(in)
	case shaderir.OpCrossFn:
		return c.compileCross(in)
	case shaderir.OpDotFn:
		return c.compileDotFn(in)
	case shaderir.OpTex, shaderir.OpTexLod, shaderir.OpTexOffset:
		return c.compileTex(in)
	case shaderir.OpDiscard:
		c.discard = c.b.Max(c.discard, c.active)
		return nil
	case shaderir.OpReturn, shaderir.OpRet:
		c.active = c.b.ConstFloat(0)
		return nil
	case shaderir.OpCall:
		return fmt.Errorf("pipeline: OpCall is unsupported (user-defined function calls are inlined by the lowerer)")
	case shaderir.OpCmp:
		return nil // predicate already recomputed at the point of use (OpIf/OpBreakC)
	default:
		return fmt.Errorf("pipeline: unsupported shader IR opcode %v", in.Opcode)
	}
}

func (c *compiler) compileMov(in shaderir.Instruction) error {
	if in.SrcCount == 2 && in.Src[1].Bank == shaderir.BankAddress {
		return c.compileDynamicIndex(in)
	}
	width := laneWidth(in)
	if in.SrcCount <= 1 {
		for lane := 0; lane < width; lane++ {
			if in.DstMask&(1<<uint(lane)) == 0 {
				continue
			}
			c.write(in.Dst, lane, c.srcLane(in.Src[0], in.SrcSwiz[0], lane), in.Dst.Width)
		}
		return nil
	}
	// Constructor form (vec3(a,b,c)): each source supplies its own lane 0,
	// landing at output lane i -- unlike the single-source case above,
	// where the same output lane indexes into one wider source.
	for i := 0; i < int(in.SrcCount) && i < width; i++ {
		c.write(in.Dst, i, c.srcLane(in.Src[i], in.SrcSwiz[i], 0), in.Dst.Width)
	}
	return nil
}

// compileDynamicIndex handles a runtime (loop-index) array subscript,
// lowered as an OpMov whose second source is a BankAddress register
// (shaderir/lower.go's lowerIndex). Reactor has no load/store through a
// computed address, so this compiles to a bounded linear select chain
// over the array's declared length (or a conservative default).
func (c *compiler) compileDynamicIndex(in shaderir.Instruction) error {
	base := in.Src[0]
	idx := c.lane(in.Src[1], 0)
	bound := c.arrayBound(base)
	width := laneWidth(in)
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		cand := base
		result := c.lane(cand, lane)
		for off := 1; off < bound; off++ {
			cand := base
			cand.Index = base.Index + uint32(off)
			eq := c.b.CmpEQ(idx, c.b.ConstFloat(float64(off)))
			result = c.b.Select(eq, c.lane(cand, lane), result)
		}
		c.write(in.Dst, lane, result, in.Dst.Width)
	}
	return nil
}

func (c *compiler) arrayBound(base shaderir.Ref) int {
	for _, u := range c.prog.Uniforms {
		if u.ArrayLen == 0 || u.Register.Bank != base.Bank {
			continue
		}
		if base.Index >= u.Register.Index && base.Index < u.Register.Index+u.ArrayLen {
			return int(u.ArrayLen)
		}
	}
	return 4
}

func (c *compiler) compileBinary(in shaderir.Instruction) error {
	width := laneWidth(in)
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		a := c.srcLane(in.Src[0], in.SrcSwiz[0], lane)
		b2 := c.srcLane(in.Src[1], in.SrcSwiz[1], lane)
		var v reactor.Value
		switch in.Opcode {
		case shaderir.OpAdd:
			v = c.b.Add(a, b2)
		case shaderir.OpSub:
			v = c.b.Sub(a, b2)
		case shaderir.OpMul:
			v = c.b.Mul(a, b2)
		case shaderir.OpDiv:
			v = c.b.Div(a, b2)
		case shaderir.OpMod:
			v = c.b.Mod(a, b2)
		case shaderir.OpMin:
			v = c.b.Min(a, b2)
		case shaderir.OpMax:
			v = c.b.Max(a, b2)
		case shaderir.OpSlt:
			v = c.b.CmpLT(a, b2)
		case shaderir.OpSge:
			v = c.b.CmpGE(a, b2)
		case shaderir.OpSeq:
			v = c.b.CmpEQ(a, b2)
		case shaderir.OpSne:
			v = c.b.CmpNE(a, b2)
		case shaderir.OpAnd:
			v = c.b.Mul(a, b2) // 0/1-domain boolean AND
		case shaderir.OpOr:
			v = c.b.Max(a, b2) // 0/1-domain boolean OR
		case shaderir.OpXor:
			v = c.b.CmpNE(a, b2) // 0/1-domain boolean XOR
		}
		c.write(in.Dst, lane, v, in.Dst.Width)
	}
	return nil
}

func (c *compiler) compileMad(in shaderir.Instruction) error {
	width := laneWidth(in)
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		a := c.srcLane(in.Src[0], in.SrcSwiz[0], lane)
		b2 := c.srcLane(in.Src[1], in.SrcSwiz[1], lane)
		c2 := c.srcLane(in.Src[2], in.SrcSwiz[2], lane)
		c.write(in.Dst, lane, c.b.MulAdd(a, b2, c2), in.Dst.Width)
	}
	return nil
}

func (c *compiler) compileDot(in shaderir.Instruction) error {
	n := 2
	switch in.Opcode {
	case shaderir.OpDp3:
		n = 3
	case shaderir.OpDp4:
		n = 4
	}
	var sum reactor.Value
	for lane := 0; lane < n; lane++ {
		term := c.b.Mul(c.srcLane(in.Src[0], in.SrcSwiz[0], lane), c.srcLane(in.Src[1], in.SrcSwiz[1], lane))
		if lane == 0 {
			sum = term
		} else {
			sum = c.b.Add(sum, term)
		}
	}
	width := laneWidth(in)
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		c.write(in.Dst, lane, sum, in.Dst.Width)
	}
	return nil
}

func (c *compiler) compileUnary(in shaderir.Instruction) error {
	width := laneWidth(in)
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		a := c.srcLane(in.Src[0], in.SrcSwiz[0], lane)
		var v reactor.Value
		switch in.Opcode {
		case shaderir.OpRsq:
			v = c.b.RSqrt(a)
		case shaderir.OpSqrt:
			v = c.b.Sqrt(a)
		case shaderir.OpRcp:
			v = c.b.Reciprocal(a)
		case shaderir.OpExp:
			v = c.b.Call(reactor.Float32, "expf", a)
		case shaderir.OpExp2:
			v = c.b.Call(reactor.Float32, "exp2f", a)
		case shaderir.OpLog:
			v = c.b.Call(reactor.Float32, "logf", a)
		case shaderir.OpLog2:
			v = c.b.Call(reactor.Float32, "log2f", a)
		case shaderir.OpSin:
			v = c.b.Call(reactor.Float32, "sinf", a)
		case shaderir.OpCos:
			v = c.b.Call(reactor.Float32, "cosf", a)
		case shaderir.OpAbs:
			v = c.b.Max(a, c.b.Neg(a))
		case shaderir.OpNeg:
			v = c.b.Neg(a)
		case shaderir.OpSat:
			v = c.b.Min(c.b.Max(a, c.b.ConstFloat(0)), c.b.ConstFloat(1))
		case shaderir.OpFloor:
			v = c.b.Floor(a)
		case shaderir.OpCeil:
			v = c.b.Ceil(a)
		case shaderir.OpTrunc:
			v = c.b.Trunc(a)
		case shaderir.OpFrac:
			v = c.b.Sub(a, c.b.Floor(a))
		case shaderir.OpRound:
			v = c.b.Round(a)
		case shaderir.OpNot:
			v = c.b.Not(a)
		}
		c.write(in.Dst, lane, v, in.Dst.Width)
	}
	return nil
}

// compileN handles the remaining multi-arg GLSL built-ins (pow, clamp,
// mix, step, smoothstep): n full-width arguments, combined per-lane by fn.
func (c *compiler) compileN(in shaderir.Instruction, n int, fn func([]reactor.Value) reactor.Value) error {
	width := laneWidth(in)
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		args := make([]reactor.Value, n)
		for k := 0; k < n; k++ {
			args[k] = c.srcLane(in.Src[k], in.SrcSwiz[k], lane)
		}
		c.write(in.Dst, lane, fn(args), in.Dst.Width)
	}
	return nil
}

func (c *compiler) vecLanes(ref shaderir.Ref, sw shaderir.Swizzle, n int) []reactor.Value {
	vs := make([]reactor.Value, n)
	for i := 0; i < n; i++ {
		vs[i] = c.srcLane(ref, sw, i)
	}
	return vs
}

func inputWidth(ref shaderir.Ref) int {
	if ref.Width == 0 {
		return 1
	}
	return int(ref.Width)
}

func (c *compiler) compileLength(in shaderir.Instruction) error {
	n := inputWidth(in.Src[0])
	vs := c.vecLanes(in.Src[0], in.SrcSwiz[0], n)
	sum := c.b.Mul(vs[0], vs[0])
	for i := 1; i < n; i++ {
		sum = c.b.Add(sum, c.b.Mul(vs[i], vs[i]))
	}
	c.write(in.Dst, 0, c.b.Sqrt(sum), 1)
	return nil
}

func (c *compiler) compileNormalize(in shaderir.Instruction) error {
	n := inputWidth(in.Src[0])
	vs := c.vecLanes(in.Src[0], in.SrcSwiz[0], n)
	sum := c.b.Mul(vs[0], vs[0])
	for i := 1; i < n; i++ {
		sum = c.b.Add(sum, c.b.Mul(vs[i], vs[i]))
	}
	inv := c.b.RSqrt(sum)
	for i := 0; i < n; i++ {
		c.write(in.Dst, i, c.b.Mul(vs[i], inv), uint8(n))
	}
	return nil
}

func (c *compiler) compileDotFn(in shaderir.Instruction) error {
	n := inputWidth(in.Src[0])
	a := c.vecLanes(in.Src[0], in.SrcSwiz[0], n)
	b2 := c.vecLanes(in.Src[1], in.SrcSwiz[1], n)
	sum := c.b.Mul(a[0], b2[0])
	for i := 1; i < n; i++ {
		sum = c.b.Add(sum, c.b.Mul(a[i], b2[i]))
	}
	c.write(in.Dst, 0, sum, 1)
	return nil
}

func (c *compiler) compileCross(in shaderir.Instruction) error {
	a := c.vecLanes(in.Src[0], in.SrcSwiz[0], 3)
	b2 := c.vecLanes(in.Src[1], in.SrcSwiz[1], 3)
	c.write(in.Dst, 0, c.b.Sub(c.b.Mul(a[1], b2[2]), c.b.Mul(a[2], b2[1])), 3)
	c.write(in.Dst, 1, c.b.Sub(c.b.Mul(a[2], b2[0]), c.b.Mul(a[0], b2[2])), 3)
	c.write(in.Dst, 2, c.b.Sub(c.b.Mul(a[0], b2[1]), c.b.Mul(a[1], b2[0])), 3)
	return nil
}

// compileTex lowers a texture sample to four Call()s, one per output
// channel, against the per-draw sample_texture_<sampler>_<channel>
// symbols CompileProgram registers in textureSymbols -- jit.Routine's
// interpreter only carries float64 scalars, so a single RGBA sample
// can't come back from one Call.
func (c *compiler) compileTex(in shaderir.Instruction) error {
	u := c.srcLane(in.Src[0], in.SrcSwiz[0], 0)
	v := c.srcLane(in.Src[0], in.SrcSwiz[0], 1)
	samplerIdx := in.Src[1].Index
	width := laneWidth(in)
	channels := [4]string{"r", "g", "b", "a"}
	for lane := 0; lane < width; lane++ {
		if in.DstMask&(1<<uint(lane)) == 0 {
			continue
		}
		sym := fmt.Sprintf("sample_texture_%d_%s", samplerIdx, channels[lane])
		c.write(in.Dst, lane, c.b.Call(reactor.Float32, sym, u, v), in.Dst.Width)
	}
	return nil
}
