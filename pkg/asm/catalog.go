package asm

import "fmt"

// arityErr is a helper constructor used by every opcode's Lower to
// report a malformed argument count, mirroring the teacher's
// "validate, then wrap a sentinel" style.
func arityErr(mnemonic string, want, got int) error {
	return fmt.Errorf("%w: %s wants %d operand(s), got %d", ErrBadArity, mnemonic, want, got)
}

// setOpcode implements SET, including its two indirect-branch forms
// ("SET PC, <label>" and "SET PC, POP"), which are special-cased by
// Instruction.Lower rather than here: it recognizes and handles those
// forms before falling back to the catalog, so this Lower only ever
// sees the ordinary data-movement case.
type setOpcode struct{}

func (setOpcode) Mnemonic() string { return "SET" }
func (setOpcode) Arity() int       { return 2 }

func (o setOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(o.Mnemonic(), 2, len(args))
	}
	dst, err := lvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	src, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	dst.ToLvalueStore(e, src.ToRvalue(e))
	return LowerResult{}, nil
}

// bitwiseOpcode implements AND, OR, XOR: a plain 16-bit bitwise op of
// rvalues stored into a, with no overflow capture.
type bitwiseOpcode struct {
	mnemonic string
	llvmOp   string
}

func (b bitwiseOpcode) Mnemonic() string { return b.mnemonic }
func (bitwiseOpcode) Arity() int         { return 2 }

func (b bitwiseOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(b.mnemonic, 2, len(args))
	}
	dst, err := lvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	bb := bv.ToRvalue(e)
	tmp := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = %s i16 %s, %s", tmp, b.llvmOp, a, bb))
	dst.ToLvalueStore(e, tmp)
	return LowerResult{}, nil
}

// widenOpcode implements ADD, SUB, MUL, SHL: widen both operands to
// 32 bits, perform the 32-bit op, truncate the low 16 bits into a,
// and take bits [31:16] as the new value of O.
type widenOpcode struct {
	mnemonic string
	llvmOp   string
}

func (w widenOpcode) Mnemonic() string { return w.mnemonic }
func (widenOpcode) Arity() int         { return 2 }

func (w widenOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(w.mnemonic, 2, len(args))
	}
	dst, err := lvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	b := bv.ToRvalue(e)

	wa := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = zext i16 %s to i32", wa, a))
	wb := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = zext i16 %s to i32", wb, b))
	wide := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = %s i32 %s, %s", wide, w.llvmOp, wa, wb))

	lo := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = trunc i32 %s to i16", lo, wide))
	dst.ToLvalueStore(e, lo)

	hiWide := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = lshr i32 %s, 16", hiWide, wide))
	hi := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = trunc i32 %s to i16", hi, hiWide))
	e.WriteRegister("O", hi)
	return LowerResult{}, nil
}

// shrOpcode implements SHR: left-shift the dividend by 16, right-shift
// the 32-bit value by b, truncate the high half of the result to a,
// and place the low 16 bits into O (the bits shifted out).
type shrOpcode struct{}

func (shrOpcode) Mnemonic() string { return "SHR" }
func (shrOpcode) Arity() int       { return 2 }

func (o shrOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(o.Mnemonic(), 2, len(args))
	}
	dst, err := lvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	b := bv.ToRvalue(e)

	wa := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = zext i16 %s to i32", wa, a))
	shifted := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = shl i32 %s, 16", shifted, wa))
	wb := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = zext i16 %s to i32", wb, b))
	narrowed := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = lshr i32 %s, %s", narrowed, shifted, wb))

	hiWide := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = lshr i32 %s, 16", hiWide, narrowed))
	hi := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = trunc i32 %s to i16", hi, hiWide))
	dst.ToLvalueStore(e, hi)

	lo := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = trunc i32 %s to i16", lo, narrowed))
	e.WriteRegister("O", lo)
	return LowerResult{}, nil
}

// zeroGuardDivMod emits the shared "if divisor is zero, destination
// and O are both zero" diamond required by DIV and MOD, invoking
// compute to materialize the (dest, overflow) pair on the nonzero
// path.
func zeroGuardDivMod(e Emitter, dst LvalueOperand, a, b string,
	compute func() (dest, overflow string)) (LowerResult, error) {
	cond := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = icmp eq i16 %s, 0", cond, b))
	zeroLabel := e.NewLabel()
	nonzeroLabel := e.NewLabel()
	mergeLabel := e.NewLabel()
	e.WriteLine(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, zeroLabel, nonzeroLabel))

	e.OpenLabel(zeroLabel)
	e.BranchTo(mergeLabel)

	e.OpenLabel(nonzeroLabel)
	dest, overflow := compute()
	e.BranchTo(mergeLabel)

	e.OpenLabel(mergeLabel)
	destPhi := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = phi i16 [ 0, %%%s ], [ %s, %%%s ]", destPhi, zeroLabel, dest, nonzeroLabel))
	overflowPhi := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = phi i16 [ 0, %%%s ], [ %s, %%%s ]", overflowPhi, zeroLabel, overflow, nonzeroLabel))
	dst.ToLvalueStore(e, destPhi)
	e.WriteRegister("O", overflowPhi)
	return LowerResult{}, nil
}

// divOpcode implements DIV: quotient into a, Q16 fractional remainder
// of (a<<16)/b into O.
type divOpcode struct{}

func (divOpcode) Mnemonic() string { return "DIV" }
func (divOpcode) Arity() int       { return 2 }

func (o divOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(o.Mnemonic(), 2, len(args))
	}
	dst, err := lvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	b := bv.ToRvalue(e)
	return zeroGuardDivMod(e, dst, a, b, func() (string, string) {
		wa := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = zext i16 %s to i32", wa, a))
		widened := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = shl i32 %s, 16", widened, wa))
		wb := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = zext i16 %s to i32", wb, b))
		quotient := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = udiv i32 %s, %s", quotient, widened, wb))

		hiWide := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = lshr i32 %s, 16", hiWide, quotient))
		hi := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = trunc i32 %s to i16", hi, hiWide))
		lo := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = trunc i32 %s to i16", lo, quotient))
		return hi, lo
	})
}

// modOpcode implements MOD: a urem b into the destination, O always 0.
type modOpcode struct{}

func (modOpcode) Mnemonic() string { return "MOD" }
func (modOpcode) Arity() int       { return 2 }

func (o modOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(o.Mnemonic(), 2, len(args))
	}
	dst, err := lvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	b := bv.ToRvalue(e)
	return zeroGuardDivMod(e, dst, a, b, func() (string, string) {
		rem := e.Temp()
		e.WriteLine(fmt.Sprintf("%s = urem i16 %s, %s", rem, a, b))
		return rem, "0"
	})
}

// condOpcode implements IFE, IFN, IFG: evaluate a two-operand icmp
// comparison and emit the conditional-skip diamond.
type condOpcode struct {
	mnemonic string
	cmp      string
}

func (c condOpcode) Mnemonic() string { return c.mnemonic }
func (condOpcode) Arity() int         { return 2 }

func (c condOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(c.mnemonic, 2, len(args))
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	b := bv.ToRvalue(e)
	cond := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = icmp %s i16 %s, %s", cond, c.cmp, a, b))
	return emitSkipDiamond(e, cond), nil
}

// ifbOpcode implements IFB: (a & b) != 0, otherwise identical to the
// other conditionals.
type ifbOpcode struct{}

func (ifbOpcode) Mnemonic() string { return "IFB" }
func (ifbOpcode) Arity() int       { return 2 }

func (o ifbOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 2 {
		return LowerResult{}, arityErr(o.Mnemonic(), 2, len(args))
	}
	av, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	bv, err := rvalueOf(args[1])
	if err != nil {
		return LowerResult{}, err
	}
	a := av.ToRvalue(e)
	b := bv.ToRvalue(e)
	anded := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = and i16 %s, %s", anded, a, b))
	cond := e.Temp()
	e.WriteLine(fmt.Sprintf("%s = icmp ne i16 %s, 0", cond, anded))
	return emitSkipDiamond(e, cond), nil
}

// emitSkipDiamond is the shared conditional-skip shape used by every
// IFx opcode: branch into the skip arm when cond holds, else branch
// straight to the continuation; the returned PostCondition closes the
// skip arm once the guarded next instruction has been emitted.
//
// The skip arm and the continuation are different basic blocks, so
// any register the guarded instruction writes is only valid in the
// skip arm: the cache is flushed to memory on both sides of the
// diamond and reset at the continuation so a register written inside
// the guarded instruction, or left alone on the path that skips it,
// is reloaded from its cell rather than read as a value the merge
// point does not dominate.
func emitSkipDiamond(e Emitter, cond string) LowerResult {
	enter := e.NewLabel()
	continuation := e.NewLabel()
	e.FlushRegisters(false)
	e.WriteLine(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, enter, continuation))
	e.OpenLabel(enter)
	return LowerResult{
		PostCondition: func() {
			e.FlushRegisters(false)
			e.BranchTo(continuation)
			e.OpenLabel(continuation)
			e.ResetRegisters()
		},
	}
}

// jsrOpcode implements JSR: flush, call, reset. The call does not
// terminate the block: control returns to the next instruction.
type jsrOpcode struct{}

func (jsrOpcode) Mnemonic() string { return "JSR" }
func (jsrOpcode) Arity() int       { return 1 }

func (o jsrOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 1 {
		return LowerResult{}, arityErr(o.Mnemonic(), 1, len(args))
	}
	lbl, ok := args[0].(LabelOperand)
	if !ok {
		return LowerResult{}, fmt.Errorf("%w: JSR target %s is not a label", ErrNoLvalue, args[0].Disassemble())
	}
	e.FlushRegisters(false)
	e.CallFunction(lbl.LabelName())
	e.ResetRegisters()
	return LowerResult{}, nil
}

// outOpcode implements OUT: call the output runtime hook.
type outOpcode struct{}

func (outOpcode) Mnemonic() string { return "OUT" }
func (outOpcode) Arity() int       { return 1 }

func (o outOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 1 {
		return LowerResult{}, arityErr(o.Mnemonic(), 1, len(args))
	}
	rv, err := rvalueOf(args[0])
	if err != nil {
		return LowerResult{}, err
	}
	e.Output(rv.ToRvalue(e))
	return LowerResult{}, nil
}

// dbgOpcode implements DBG: flush all cached registers including PC,
// then call the debug runtime hook.
type dbgOpcode struct{}

func (dbgOpcode) Mnemonic() string { return "DBG" }
func (dbgOpcode) Arity() int       { return 0 }

func (o dbgOpcode) Lower(e Emitter, args []Operand) (LowerResult, error) {
	if len(args) != 0 {
		return LowerResult{}, arityErr(o.Mnemonic(), 0, len(args))
	}
	e.FlushRegisters(true)
	e.Debug()
	return LowerResult{}, nil
}
