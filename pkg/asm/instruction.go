package asm

import "fmt"

// Instruction is a parsed line: an optional entry label, an opcode,
// its ordered operands, the source line it came from, and the
// program-counter value the linker later assigns it. Unlike the
// teacher's per-opcode Instruction types, one struct suffices here
// because the opcode itself (not the instruction shape) is what
// varies per mnemonic.
type Instruction struct {
	Lineno     int
	MaybeLabel *string
	Op         Opcode
	Args       []Operand
	PC         uint32
}

// Label returns the instruction's entry label, or nil if it has none.
func (i *Instruction) Label() *string {
	return i.MaybeLabel
}

// Length is the instruction's length in target-ISA words: 1 plus the
// extra length contributed by each operand, except that VM-only
// opcodes (DBG, OUT) contribute 0.
func (i *Instruction) Length() uint32 {
	if i.Op.Mnemonic() == "DBG" || i.Op.Mnemonic() == "OUT" {
		return 0
	}
	var n uint32 = 1
	for _, a := range i.Args {
		n += uint32(a.ExtraLength())
	}
	return n
}

// IsUnconditionalBranch reports whether this instruction is
// "SET PC, <label>" with an ordinary label target (not POP) — the
// unconditional intra-function branch form of SET.
func (i *Instruction) IsUnconditionalBranch() (label string, ok bool) {
	if i.Op.Mnemonic() != "SET" || len(i.Args) != 2 {
		return "", false
	}
	reg, isReg := i.Args[0].(Register)
	if !isReg || reg.Name != "PC" {
		return "", false
	}
	lbl, isLabel := i.Args[1].(Label)
	if !isLabel {
		return "", false
	}
	return lbl.Name, true
}

// IsReturn reports whether this instruction is "SET PC, POP", the
// function-return form.
func (i *Instruction) IsReturn() bool {
	if i.Op.Mnemonic() != "SET" || len(i.Args) != 2 {
		return false
	}
	reg, isReg := i.Args[0].(Register)
	if !isReg || reg.Name != "PC" {
		return false
	}
	_, isPop := i.Args[1].(Pop)
	return isPop
}

// Disassemble renders the instruction back to assembly text, used to
// build the comment line the IR sink prefixes to every lowered
// instruction.
func (i *Instruction) Disassemble() string {
	s := i.Op.Mnemonic()
	for n, a := range i.Args {
		if n == 0 {
			s += " " + a.Disassemble()
		} else {
			s += ", " + a.Disassemble()
		}
	}
	return s
}

// Lower emits this instruction's IR, including the implicit PC write
// every instruction carries, then special-cases the two
// indirect-branch forms of SET before falling back to the opcode
// catalog for everything else.
func (i *Instruction) Lower(e Emitter) (LowerResult, error) {
	e.WriteLine(fmt.Sprintf("; %s", i.Disassemble()))
	if i.MaybeLabel != nil {
		// Every instruction that carries a label opens that label's
		// block here, regardless of whether this is the first
		// instruction rendered for it: the worklist may render blocks
		// out of source order, so a predecessor's "br label %x" needs
		// %x's definition to come from x's own rendering, not from
		// whichever block branches to it first.
		e.BranchTo(*i.MaybeLabel)
		e.OpenLabel(*i.MaybeLabel)
	}
	e.WriteRegister("PC", fmt.Sprintf("%d", i.PC))

	if label, ok := i.IsUnconditionalBranch(); ok {
		e.FlushRegisters(false)
		e.BranchTo(label)
		return LowerResult{Terminates: true, BranchTarget: label}, nil
	}
	if i.IsReturn() {
		e.FlushRegisters(false)
		e.WriteLine("ret void")
		return LowerResult{Terminates: true}, nil
	}
	return i.Op.Lower(e, i.Args)
}
