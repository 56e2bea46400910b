package asm

// Emitter is the capability an Operand or Opcode needs from the code
// generator in order to lower itself to IR text. Implementations live
// in pkg/codegen, which owns the register cache and the IR sink; this
// package only depends on the interface, not the concrete block
// emitter, mirroring how the teacher's Instruction.Encode depends only
// on the label map it is handed, not on the assembler that built it.
type Emitter interface {
	// Temp returns a fresh SSA temporary name, e.g. "%tmp3".
	Temp() string

	// NewLabel returns a fresh internal label name, e.g. "label3". The
	// label is not opened; call OpenLabel to place it.
	NewLabel() string

	// WriteLine emits one already-formatted line of IR body text.
	WriteLine(line string)

	// BranchTo emits an unconditional branch to label.
	BranchTo(label string)

	// OpenLabel emits the "<label>:" block-opening form.
	OpenLabel(label string)

	// ReadRegister returns the SSA name currently holding register
	// name's value, loading it from its cell on first use in the block.
	ReadRegister(name string) string

	// WriteRegister records that register name now holds value. The
	// store to the register's cell is deferred to the next flush.
	WriteRegister(name, value string)

	// LoadMemory emits a load of memory at the given address (an SSA
	// name or literal) and returns the loaded SSA name. Fires the
	// memory-referenced callback.
	LoadMemory(addr string) string

	// StoreMemory emits a store of value at address, then fires the
	// memory-referenced callback.
	StoreMemory(addr, value string)

	// FlushRegisters commits every register the cache currently holds
	// as an SSA value (whether loaded or written) to its cell.
	// includePC additionally commits PC, which ordinary flushes skip.
	FlushRegisters(includePC bool)

	// ResetRegisters forgets all cached register state, as required at
	// block entry and after a JSR.
	ResetRegisters()

	// CallFunction emits a call to the named function, passing the
	// state pointer.
	CallFunction(name string)

	// Output emits a call to the output runtime hook.
	Output(value string)

	// Debug emits a call to the debug runtime hook.
	Debug()
}

// LowerResult communicates the control-flow consequences of lowering
// one instruction back to the block emitter.
type LowerResult struct {
	// Terminates is true when the instruction ends its basic block
	// (an unconditional branch or a return). A fallthrough into a
	// labelled instruction is detected by the block emitter, not here.
	Terminates bool

	// BranchTarget is the label the block unconditionally transfers
	// control to, set only for "SET PC, <label>" forms.
	BranchTarget string

	// PostCondition is non-nil for a conditional skip (IFE/IFN/IFG/IFB):
	// invoking it closes the skip arm after the guarded instruction
	// that follows has been emitted.
	PostCondition func()
}
