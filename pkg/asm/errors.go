package asm

import "errors"

// The following errors may be returned while parsing or lowering
// a target-ISA assembly program.
var (
	// ErrMalformedLine indicates that a line of input did not match
	// the assembly grammar.
	ErrMalformedLine = errors.New("asm: malformed line")

	// ErrUnknownOpcode indicates that a line names an opcode that is
	// not part of the catalog.
	ErrUnknownOpcode = errors.New("asm: unknown opcode")

	// ErrBadArity indicates that an instruction was parsed with the
	// wrong number of operands for its opcode.
	ErrBadArity = errors.New("asm: wrong operand count")

	// ErrUnterminatedToken indicates that a bracketed or quoted token
	// was never closed before end of line.
	ErrUnterminatedToken = errors.New("asm: unterminated token")

	// ErrNoLvalue indicates that an operand without a store form was
	// used where the catalog requires one.
	ErrNoLvalue = errors.New("asm: operand has no lvalue form")

	// ErrNoRvalue indicates that an operand without a load form was
	// used where the catalog requires one.
	ErrNoRvalue = errors.New("asm: operand has no rvalue form")
)
