package asm

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestParseHelloSequence(t *testing.T) {
	instrs, err := Parse(strings.NewReader("SET A, 0x41\nOUT A\n"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(instrs) == 2, "want 2 instructions, got %d", len(instrs))
	assert(t, instrs[0].Op.Mnemonic() == "SET", "want SET, got %s", instrs[0].Op.Mnemonic())
	num, ok := instrs[0].Args[1].(Number)
	assert(t, ok, "want Number arg, got %T", instrs[0].Args[1])
	assert(t, num.Value == 0x41, "want 0x41, got 0x%x", num.Value)
	assert(t, instrs[1].Op.Mnemonic() == "OUT", "want OUT, got %s", instrs[1].Op.Mnemonic())
}

func TestParseLabelOnOwnLine(t *testing.T) {
	instrs, err := Parse(strings.NewReader(":sub\nSET A, 42\nSET PC, POP\n"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(instrs) == 2, "want 2 instructions, got %d", len(instrs))
	assert(t, instrs[0].Label() != nil && *instrs[0].Label() == "sub", "want label sub, got %v", instrs[0].Label())
	assert(t, instrs[1].Label() == nil, "second instruction should have no label")
	assert(t, instrs[1].IsReturn(), "SET PC, POP should be detected as a return")
}

func TestParseUnknownOpcode(t *testing.T) {
	_, err := Parse(strings.NewReader("FOO A, B\n"))
	assert(t, err != nil, "expected an error for an unknown opcode")
	assert(t, errors.Is(err, ErrUnknownOpcode), "expected ErrUnknownOpcode, got %v", err)
}

func TestParseBadArity(t *testing.T) {
	_, err := Parse(strings.NewReader("SET A\n"))
	assert(t, err != nil, "expected an error for wrong operand count")
	assert(t, errors.Is(err, ErrBadArity), "expected ErrBadArity, got %v", err)
}

func TestParseHexCaseInsensitive(t *testing.T) {
	instrs, err := Parse(strings.NewReader("SET A, 0xFF\nSET B, 0xff\n"))
	assert(t, err == nil, "unexpected error: %v", err)
	a := instrs[0].Args[1].(Number)
	b := instrs[1].Args[1].(Number)
	assert(t, a.Value == 0xff && b.Value == 0xff, "expected both literals to parse to 0xff, got %d and %d", a.Value, b.Value)
}

func TestParseDereferenceAdditionAndStack(t *testing.T) {
	instrs, err := Parse(strings.NewReader("SET A, [0x1000+B]\nSET PUSH, A\nSET A, POP\nSET A, PEEK\n"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(instrs) == 4, "want 4 instructions, got %d", len(instrs))

	deref, ok := instrs[0].Args[1].(Dereference)
	assert(t, ok, "want Dereference, got %T", instrs[0].Args[1])
	add, ok := deref.Argument.(Addition)
	assert(t, ok, "want Addition inside dereference, got %T", deref.Argument)
	assert(t, add.Number == 0x1000 && add.Register == "B", "want 0x1000+B, got 0x%x+%s", add.Number, add.Register)

	_, ok = instrs[1].Args[0].(Push)
	assert(t, ok, "want Push lvalue, got %T", instrs[1].Args[0])
	_, ok = instrs[2].Args[1].(Pop)
	assert(t, ok, "want Pop rvalue, got %T", instrs[2].Args[1])
	_, ok = instrs[3].Args[1].(Peek)
	assert(t, ok, "want Peek rvalue, got %T", instrs[3].Args[1])
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	instrs, err := Parse(strings.NewReader("; a comment\n\nSET A, 1 ; trailing comment\n"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(instrs) == 1, "want 1 instruction, got %d", len(instrs))
}

func TestInstructionLength(t *testing.T) {
	instrs, err := Parse(strings.NewReader("SET A, 0x1000+B\nOUT A\nDBG\n"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, instrs[0].Length() == 2, "SET A, N+B should be length 2, got %d", instrs[0].Length())
	assert(t, instrs[1].Length() == 0, "OUT is VM-only and should be length 0, got %d", instrs[1].Length())
	assert(t, instrs[2].Length() == 0, "DBG is VM-only and should be length 0, got %d", instrs[2].Length())
}
