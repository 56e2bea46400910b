package link

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dcpu16-tools/dcpuir/pkg/asm"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestLinkPCMonotonicity(t *testing.T) {
	instrs, err := asm.Parse(strings.NewReader("SET A, 0x1000+B\nOUT A\nADD A, 1\nDBG\n"))
	assert(t, err == nil, "unexpected parse error: %v", err)
	prog, err := Link(instrs)
	assert(t, err == nil, "unexpected link error: %v", err)

	var pc uint32
	for _, instr := range prog.Instructions {
		assert(t, instr.PC == pc, "want pc %d, got %d", pc, instr.PC)
		pc += instr.Length()
	}
}

func TestLinkLabelUniqueness(t *testing.T) {
	instrs, err := asm.Parse(strings.NewReader(":loop\nADD A, 1\n:loop\nSUB A, 1\n"))
	assert(t, err == nil, "unexpected parse error: %v", err)
	_, err = Link(instrs)
	assert(t, err != nil, "expected a duplicate-label error")
}

func TestLinkFunctionSetClosure(t *testing.T) {
	instrs, err := asm.Parse(strings.NewReader(
		"SET A, 1\nJSR sub\nOUT A\nSET PC, POP\n:sub\nSET A, 42\nSET PC, POP\n"))
	assert(t, err == nil, "unexpected parse error: %v", err)
	prog, err := Link(instrs)
	assert(t, err == nil, "unexpected link error: %v", err)

	assert(t, len(prog.FunctionSet) == 1 && prog.FunctionSet["sub"], "want function set {sub}, got %v", prog.FunctionSet)
	names := prog.FunctionNames()
	assert(t, len(names) == 2 && names[0] == EntryFunctionName && names[1] == "sub",
		"want [runMachine sub], got %v", names)
}
