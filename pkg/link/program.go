// Package link assigns program-counter values to a parsed instruction
// stream and builds the tables the code generator needs to carve
// functions out of it, generalizing the teacher's single-pass
// label-collection walk in pkg/asm.AssemblerAsync from "one flat
// label map" to "label map plus JSR-target function-entry set".
package link

import (
	"fmt"

	"github.com/dcpu16-tools/dcpuir/pkg/asm"
)

// EntryFunctionName is the name of the function starting at
// instruction 0, which the target ISA never reaches by label.
const EntryFunctionName = "runMachine"

// Program is a linked instruction stream: the instructions in source
// order, the label-to-index map, and the set of labels that are JSR
// targets.
type Program struct {
	Instructions []*asm.Instruction
	Labels       map[string]int
	FunctionSet  map[string]bool
}

// Link assigns each instruction's PC, builds the label map, and
// discovers every JSR target. Returns an error if two instructions
// claim the same label.
func Link(instructions []*asm.Instruction) (*Program, error) {
	p := &Program{
		Instructions: instructions,
		Labels:       make(map[string]int),
		FunctionSet:  make(map[string]bool),
	}

	var pc uint32
	for idx, instr := range instructions {
		instr.PC = pc
		pc += instr.Length()
		if lbl := instr.Label(); lbl != nil {
			if _, exists := p.Labels[*lbl]; exists {
				return nil, fmt.Errorf("link: duplicate label %q on line %d", *lbl, instr.Lineno)
			}
			p.Labels[*lbl] = idx
		}
	}

	for _, instr := range instructions {
		if instr.Op.Mnemonic() != "JSR" || len(instr.Args) != 1 {
			continue
		}
		if lbl, ok := instr.Args[0].(asm.LabelOperand); ok {
			p.FunctionSet[lbl.LabelName()] = true
		}
	}

	return p, nil
}

// FunctionNames returns runMachine followed by every JSR-targeted
// label, in a deterministic order (label map index ascending) so
// emission order is stable across runs.
func (p *Program) FunctionNames() []string {
	names := []string{EntryFunctionName}
	type entry struct {
		name string
		idx  int
	}
	var rest []entry
	for name := range p.FunctionSet {
		rest = append(rest, entry{name, p.Labels[name]})
	}
	for i := 0; i < len(rest); i++ {
		for j := i + 1; j < len(rest); j++ {
			if rest[j].idx < rest[i].idx {
				rest[i], rest[j] = rest[j], rest[i]
			}
		}
	}
	for _, e := range rest {
		names = append(names, e.name)
	}
	return names
}
