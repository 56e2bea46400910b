// Package codegen builds the per-function control-flow graph and
// drives block emission, on top of the per-block register cache.
// Grounded in Program._to_llvm_function / Program._to_llvm_block in
// the original Python implementation for the worklist/post-condition
// logic; the register cache itself is a generalization the Python
// original does not have, since it always emits a fresh load.
package codegen

import (
	"fmt"
	"sort"

	"github.com/dcpu16-tools/dcpuir/pkg/asm"
	"github.com/dcpu16-tools/dcpuir/pkg/irout"
	"github.com/dcpu16-tools/dcpuir/pkg/link"
)

// emitFunction renders one function definition: prologue, block
// worklist, epilogue.
func emitFunction(w *irout.Writer, prog *link.Program, name string, entryIndex int) error {
	w.ResetFunction()
	w.WriteLine(fmt.Sprintf("define void @%s(%%struct.VMState* %%state) {", name))
	w.Indent()
	for i, reg := range asm.RegisterOrder {
		w.WriteLine(fmt.Sprintf("%%%s = getelementptr %%struct.VMState, %%struct.VMState* %%state, i32 0, i32 0, i32 %d", reg, i))
	}
	w.WriteLine("%memory = getelementptr %struct.VMState, %struct.VMState* %state, i32 0, i32 1, i32 0")

	e := &blockEmitter{w: w, cache: newRegisterCache()}

	rendered := make(map[int]bool)
	renderedLabels := make(map[string]bool)
	var pending []int
	if entryIndex < len(prog.Instructions) {
		pending = []int{entryIndex}
		if lbl := prog.Instructions[entryIndex].Label(); lbl != nil {
			renderedLabels[*lbl] = true
		}
	}

	for len(pending) > 0 {
		sort.Ints(pending)
		idx := pending[0]
		pending = pending[1:]
		if rendered[idx] {
			continue
		}

		successors, err := renderBlock(e, prog, idx, rendered)
		if err != nil {
			return fmt.Errorf("codegen: function %s: %w", name, err)
		}
		for _, lbl := range successors {
			if renderedLabels[lbl] {
				continue
			}
			renderedLabels[lbl] = true
			target, ok := prog.Labels[lbl]
			if !ok {
				// The linker does not verify that branch targets
				// exist. Emit a reference to the undefined label and
				// let the downstream assembler reject it, rather than
				// failing here.
				continue
			}
			pending = append(pending, target)
		}
	}

	w.WriteLine("")
	w.WriteLine("ret void")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// renderBlock walks instructions starting at index until the block
// terminates or falls through into a labelled instruction, mirroring
// Program._to_llvm_block. It returns every label the block
// discovered as a successor.
func renderBlock(e *blockEmitter, prog *link.Program, index int, rendered map[int]bool) ([]string, error) {
	e.cache.reset()

	var successors []string
	var postConditions []func()
	first := true

	for idx := index; idx < len(prog.Instructions); idx++ {
		instr := prog.Instructions[idx]
		if !first {
			if lbl := instr.Label(); lbl != nil {
				successors = append(successors, *lbl)
				break
			}
		}

		rendered[idx] = true
		e.w.WriteLine("")
		result, err := instr.Lower(e)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", instr.Lineno, err)
		}

		done := result.Terminates && len(postConditions) == 0

		if result.PostCondition == nil {
			for i := len(postConditions) - 1; i >= 0; i-- {
				postConditions[i]()
			}
			postConditions = nil
		} else {
			postConditions = append(postConditions, result.PostCondition)
		}

		if result.BranchTarget != "" {
			successors = append(successors, result.BranchTarget)
		}

		if done {
			break
		}
		first = false
	}

	return successors, nil
}
