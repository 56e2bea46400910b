package codegen

import (
	"fmt"
	"io"

	"github.com/dcpu16-tools/dcpuir/pkg/asm"
	"github.com/dcpu16-tools/dcpuir/pkg/irout"
	"github.com/dcpu16-tools/dcpuir/pkg/link"
)

// Generate emits the full IR program for a linked instruction stream:
// the state type, the three runtime declarations, and one function
// per entry in prog.FunctionNames().
func Generate(prog *link.Program, w io.Writer) error {
	out := irout.New(w)
	out.WriteLine("%struct.VMState = type { [11 x i16], [65536 x i16] }")
	out.WriteLine("declare void @output(i16)")
	out.WriteLine("declare void @debug(%struct.VMState* nocapture)")
	out.WriteLine("declare void @memory_referenced(%struct.VMState* nocapture, i16)")

	for _, name := range prog.FunctionNames() {
		idx := 0
		if name != link.EntryFunctionName {
			idx = prog.Labels[name]
		}
		out.WriteLine("")
		if err := emitFunction(out, prog, name, idx); err != nil {
			return err
		}
	}
	return nil
}

// Translate runs the full pipeline: parse assembly text from r, link
// it, and write the emitted IR to w.
func Translate(r io.Reader, w io.Writer) error {
	instructions, err := asm.Parse(r)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	prog, err := link.Link(instructions)
	if err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if err := Generate(prog, w); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	return nil
}
