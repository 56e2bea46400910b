package codegen

import (
	"fmt"

	"github.com/dcpu16-tools/dcpuir/pkg/asm"
	"github.com/dcpu16-tools/dcpuir/pkg/irout"
)

// blockEmitter implements asm.Emitter on top of an irout.Writer and a
// per-function registerCache. One blockEmitter is reused across every
// block of a single function so the temp/label counters and register
// cache identity persist correctly across the block worklist.
type blockEmitter struct {
	w     *irout.Writer
	cache *registerCache
}

func (e *blockEmitter) Temp() string     { return e.w.Temp() }
func (e *blockEmitter) NewLabel() string { return e.w.Label() }

func (e *blockEmitter) WriteLine(line string) { e.w.WriteLine(line) }

func (e *blockEmitter) BranchTo(label string) {
	e.w.WriteLine(fmt.Sprintf("br label %%%s", label))
}

func (e *blockEmitter) OpenLabel(label string) {
	e.w.WriteLine(label + ":")
}

func (e *blockEmitter) ReadRegister(name string) string {
	return e.cache.read(e.w, name)
}

func (e *blockEmitter) WriteRegister(name, value string) {
	e.cache.write(name, value)
}

func (e *blockEmitter) LoadMemory(addr string) string {
	gep := e.w.Temp()
	e.w.WriteLine(fmt.Sprintf("%s = getelementptr i16, i16* %%memory, i16 %s", gep, addr))
	val := e.w.Temp()
	e.w.WriteLine(fmt.Sprintf("%s = load i16, i16* %s", val, gep))
	e.w.WriteLine(fmt.Sprintf("call void @memory_referenced(%%struct.VMState* %%state, i16 %s)", addr))
	return val
}

func (e *blockEmitter) StoreMemory(addr, value string) {
	gep := e.w.Temp()
	e.w.WriteLine(fmt.Sprintf("%s = getelementptr i16, i16* %%memory, i16 %s", gep, addr))
	e.w.WriteLine(fmt.Sprintf("store i16 %s, i16* %s", value, gep))
	e.w.WriteLine(fmt.Sprintf("call void @memory_referenced(%%struct.VMState* %%state, i16 %s)", addr))
}

func (e *blockEmitter) FlushRegisters(includePC bool) {
	e.cache.flush(e.w, includePC)
}

func (e *blockEmitter) ResetRegisters() {
	e.cache.reset()
}

func (e *blockEmitter) CallFunction(name string) {
	e.w.WriteLine(fmt.Sprintf("call void @%s(%%struct.VMState* %%state)", name))
}

func (e *blockEmitter) Output(value string) {
	e.w.WriteLine(fmt.Sprintf("call void @output(i16 %s)", value))
}

func (e *blockEmitter) Debug() {
	e.w.WriteLine("call void @debug(%struct.VMState* %state)")
}

var _ asm.Emitter = (*blockEmitter)(nil)
