package codegen

import (
	"fmt"

	"github.com/dcpu16-tools/dcpuir/pkg/asm"
	"github.com/dcpu16-tools/dcpuir/pkg/irout"
)

// registerCache is the per-function "block out" abstraction: a
// load-once/store-before-leaving memoization layer over the 11
// register cells. It is reset at the start of every rendered block
// and after every JSR.
type registerCache struct {
	pointerName map[string]string
	isSSA       map[string]bool
	ssaValue    map[string]string
}

func newRegisterCache() *registerCache {
	c := &registerCache{
		pointerName: make(map[string]string, len(asm.RegisterOrder)),
		isSSA:       make(map[string]bool, len(asm.RegisterOrder)),
		ssaValue:    make(map[string]string, len(asm.RegisterOrder)),
	}
	for _, name := range asm.RegisterOrder {
		c.pointerName[name] = "%" + name
	}
	return c
}

// read returns the register's current SSA name, emitting a load on
// first use in the block.
func (c *registerCache) read(w *irout.Writer, name string) string {
	if !c.isSSA[name] {
		tmp := w.Temp()
		w.WriteLine(fmt.Sprintf("%s = load i16, i16* %s", tmp, c.pointerName[name]))
		c.isSSA[name] = true
		c.ssaValue[name] = tmp
	}
	return c.ssaValue[name]
}

// write records value as the register's current SSA name without
// emitting a store; the store is deferred to the next flush.
func (c *registerCache) write(name, value string) {
	c.isSSA[name] = true
	c.ssaValue[name] = value
}

// flush commits every materialized register to its cell. PC is
// skipped unless includePC is set (DBG is the only caller that needs
// the precise architectural PC).
func (c *registerCache) flush(w *irout.Writer, includePC bool) {
	for _, name := range asm.RegisterOrder {
		if name == "PC" && !includePC {
			continue
		}
		if c.isSSA[name] {
			w.WriteLine(fmt.Sprintf("store i16 %s, i16* %s", c.ssaValue[name], c.pointerName[name]))
		}
	}
}

// reset forgets all cached register state.
func (c *registerCache) reset() {
	for _, name := range asm.RegisterOrder {
		c.isSSA[name] = false
	}
}
