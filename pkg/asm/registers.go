package asm

// RegisterOrder lists the 11 register names in the fixed offset order
// required by the ABI shared with the emitted runtime.
var RegisterOrder = [11]string{
	"A", "B", "C", "X", "Y", "Z", "I", "J", "SP", "PC", "O",
}

// RegisterOffset maps a register name to its fixed offset into the
// virtual CPU's register cell array.
var RegisterOffset = map[string]int{
	"A": 0, "B": 1, "C": 2, "X": 3, "Y": 4, "Z": 5,
	"I": 6, "J": 7, "SP": 8, "PC": 9, "O": 10,
}

// IsRegisterName reports whether name is one of the 11 register names.
func IsRegisterName(name string) bool {
	_, ok := RegisterOffset[name]
	return ok
}
