package api

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
	"github.com/sarchlab/pcodejit/verify"
)

// Unit is a compiled passage. It holds generated code, or, when the
// generator does not implement the passage, only the passage itself for the
// interpreter to run.
type Unit struct {
	Passage *pcode.Passage
	Key     Key

	// Code is nil for interpreted units.
	Code *emit.Listing
	// Reason tells why the unit is interpreted.
	Reason error

	machine  machine.Builder
	maxSteps int
}

// Interpreted tells if the unit runs on the interpreter.
func (u *Unit) Interpreted() bool {
	return u.Code == nil
}

// Run executes the unit against a memory.
func (u *Unit) Run(mem *machine.Memory) (machine.Exit, error) {
	if u.Interpreted() {
		return verify.NewFunctionalSimulator(u.Passage, mem).Run(u.maxSteps)
	}

	return machine.Run(u.Code, mem, u.machine)
}
