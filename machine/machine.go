// Package machine executes generated code. It plays the host: a stack machine
// that runs one instruction per cycle as an akita ticking component.
package machine

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/util"
)

// ErrStepLimit is the fault of a machine that ran out of steps.
var ErrStepLimit = errors.New("step limit reached")

// Exit describes how generated code was left.
type Exit struct {
	// Target is the guest address execution continues at.
	Target uint64
	// Indirect tells if Target was computed at run time.
	Indirect bool

	// Trap is the message of a TRAP instruction that was reached.
	Trap string
	// Fault is the runtime fault that stopped execution, such as a division
	// by zero.
	Fault error

	// Steps is the number of instructions run.
	Steps int
}

// Trapped tells if execution stopped on a trap or a fault instead of leaving
// for a guest address.
func (e Exit) Trapped() bool {
	return e.Trap != "" || e.Fault != nil
}

func (e Exit) String() string {
	switch {
	case e.Fault != nil:
		return fmt.Sprintf("fault after %d steps: %v", e.Steps, e.Fault)
	case e.Trap != "":
		return fmt.Sprintf("trap after %d steps: %s", e.Steps, e.Trap)
	case e.Indirect:
		return fmt.Sprintf("exit to computed %#x after %d steps", e.Target, e.Steps)
	default:
		return fmt.Sprintf("exit to %#x after %d steps", e.Target, e.Steps)
	}
}

// machineState is everything an instruction can read or change.
type machineState struct {
	PC    int
	Stack []uint64
	Mem   *Memory

	code   *emit.Listing
	exit   *Exit
	halted bool
}

// Machine runs a listing against a memory.
type Machine struct {
	*sim.TickingComponent

	stackDepth int
	maxSteps   int
	trace      bool

	state machineState
	steps int
	emu   instEmulator
}

// Load sets the code and memory of the next run and resets the machine.
func (m *Machine) Load(code *emit.Listing, mem *Memory) {
	if err := code.Validate(); err != nil {
		panic(fmt.Sprintf("cannot load listing: %v", err))
	}

	m.state = machineState{
		Stack: make([]uint64, 0, m.stackDepth),
		Mem:   mem,
		code:  code,
	}
	m.steps = 0
}

// Start schedules the first cycle.
func (m *Machine) Start() {
	m.TickNow()
}

// Halted tells if the machine stopped.
func (m *Machine) Halted() bool {
	return m.state.halted
}

// Exit returns how the last run ended. It is only meaningful once the machine
// halted.
func (m *Machine) Exit() Exit {
	if m.state.exit == nil {
		return Exit{Steps: m.steps}
	}

	e := *m.state.exit
	e.Steps = m.steps

	return e
}

// Tick runs one instruction.
func (m *Machine) Tick() (madeProgress bool) {
	if m.state.halted || m.state.code == nil {
		return false
	}

	if m.maxSteps > 0 && m.steps >= m.maxSteps {
		m.fault(ErrStepLimit)
		return false
	}

	if m.state.PC < 0 || m.state.PC >= m.state.code.Len() {
		m.fault(fmt.Errorf("control left the listing at %d", m.state.PC))
		return false
	}

	inst := m.state.code.Insts()[m.state.PC]
	if m.trace {
		util.Trace("Inst",
			"Time", float64(m.Engine.CurrentTime()*1e9),
			"PC", m.state.PC,
			"Inst", inst.String(),
			"Depth", len(m.state.Stack),
		)
	}

	m.steps++
	if err := m.emu.RunInst(inst, &m.state, m.stackDepth); err != nil {
		m.fault(err)
		return false
	}

	if m.state.halted && m.trace {
		m.PrintState()
	}

	return !m.state.halted
}

func (m *Machine) fault(err error) {
	m.state.exit = &Exit{Fault: err}
	m.state.halted = true

	if m.trace {
		m.PrintState()
	}
}

// Run executes a listing on a fresh serial engine until it exits.
func Run(code *emit.Listing, mem *Memory, b Builder) (Exit, error) {
	engine := sim.NewSerialEngine()
	m := b.WithEngine(engine).Build("Machine")

	m.Load(code, mem)
	m.Start()

	if err := engine.Run(); err != nil {
		return Exit{}, err
	}

	if !m.Halted() {
		return Exit{}, fmt.Errorf("machine stopped without halting at %d", m.state.PC)
	}

	return m.Exit(), nil
}
