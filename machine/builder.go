package machine

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new machines.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	stackDepth int
	maxSteps   int
	trace      bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		stackDepth: 64,
		maxSteps:   1 << 20,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the machine.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithStackDepth sets how many values the evaluation stack holds.
func (b Builder) WithStackDepth(depth int) Builder {
	if depth < 2 {
		panic("the evaluation stack must hold at least two values")
	}

	b.stackDepth = depth

	return b
}

// WithMaxSteps sets how many instructions run before the machine gives up.
// Zero means no limit.
func (b Builder) WithMaxSteps(n int) Builder {
	b.maxSteps = n
	return b
}

// WithTrace makes the machine log every instruction and dump its state on
// exit.
func (b Builder) WithTrace(on bool) Builder {
	b.trace = on
	return b
}

// Build creates a machine.
func (b Builder) Build(name string) *Machine {
	if b.engine == nil {
		panic("engine is not set")
	}

	m := &Machine{
		stackDepth: b.stackDepth,
		maxSteps:   b.maxSteps,
		trace:      b.trace,
	}
	m.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, m)

	return m
}
