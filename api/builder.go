package api

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pcodejit/config"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/machine"
)

// CompilerBuilder creates a new instance of Compiler.
type CompilerBuilder struct {
	model    gen.TypeModel
	lint     bool
	cache    bool
	fallback bool
	trace    bool
	maxSteps int
	hooks    []sim.Hook
}

// MakeCompilerBuilder creates a builder with default parameters: lint and
// cache on, no interpreter fallback, varnodes typed by size.
func MakeCompilerBuilder() CompilerBuilder {
	return CompilerBuilder{
		lint:     true,
		cache:    true,
		maxSteps: 1 << 20,
	}
}

// WithConfig applies a configuration read from the environment.
func (b CompilerBuilder) WithConfig(c config.Config) CompilerBuilder {
	b.lint = c.Lint
	b.cache = c.Cache
	b.fallback = c.Fallback
	b.trace = c.Trace
	b.maxSteps = c.MaxSteps

	return b
}

// WithTypeModel sets how varnodes are typed.
func (b CompilerBuilder) WithTypeModel(model gen.TypeModel) CompilerBuilder {
	b.model = model
	return b
}

// WithLint sets whether passages are linted before generation.
func (b CompilerBuilder) WithLint(on bool) CompilerBuilder {
	b.lint = on
	return b
}

// WithCache sets whether compiled units are kept for identical passages.
func (b CompilerBuilder) WithCache(on bool) CompilerBuilder {
	b.cache = on
	return b
}

// WithFallback sets whether passages the generator does not implement are
// handed to the interpreter instead of failing.
func (b CompilerBuilder) WithFallback(on bool) CompilerBuilder {
	b.fallback = on
	return b
}

// WithTrace sets whether generation and execution are traced.
func (b CompilerBuilder) WithTrace(on bool) CompilerBuilder {
	b.trace = on
	return b
}

// WithMaxSteps limits how many steps a unit runs. Zero means no limit.
func (b CompilerBuilder) WithMaxSteps(n int) CompilerBuilder {
	b.maxSteps = n
	return b
}

// WithHook attaches a hook to the code generator.
func (b CompilerBuilder) WithHook(h sim.Hook) CompilerBuilder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

// Build creates a compiler.
func (b CompilerBuilder) Build() Compiler {
	driver := gen.NewDriver(b.model)
	driver.SetTrace(b.trace)

	for _, h := range b.hooks {
		driver.AcceptHook(h)
	}

	c := &compilerImpl{
		driver:   driver,
		lint:     b.lint,
		fallback: b.fallback,
		trace:    b.trace,
		maxSteps: b.maxSteps,
		machine: machine.MakeBuilder().
			WithMaxSteps(b.maxSteps).
			WithTrace(b.trace),
	}

	if b.cache {
		c.cache = make(map[Key]*Unit)
	}

	return c
}
