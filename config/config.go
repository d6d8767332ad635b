// Package config reads the JIT configuration from the environment and sets up
// logging.
package config

import (
	"io"
	"log/slog"

	"github.com/xyproto/env/v2"

	"github.com/sarchlab/pcodejit/util"
)

// The environment variables FromEnv reads.
const (
	EnvTrace    = "PJIT_TRACE"
	EnvCache    = "PJIT_CACHE"
	EnvFallback = "PJIT_FALLBACK"
	EnvLint     = "PJIT_LINT"
	EnvMaxSteps = "PJIT_MAX_STEPS"
)

// Config controls how passages are compiled and run.
type Config struct {
	// Trace logs generation and execution at util.LevelTrace.
	Trace bool
	// Cache keeps compiled units of identical passages.
	Cache bool
	// Fallback runs passages the generator does not implement on the
	// interpreter.
	Fallback bool
	// Lint checks passages before generation.
	Lint bool
	// MaxSteps bounds every run. Zero means no limit.
	MaxSteps int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Cache:    true,
		Lint:     true,
		MaxSteps: 1 << 20,
	}
}

// FromEnv returns the default configuration overridden by the environment.
func FromEnv() Config {
	c := Default()

	c.Trace = boolFromEnv(EnvTrace, c.Trace)
	c.Cache = boolFromEnv(EnvCache, c.Cache)
	c.Fallback = boolFromEnv(EnvFallback, c.Fallback)
	c.Lint = boolFromEnv(EnvLint, c.Lint)
	c.MaxSteps = env.Int(EnvMaxSteps, c.MaxSteps)

	if c.MaxSteps < 0 {
		c.MaxSteps = 0
	}

	return c
}

func boolFromEnv(name string, def bool) bool {
	if !env.Has(name) {
		return def
	}

	return env.Bool(name)
}

// InstallLogger makes a JSON logger writing to w the default logger. Trace
// records are only kept when c.Trace is set.
func InstallLogger(w io.Writer, c Config) *slog.Logger {
	level := slog.LevelWarn
	if c.Trace {
		level = util.LevelTrace
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
