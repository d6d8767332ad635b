// Package api is the entry point of the JIT: it compiles passages into units
// and runs them.
package api

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
	"github.com/sarchlab/pcodejit/util"
	"github.com/sarchlab/pcodejit/verify"
)

// Compiler turns passages into runnable units.
type Compiler interface {
	// Compile compiles one passage.
	Compile(p *pcode.Passage) (*Unit, error)

	// CompileAll compiles independent passages concurrently. Units are
	// returned in the order of the passages.
	CompileAll(ctx context.Context, ps []*pcode.Passage) ([]*Unit, error)

	// CacheLen returns the number of cached units.
	CacheLen() int
}

// Key identifies a passage in the translation cache.
type Key [blake2b.Size256]byte

func (k Key) String() string {
	return hex.EncodeToString(k[:8])
}

// KeyOf returns the cache key of a passage.
func KeyOf(p *pcode.Passage) Key {
	return blake2b.Sum256([]byte(p.String()))
}

// LintError reports a passage rejected before generation.
type LintError struct {
	Issues []verify.Issue
}

func (e *LintError) Error() string {
	first := e.Issues[0]

	return fmt.Sprintf("passage rejected with %d lint issues, first: [%s] block %d op %d: %s",
		len(e.Issues), first.Type, first.Block, first.OpID, first.Message)
}

type compilerImpl struct {
	driver   *gen.Driver
	lint     bool
	fallback bool
	trace    bool
	maxSteps int
	machine  machine.Builder

	mu    sync.Mutex
	cache map[Key]*Unit
}

func (c *compilerImpl) Compile(p *pcode.Passage) (*Unit, error) {
	key := KeyOf(p)

	if u, ok := c.lookup(key); ok {
		if c.trace {
			util.Trace("Cache Hit", "Key", key.String(), "Entry", p.Entry)
		}
		return u, nil
	}

	u, err := c.compile(p, key)
	if err != nil {
		return nil, err
	}

	return c.store(u), nil
}

func (c *compilerImpl) lookup(key Key) (*Unit, bool) {
	if c.cache == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.cache[key]

	return u, ok
}

// store caches u unless another goroutine cached the same passage first, in
// which case the earlier unit wins.
func (c *compilerImpl) store(u *Unit) *Unit {
	if c.cache == nil {
		return u
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.cache[u.Key]; ok {
		return prev
	}
	c.cache[u.Key] = u

	return u
}

func (c *compilerImpl) compile(p *pcode.Passage, key Key) (*Unit, error) {
	if c.lint {
		if issues := verify.RunLint(p); len(issues) > 0 {
			return nil, &LintError{Issues: issues}
		}
	}

	u := &Unit{
		Passage:  p,
		Key:      key,
		machine:  c.machine,
		maxSteps: c.maxSteps,
	}

	code := emit.NewListing()
	err := c.driver.Generate(p, code)

	var ue *gen.UnimplementedError
	switch {
	case err == nil:
		u.Code = code
	case errors.As(err, &ue) && c.fallback:
		u.Reason = ue
		if c.trace {
			util.Trace("Interpreter Fallback", "Key", key.String(), "Reason", ue.Error())
		}
	default:
		return nil, err
	}

	return u, nil
}

func (c *compilerImpl) CompileAll(
	ctx context.Context,
	ps []*pcode.Passage,
) ([]*Unit, error) {
	units := make([]*Unit, len(ps))

	var (
		panicOnce sync.Once
		panicked  any
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range ps {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
					err = fmt.Errorf("generation of passage %d panicked", i)
				}
			}()

			if err := ctx.Err(); err != nil {
				return err
			}

			u, err := c.Compile(p)
			if err != nil {
				return fmt.Errorf("passage %d at %#x: %w", i, p.Entry, err)
			}
			units[i] = u

			return nil
		})
	}

	err := g.Wait()
	if panicked != nil {
		panic(panicked)
	}

	if err != nil {
		return nil, err
	}

	return units, nil
}

func (c *compilerImpl) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.cache)
}
