// Package intrinsic is the runtime library generated code calls into for
// semantics the host instructions do not provide directly.
//
// Every routine exists once per host width. Arguments and results are carried
// as uint64 holding the value zero-extended to the routine's width.
package intrinsic

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strconv"

	"github.com/sarchlab/pcodejit/jittype"
)

// ErrDivideByZero is the trap raised by a division or remainder by zero.
var ErrDivideByZero = errors.New("division by zero")

// Name names a routine family.
type Name string

// The routine families.
const (
	DivideUnsigned    Name = "divideUnsigned"
	RemainderUnsigned Name = "remainderUnsigned"
	CompareUnsigned   Name = "compareUnsigned"
	Carry             Name = "carry"
	SCarry            Name = "sCarry"
	SBorrow           Name = "sBorrow"
	IntLeft           Name = "intLeft"
	IntRight          Name = "intRight"
	IntSRight         Name = "intSRight"
	PopCount          Name = "popCount"
	LzCount           Name = "lzCount"
)

// Entry is one routine bound to one width.
type Entry struct {
	Name   Name
	Width  jittype.Width
	Symbol string
	Arity  int

	// Result is the type of the value the routine returns.
	Result jittype.IntType

	impl func(w jittype.Width, args []uint64) (uint64, error)
}

// Invoke runs the routine.
func (e Entry) Invoke(args ...uint64) (uint64, error) {
	if len(args) != e.Arity {
		return 0, fmt.Errorf("%s takes %d arguments, got %d",
			e.Symbol, e.Arity, len(args))
	}

	return e.impl(e.Width, args)
}

type family struct {
	arity int
	// result returns the result type for a width.
	result func(w jittype.Width) jittype.IntType
	impl   func(w jittype.Width, args []uint64) (uint64, error)
}

func sameWidth(w jittype.Width) jittype.IntType { return jittype.Int(w, false) }
func boolResult(jittype.Width) jittype.IntType  { return jittype.Bool }
func intResult(jittype.Width) jittype.IntType   { return jittype.S32 }

var families = map[Name]family{
	DivideUnsigned:    {2, sameWidth, divideUnsigned},
	RemainderUnsigned: {2, sameWidth, remainderUnsigned},
	CompareUnsigned:   {2, intResult, compareUnsigned},
	Carry:             {2, boolResult, carry},
	SCarry:            {2, boolResult, sCarry},
	SBorrow:           {2, boolResult, sBorrow},
	IntLeft:           {2, sameWidth, intLeft},
	IntRight:          {2, sameWidth, intRight},
	IntSRight:         {2, sameWidth, intSRight},
	PopCount:          {1, intResult, popCount},
	LzCount:           {1, intResult, lzCount},
}

type key struct {
	name  Name
	width jittype.Width
}

var (
	byKey    = make(map[key]Entry)
	bySymbol = make(map[string]Entry)
)

func init() {
	for name, f := range families {
		for _, w := range jittype.Widths() {
			e := Entry{
				Name:   name,
				Width:  w,
				Symbol: string(name) + strconv.Itoa(int(w)),
				Arity:  f.arity,
				Result: f.result(w),
				impl:   f.impl,
			}
			byKey[key{name, w}] = e
			bySymbol[e.Symbol] = e
		}
	}
}

// Lookup returns the routine of a family for a width.
func Lookup(name Name, w jittype.Width) (Entry, bool) {
	e, ok := byKey[key{name, w}]
	return e, ok
}

// Resolve returns the routine with the given symbol.
func Resolve(symbol string) (Entry, bool) {
	e, ok := bySymbol[symbol]
	return e, ok
}

// Symbols lists every routine symbol, sorted.
func Symbols() []string {
	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	return symbols
}

func signExtend(v uint64, w jittype.Width) int64 {
	shift := 64 - uint(w)
	return int64(v<<shift) >> shift
}

func divideUnsigned(w jittype.Width, args []uint64) (uint64, error) {
	a, b := args[0]&w.Mask(), args[1]&w.Mask()
	if b == 0 {
		return 0, ErrDivideByZero
	}

	return a / b, nil
}

func remainderUnsigned(w jittype.Width, args []uint64) (uint64, error) {
	a, b := args[0]&w.Mask(), args[1]&w.Mask()
	if b == 0 {
		return 0, ErrDivideByZero
	}

	return a % b, nil
}

// compareUnsigned returns -1, 0 or 1 as a 32-bit value.
func compareUnsigned(w jittype.Width, args []uint64) (uint64, error) {
	a, b := args[0]&w.Mask(), args[1]&w.Mask()

	switch {
	case a < b:
		return jittype.W32.Mask(), nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func carry(w jittype.Width, args []uint64) (uint64, error) {
	a, b := args[0]&w.Mask(), args[1]&w.Mask()
	if w == jittype.W64 {
		_, c := bits.Add64(a, b, 0)
		return c, nil
	}

	return (a + b) >> w, nil
}

func sCarry(w jittype.Width, args []uint64) (uint64, error) {
	a, b := signExtend(args[0], w), signExtend(args[1], w)
	r := signExtend(uint64(a+b), w)

	if (a >= 0) == (b >= 0) && (r >= 0) != (a >= 0) {
		return 1, nil
	}

	return 0, nil
}

func sBorrow(w jittype.Width, args []uint64) (uint64, error) {
	a, b := signExtend(args[0], w), signExtend(args[1], w)
	r := signExtend(uint64(a-b), w)

	if (a >= 0) != (b >= 0) && (r >= 0) != (a >= 0) {
		return 1, nil
	}

	return 0, nil
}

// The shift amount is always a full 64-bit value; amounts at or beyond the
// width shift every bit out.
func intLeft(w jittype.Width, args []uint64) (uint64, error) {
	if args[1] >= uint64(w) {
		return 0, nil
	}

	return (args[0] << args[1]) & w.Mask(), nil
}

func intRight(w jittype.Width, args []uint64) (uint64, error) {
	if args[1] >= uint64(w) {
		return 0, nil
	}

	return (args[0] & w.Mask()) >> args[1], nil
}

func intSRight(w jittype.Width, args []uint64) (uint64, error) {
	v := signExtend(args[0], w)
	if args[1] >= uint64(w) {
		if v < 0 {
			return w.Mask(), nil
		}
		return 0, nil
	}

	return uint64(v>>args[1]) & w.Mask(), nil
}

func popCount(w jittype.Width, args []uint64) (uint64, error) {
	return uint64(bits.OnesCount64(args[0] & w.Mask())), nil
}

func lzCount(w jittype.Width, args []uint64) (uint64, error) {
	return uint64(bits.LeadingZeros64(args[0]&w.Mask()) - (64 - int(w))), nil
}
