package gen

import (
	"fmt"

	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// UnimplementedError reports an operand combination the generator knows about
// but cannot compile yet, such as multi-precision operands. Callers may fall
// back to interpreting the passage.
type UnimplementedError struct {
	Kind    pcode.OpKind
	Address uint64
	Reason  string

	located bool
}

func (e *UnimplementedError) Error() string {
	if !e.located {
		return "unimplemented: " + e.Reason
	}

	return fmt.Sprintf("%s at %#x unimplemented: %s", e.Kind, e.Address, e.Reason)
}

func (e *UnimplementedError) locate(op *pcode.Op) {
	if e.located || op == nil {
		return
	}

	e.Kind = op.Kind
	e.Address = op.Address
	e.located = true
}

// InvalidCombinationError reports an operand type pairing that no generator
// accepts. It always points at a front-end or type-model bug.
type InvalidCombinationError struct {
	Kind    pcode.OpKind
	Address uint64
	Types   []jittype.Type
	Reason  string

	located bool
}

func (e *InvalidCombinationError) Error() string {
	msg := e.Reason
	if len(e.Types) > 0 {
		msg = fmt.Sprintf("%s %v", msg, e.Types)
	}

	if !e.located {
		return "invalid combination: " + msg
	}

	return fmt.Sprintf("%s at %#x: invalid combination: %s", e.Kind, e.Address, msg)
}

func (e *InvalidCombinationError) locate(op *pcode.Op) {
	if e.located || op == nil {
		return
	}

	e.Kind = op.Kind
	e.Address = op.Address
	e.located = true
}

func unimplemented(format string, args ...any) {
	panic(&UnimplementedError{Reason: fmt.Sprintf(format, args...)})
}

func invalid(reason string, types ...jittype.Type) {
	panic(&InvalidCombinationError{Reason: reason, Types: types})
}

// fixed returns t as a fixed-width integer type. Multi-precision types are
// unimplemented; anything else is invalid.
func fixed(t jittype.Type) jittype.IntType {
	switch tt := t.(type) {
	case jittype.IntType:
		return tt
	case jittype.MpIntType:
		unimplemented("multi-precision operand %s", tt)
	default:
		invalid("operand without a type")
	}

	panic("unreachable")
}
