package gen

import (
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// OpGen generates code for one p-code op kind.
//
// Generators hold no per-call state. Everything a call needs travels in the
// Context, so a single generator value serves every passage and goroutine.
type OpGen interface {
	Kind() pcode.OpKind
}

// UnOpGen generates ops with one value input and one output. The input is on
// top of the stack when GenerateUnOpRunCode is called; the result must be on
// top of the stack when it returns.
type UnOpGen interface {
	OpGen

	GenerateUnOpRunCode(
		ctx *Context,
		op pcode.Op,
		block *pcode.Block,
		uType jittype.Type,
	) jittype.Type
}

// BinOpGen generates ops with two value inputs and one output.
type BinOpGen interface {
	OpGen

	// AfterLeft runs after the left operand is on the stack and before the
	// right one is produced. It returns the left operand's type after any
	// conversion it emitted.
	AfterLeft(
		ctx *Context,
		op pcode.Op,
		lType, rType jittype.Type,
	) jittype.Type

	// GenerateBinOpRunCode runs with both operands on the stack, the right
	// one on top, and leaves the result on top.
	GenerateBinOpRunCode(
		ctx *Context,
		op pcode.Op,
		block *pcode.Block,
		lType, rType jittype.Type,
	) jittype.Type
}

// RunCodeGen generates memory and control-flow ops. Such a generator produces
// its own operands and stores its own output, if any.
type RunCodeGen interface {
	OpGen

	GenerateRunCode(ctx *Context, op pcode.Op, block *pcode.Block)
}

// lateConversion leaves the left operand alone after it is produced.
type lateConversion struct{}

func (lateConversion) AfterLeft(
	_ *Context,
	_ pcode.Op,
	lType, _ jittype.Type,
) jittype.Type {
	return lType
}

// earlyZExt widens the left operand before the right one is produced.
type earlyZExt struct{}

func (earlyZExt) AfterLeft(
	ctx *Context,
	_ pcode.Op,
	lType, rType jittype.Type,
) jittype.Type {
	return ForceUniformZExt(ctx.Buffer(), lType, rType)
}

// earlySExt is earlyZExt for operations reading their operands as signed. The
// left operand takes its sign from the top bit of its varnode.
type earlySExt struct{}

func (earlySExt) AfterLeft(
	ctx *Context,
	op pcode.Op,
	lType, rType jittype.Type,
) jittype.Type {
	lType = SignExtendFrom(ctx.Buffer(), op.Input(0).Size, lType)
	return ForceUniformSExt(ctx.Buffer(), lType, rType)
}

// uniformZExt widens the right operand, on top of the stack, to the left
// operand and returns the fixed-width type both operands now share.
func uniformZExt(ctx *Context, lType, rType jittype.Type) jittype.IntType {
	return fixed(ForceUniformZExt(ctx.Buffer(), rType, lType))
}

// uniformSExt is uniformZExt for signed operands. The right operand takes its
// sign from the top bit of its varnode.
func uniformSExt(
	ctx *Context,
	op pcode.Op,
	lType, rType jittype.Type,
) jittype.IntType {
	rType = SignExtendFrom(ctx.Buffer(), op.Input(1).Size, rType)
	return fixed(ForceUniformSExt(ctx.Buffer(), rType, lType))
}
