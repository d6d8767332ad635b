package gen

import (
	"fmt"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/pcode"
)

// spaceOf returns the address space a LOAD or STORE names in its first
// input.
func spaceOf(op pcode.Op) pcode.Space {
	in := op.Input(0)
	if !in.IsConst() {
		invalid(fmt.Sprintf("%s space operand %s is not a constant", op.Kind, in))
	}

	space := pcode.Space(in.Offset)
	if in.Offset != uint64(space) || !space.Valid() || space == pcode.SpaceConst {
		invalid(fmt.Sprintf("%s names no addressable space: %d", op.Kind, in.Offset))
	}

	return space
}

type loadOpGen struct{}

func (loadOpGen) Kind() pcode.OpKind {
	return pcode.Load
}

func (loadOpGen) GenerateRunCode(ctx *Context, op pcode.Op, _ *pcode.Block) {
	space := spaceOf(op)
	out := outputOf(op)
	t := fixed(ctx.TypeOf(out))

	fixed(ctx.Produce(op.Input(1)))
	ctx.Emit(emit.LoadInd(space, out.Size, t))
	ctx.StoreOutput(op, t)
}

type storeOpGen struct{}

func (storeOpGen) Kind() pcode.OpKind {
	return pcode.Store
}

func (storeOpGen) GenerateRunCode(ctx *Context, op pcode.Op, _ *pcode.Block) {
	space := spaceOf(op)
	value := op.Input(2)

	fixed(ctx.Produce(op.Input(1)))
	t := fixed(ctx.Produce(value))
	ctx.Emit(emit.StoreInd(space, value.Size, t))
}

