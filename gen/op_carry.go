package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// flagOpGen computes an overflow flag with an intrinsic.
//
// Varnodes narrower than the width holding them overflow at their own top
// bit, which the intrinsics cannot see. For those the flag is computed
// natively: the exact sum or difference fits the wider width, and overflow
// shows up as bits at or above the varnode's bit count.
type flagOpGen struct {
	kind   pcode.OpKind
	name   intrinsic.Name
	signed bool
	inst   emit.Op
}

func (g flagOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g flagOpGen) AfterLeft(
	ctx *Context,
	op pcode.Op,
	lType, rType jittype.Type,
) jittype.Type {
	if !g.signed {
		return ForceUniformZExt(ctx.Buffer(), lType, rType)
	}

	lType = SignExtendFrom(ctx.Buffer(), op.Input(0).Size, lType)

	return ForceUniformSExt(ctx.Buffer(), lType, rType)
}

func (g flagOpGen) GenerateBinOpRunCode(
	ctx *Context,
	op pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	var t jittype.IntType
	if g.signed {
		t = uniformSExt(ctx, op, lType, rType)
	} else {
		t = uniformZExt(ctx, lType, rType)
	}

	bits := 8 * max(op.Input(0).Size, op.Input(1).Size)
	if bits >= int(t.Width) {
		return ctx.Call(g.name, t.Width)
	}

	ctx.Emit(emit.Native(g.inst, t))

	if g.signed {
		// Move the signed range [-2^(n-1), 2^(n-1)) onto [0, 2^n).
		ctx.Emit(emit.Const(t, 1<<(bits-1)))
		ctx.Emit(emit.Native(emit.OpAdd, t))
	}

	ctx.Emit(emit.Const(t, uint64(bits)))
	ctx.Emit(emit.Native(emit.OpShr, t))
	ctx.Emit(emit.Const(t, 0))
	ctx.Emit(emit.Native(emit.OpCmpNe, t))

	return jittype.Bool
}

var (
	intCarryOpGen = flagOpGen{
		kind: pcode.IntCarry,
		name: intrinsic.Carry,
		inst: emit.OpAdd,
	}
	intSCarryOpGen = flagOpGen{
		kind:   pcode.IntSCarry,
		name:   intrinsic.SCarry,
		signed: true,
		inst:   emit.OpAdd,
	}
	intSBorrowOpGen = flagOpGen{
		kind:   pcode.IntSBorrow,
		name:   intrinsic.SBorrow,
		signed: true,
		inst:   emit.OpSub,
	}
)
