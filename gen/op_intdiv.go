package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// unsignedDivOpGen calls the unsigned division intrinsic of the operand
// width. The host's native division is signed.
type unsignedDivOpGen struct {
	earlyZExt

	kind pcode.OpKind
	name intrinsic.Name
}

func (g unsignedDivOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g unsignedDivOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	t := uniformZExt(ctx, lType, rType)

	return ctx.Call(g.name, t.Width)
}

// signedDivOpGen sign-extends both operands and uses native signed division.
type signedDivOpGen struct {
	earlySExt

	kind pcode.OpKind
	inst emit.Op
}

func (g signedDivOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g signedDivOpGen) GenerateBinOpRunCode(
	ctx *Context,
	op pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	t := uniformSExt(ctx, op, lType, rType).AsSigned()
	ctx.Emit(emit.Native(g.inst, t))

	return t
}

var (
	intDivOpGen = unsignedDivOpGen{kind: pcode.IntDiv, name: intrinsic.DivideUnsigned}
	intRemOpGen = unsignedDivOpGen{kind: pcode.IntRem, name: intrinsic.RemainderUnsigned}

	intSDivOpGen = signedDivOpGen{kind: pcode.IntSDiv, inst: emit.OpDiv}
	intSRemOpGen = signedDivOpGen{kind: pcode.IntSRem, inst: emit.OpRem}
)
