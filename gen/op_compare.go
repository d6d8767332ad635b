package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// equalityOpGen compares zero-extended operands for (in)equality.
type equalityOpGen struct {
	earlyZExt

	kind pcode.OpKind
	inst emit.Op
}

func (g equalityOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g equalityOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	t := uniformZExt(ctx, lType, rType)
	ctx.Emit(emit.Native(g.inst, t))

	return jittype.Bool
}

// signedLessOpGen compares sign-extended operands with the host's signed
// ordering.
type signedLessOpGen struct {
	earlySExt

	kind pcode.OpKind
	inst emit.Op
}

func (g signedLessOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g signedLessOpGen) GenerateBinOpRunCode(
	ctx *Context,
	op pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	t := uniformSExt(ctx, op, lType, rType).AsSigned()
	ctx.Emit(emit.Native(g.inst, t))

	return jittype.Bool
}

// unsignedLessOpGen turns the three-way result of the unsigned comparison
// intrinsic into a boolean by comparing it with zero.
type unsignedLessOpGen struct {
	earlyZExt

	kind pcode.OpKind
	inst emit.Op
}

func (g unsignedLessOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g unsignedLessOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	t := uniformZExt(ctx, lType, rType)

	cmp := ctx.Call(intrinsic.CompareUnsigned, t.Width)
	ctx.Emit(emit.Const(cmp, 0))
	ctx.Emit(emit.Native(g.inst, cmp))

	return jittype.Bool
}

var (
	intEqualOpGen    = equalityOpGen{kind: pcode.IntEqual, inst: emit.OpCmpEq}
	intNotEqualOpGen = equalityOpGen{kind: pcode.IntNotEqual, inst: emit.OpCmpNe}

	intSLessOpGen      = signedLessOpGen{kind: pcode.IntSLess, inst: emit.OpCmpLt}
	intSLessEqualOpGen = signedLessOpGen{kind: pcode.IntSLessEqual, inst: emit.OpCmpLe}

	intLessOpGen      = unsignedLessOpGen{kind: pcode.IntLess, inst: emit.OpCmpLt}
	intLessEqualOpGen = unsignedLessOpGen{kind: pcode.IntLessEqual, inst: emit.OpCmpLe}
)
