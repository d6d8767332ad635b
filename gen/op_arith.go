package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// nativeBinOpGen emits one native instruction at the type both operands are
// zero-extended to. Addition, subtraction, multiplication and the bitwise
// operations do not depend on signedness below the operand width.
type nativeBinOpGen struct {
	earlyZExt

	kind pcode.OpKind
	inst emit.Op
}

func (g nativeBinOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g nativeBinOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	t := uniformZExt(ctx, lType, rType)
	ctx.Emit(emit.Native(g.inst, t))

	return t
}

// nativeUnOpGen emits one native unary instruction at the operand type.
type nativeUnOpGen struct {
	kind pcode.OpKind
	inst emit.Op
}

func (g nativeUnOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g nativeUnOpGen) GenerateUnOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	uType jittype.Type,
) jittype.Type {
	t := fixed(uType)
	ctx.Emit(emit.Native(g.inst, t))

	return t
}

var (
	intAddOpGen  = nativeBinOpGen{kind: pcode.IntAdd, inst: emit.OpAdd}
	intSubOpGen  = nativeBinOpGen{kind: pcode.IntSub, inst: emit.OpSub}
	intMultOpGen = nativeBinOpGen{kind: pcode.IntMult, inst: emit.OpMul}
	intAndOpGen  = nativeBinOpGen{kind: pcode.IntAnd, inst: emit.OpAnd}
	intOrOpGen   = nativeBinOpGen{kind: pcode.IntOr, inst: emit.OpOr}
	intXorOpGen  = nativeBinOpGen{kind: pcode.IntXor, inst: emit.OpXor}

	int2CompOpGen  = nativeUnOpGen{kind: pcode.Int2Comp, inst: emit.OpNeg}
	intNegateOpGen = nativeUnOpGen{kind: pcode.IntNegate, inst: emit.OpNot}
)
