package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// boolBinOpGen combines two booleans with a native bitwise instruction.
type boolBinOpGen struct {
	lateConversion

	kind pcode.OpKind
	inst emit.Op
}

func (g boolBinOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g boolBinOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	l, r := fixed(lType), fixed(rType)
	if l.Width != jittype.W8 || r.Width != jittype.W8 {
		invalid("boolean operands must be one byte", lType, rType)
	}

	ctx.Emit(emit.Native(g.inst, jittype.Bool))

	return jittype.Bool
}

type boolNegateOpGen struct{}

func (boolNegateOpGen) Kind() pcode.OpKind {
	return pcode.BoolNegate
}

func (boolNegateOpGen) GenerateUnOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	uType jittype.Type,
) jittype.Type {
	t := fixed(uType)
	ctx.Emit(emit.Const(t, 1))
	ctx.Emit(emit.Native(emit.OpXor, t))

	return t
}

var (
	boolAndOpGen = boolBinOpGen{kind: pcode.BoolAnd, inst: emit.OpAnd}
	boolOrOpGen  = boolBinOpGen{kind: pcode.BoolOr, inst: emit.OpOr}
	boolXorOpGen = boolBinOpGen{kind: pcode.BoolXor, inst: emit.OpXor}
)
