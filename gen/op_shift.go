package gen

import (
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// shiftOpGen shifts the left operand by the right one through an intrinsic.
// The amount is passed as a full 64-bit value so that amounts of any operand
// width reach the intrinsic intact. The result keeps the left operand's type.
type shiftOpGen struct {
	kind pcode.OpKind
	name intrinsic.Name
}

func (g shiftOpGen) Kind() pcode.OpKind {
	return g.kind
}

// AfterLeft sign-extends the value shifted by INT_SRIGHT from the top bit of
// its varnode, so the fill reaches the varnode's own bits.
func (g shiftOpGen) AfterLeft(
	ctx *Context,
	op pcode.Op,
	lType, _ jittype.Type,
) jittype.Type {
	if g.kind != pcode.IntSRight {
		return lType
	}

	return SignExtendFrom(ctx.Buffer(), op.Input(0).Size, lType)
}

func (g shiftOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	l := fixed(lType)
	Convert(ctx.Buffer(), fixed(rType), jittype.U64)

	ctx.Call(g.name, l.Width)

	return l
}

var (
	intLeftOpGen   = shiftOpGen{kind: pcode.IntLeft, name: intrinsic.IntLeft}
	intRightOpGen  = shiftOpGen{kind: pcode.IntRight, name: intrinsic.IntRight}
	intSRightOpGen = shiftOpGen{kind: pcode.IntSRight, name: intrinsic.IntSRight}
)
