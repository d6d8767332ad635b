package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// pieceOpGen concatenates its inputs, the left one most significant.
type pieceOpGen struct{}

func (pieceOpGen) Kind() pcode.OpKind {
	return pcode.Piece
}

// AfterLeft widens the left operand to the output and shifts it past the
// bytes of the right operand.
func (pieceOpGen) AfterLeft(
	ctx *Context,
	op pcode.Op,
	lType, _ jittype.Type,
) jittype.Type {
	out := fixed(ctx.TypeOf(outputOf(op)))
	l := fixed(lType)

	shift := uint64(op.Input(1).Size) * 8
	if l.Width > out.Width || shift >= uint64(out.Width) {
		invalid("pieces do not fit the output", l, out)
	}

	Convert(ctx.Buffer(), l, out)
	ctx.Emit(emit.Const(out, shift))
	ctx.Emit(emit.Native(emit.OpShl, out))

	return out
}

func (pieceOpGen) GenerateBinOpRunCode(
	ctx *Context,
	_ pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	out := fixed(lType)
	r := fixed(rType)
	if r.Width > out.Width {
		invalid("pieces do not fit the output", r, out)
	}

	Convert(ctx.Buffer(), r, out)
	ctx.Emit(emit.Native(emit.OpOr, out))

	return out
}

// subPieceOpGen drops the given number of low bytes from its left input and
// truncates to the output.
type subPieceOpGen struct {
	lateConversion
}

func (subPieceOpGen) Kind() pcode.OpKind {
	return pcode.SubPiece
}

func (subPieceOpGen) GenerateBinOpRunCode(
	ctx *Context,
	op pcode.Op,
	_ *pcode.Block,
	lType, rType jittype.Type,
) jittype.Type {
	l := fixed(lType)
	out := fixed(ctx.TypeOf(outputOf(op)))

	Convert(ctx.Buffer(), fixed(rType), jittype.U64)
	ctx.Emit(emit.Const(jittype.U64, 8))
	ctx.Emit(emit.Native(emit.OpMul, jittype.U64))

	ctx.Call(intrinsic.IntRight, l.Width)

	return Convert(ctx.Buffer(), l, out)
}
