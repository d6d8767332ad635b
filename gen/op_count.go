package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// bitCountOpGen counts bits of its input with an intrinsic.
type bitCountOpGen struct {
	kind pcode.OpKind
	name intrinsic.Name
}

func (g bitCountOpGen) Kind() pcode.OpKind {
	return g.kind
}

// GenerateUnOpRunCode counts at the width holding the input. LZCOUNT then
// drops the zero bits above a varnode narrower than that width.
func (g bitCountOpGen) GenerateUnOpRunCode(
	ctx *Context,
	op pcode.Op,
	_ *pcode.Block,
	uType jittype.Type,
) jittype.Type {
	w := fixed(uType).Width
	r := ctx.Call(g.name, w)

	bits := 8 * op.Input(0).Size
	if g.kind == pcode.LzCount && bits < int(w) {
		ctx.Emit(emit.Const(r, uint64(int(w)-bits)))
		ctx.Emit(emit.Native(emit.OpSub, r))
	}

	return r
}

var (
	popCountOpGen = bitCountOpGen{kind: pcode.PopCount, name: intrinsic.PopCount}
	lzCountOpGen  = bitCountOpGen{kind: pcode.LzCount, name: intrinsic.LzCount}
)
