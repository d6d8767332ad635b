package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

type copyOpGen struct{}

func (copyOpGen) Kind() pcode.OpKind {
	return pcode.Copy
}

// GenerateUnOpRunCode emits nothing. The output conversion re-types the
// value.
func (copyOpGen) GenerateUnOpRunCode(
	_ *Context,
	_ pcode.Op,
	_ *pcode.Block,
	uType jittype.Type,
) jittype.Type {
	return fixed(uType)
}

// extOpGen widens its input to the output type.
type extOpGen struct {
	kind pcode.OpKind
	inst emit.Op
}

func (g extOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (g extOpGen) GenerateUnOpRunCode(
	ctx *Context,
	op pcode.Op,
	_ *pcode.Block,
	uType jittype.Type,
) jittype.Type {
	u := fixed(uType)
	out := fixed(ctx.TypeOf(outputOf(op)))

	if g.kind == pcode.IntSExt {
		SignExtendFrom(ctx.Buffer(), op.Input(0).Size, u)
	}

	switch {
	case out.Width < u.Width:
		invalid("extension to a narrower type", u, out)
	case out.Width > u.Width:
		ctx.Emit(emit.Convert(g.inst, u, out))
	}

	return out
}

func outputOf(op pcode.Op) pcode.Varnode {
	if op.Output == nil {
		invalid(op.Kind.String() + " has no output")
	}

	return *op.Output
}

var (
	intZExtOpGen = extOpGen{kind: pcode.IntZExt, inst: emit.OpZext}
	intSExtOpGen = extOpGen{kind: pcode.IntSExt, inst: emit.OpSext}
)
