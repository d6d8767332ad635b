package gen

import (
	"fmt"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// Context carries the state of generating one passage. A Context is used by a
// single goroutine.
type Context struct {
	buf     emit.Buffer
	model   TypeModel
	passage *pcode.Passage

	// bindings records the result type of the op that last wrote each
	// varnode in the current block, re-typed to the varnode's width.
	bindings  map[pcode.Varnode]jittype.Type
	nextLabel emit.Label

	block *pcode.Block
	op    *pcode.Op
}

// NewContext creates the context for generating a passage into buf.
func NewContext(
	buf emit.Buffer,
	model TypeModel,
	passage *pcode.Passage,
) *Context {
	return &Context{
		buf:       buf,
		model:     model,
		passage:   passage,
		bindings:  make(map[pcode.Varnode]jittype.Type),
		nextLabel: emit.Label(len(passage.Blocks)),
	}
}

// Buffer returns the buffer code is emitted into.
func (c *Context) Buffer() emit.Buffer {
	return c.buf
}

// Passage returns the passage being generated.
func (c *Context) Passage() *pcode.Passage {
	return c.passage
}

// Emit appends an instruction.
func (c *Context) Emit(inst emit.Inst) {
	c.buf.Emit(inst)
}

func (c *Context) enterBlock(b *pcode.Block) {
	c.block = b
	c.op = nil
	clear(c.bindings)
}

// TypeOf returns the type of a varnode: the type it was stored with earlier
// in the block, else the model's type.
func (c *Context) TypeOf(v pcode.Varnode) jittype.Type {
	if t, ok := c.bindings[v]; ok {
		return t
	}

	return c.model.TypeOf(v)
}

// Binding returns the type a varnode was stored with in the current block.
func (c *Context) Binding(v pcode.Varnode) (jittype.Type, bool) {
	t, ok := c.bindings[v]
	return t, ok
}

// Produce pushes the value of a varnode and returns its type.
func (c *Context) Produce(v pcode.Varnode) jittype.Type {
	t := c.TypeOf(v)

	if v.IsConst() {
		it := fixed(t)
		c.buf.Emit(emit.Const(it, v.Offset&it.Mask()&jittype.SizeMask(v.Size)))

		return it
	}

	c.buf.Emit(emit.Load(v, t))

	return t
}

// StoreOutput converts the value on top of the stack, of type t, to the type
// of the op's output and stores it there. Later ops of the block see the
// output with the signedness of t when t has the output's width.
func (c *Context) StoreOutput(op pcode.Op, t jittype.Type) {
	if op.Output == nil {
		invalid(fmt.Sprintf("%s produces a value but has no output", op.Kind), t)
	}

	out := *op.Output
	outType := c.model.TypeOf(out)

	Convert(c.buf, t, outType)
	c.buf.Emit(emit.Store(out, outType))
	c.bindings[out] = bindingFor(t, outType)
}

func bindingFor(result, outType jittype.Type) jittype.Type {
	r, ok := result.(jittype.IntType)
	o, outFixed := outType.(jittype.IntType)

	if ok && outFixed && r.Width == o.Width {
		return r
	}

	return outType
}

// BlockLabel returns the label placed at the start of a block.
func (c *Context) BlockLabel(b *pcode.Block) emit.Label {
	return emit.Label(b.ID)
}

// LabelAt returns the label of the block starting at an address, if the
// passage has one.
func (c *Context) LabelAt(address uint64) (emit.Label, bool) {
	b, ok := c.passage.BlockAt(address)
	if !ok {
		return 0, false
	}

	return c.BlockLabel(b), true
}

// NewLabel returns a label not used by any block.
func (c *Context) NewLabel() emit.Label {
	l := c.nextLabel
	c.nextLabel++

	return l
}

// Call emits a call to the intrinsic of a family for a width and returns the
// type of the value it pushes.
func (c *Context) Call(name intrinsic.Name, w jittype.Width) jittype.IntType {
	e, ok := intrinsic.Lookup(name, w)
	if !ok {
		invalid(fmt.Sprintf("no intrinsic %s for width %d", name, w))
	}

	c.buf.EmitCall(emit.Call{
		Symbol: e.Symbol,
		Arity:  e.Arity,
		Result: e.Result,
	})

	return e.Result
}
