package gen

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
	"github.com/sarchlab/pcodejit/util"
)

// HookPosBlockStart marks the start of a block, before its label is placed.
var HookPosBlockStart = &sim.HookPos{Name: "Block Start"}

// HookPosOpPending marks an op about to be generated.
var HookPosOpPending = &sim.HookPos{Name: "Op Pending"}

// HookPosLeftProduced marks the first operand of an op being on the stack.
var HookPosLeftProduced = &sim.HookPos{Name: "Left Produced"}

// HookPosBothProduced marks both operands of a binary op being on the stack.
var HookPosBothProduced = &sim.HookPos{Name: "Both Produced"}

// HookPosOpEmitted marks an op whose code is complete.
var HookPosOpEmitted = &sim.HookPos{Name: "Op Emitted"}

// OpState is the detail passed to op hooks.
type OpState struct {
	Block *pcode.Block
	Op    pcode.Op

	// Types holds the types of the operands produced so far, or the result
	// type once the op is emitted.
	Types []jittype.Type
}

// Driver generates code for passages, block by block.
//
// A Driver keeps no state across calls and may generate several passages
// concurrently as long as no hooks are added meanwhile.
type Driver struct {
	*sim.HookableBase

	model TypeModel
	trace bool
}

// NewDriver creates a driver typing varnodes with model. A nil model types
// varnodes by size.
func NewDriver(model TypeModel) *Driver {
	if model == nil {
		model = SizeModel{}
	}

	return &Driver{
		HookableBase: sim.NewHookableBase(),
		model:        model,
	}
}

// SetTrace turns per-block and per-op trace logging on or off.
func (d *Driver) SetTrace(on bool) {
	d.trace = on
}

// Generate emits the code of a passage into buf.
//
// Ops that cannot be compiled yet make Generate return an
// *UnimplementedError; whatever was emitted before must then be discarded.
// Invalid operand combinations are bugs of the caller and panic with an
// *InvalidCombinationError.
func (d *Driver) Generate(p *pcode.Passage, buf emit.Buffer) (err error) {
	ctx := NewContext(buf, d.model, p)

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if e, ok := r.(error); ok {
			var ue *UnimplementedError
			if errors.As(e, &ue) {
				ue.locate(ctx.op)
				err = ue

				return
			}

			var ie *InvalidCombinationError
			if errors.As(e, &ie) {
				ie.locate(ctx.op)
			}
		}

		panic(r)
	}()

	for i, b := range p.Blocks {
		d.generateBlock(ctx, b, i)
	}

	return nil
}

func (d *Driver) generateBlock(ctx *Context, b *pcode.Block, index int) {
	ctx.enterBlock(b)

	d.invoke(HookPosBlockStart, b, nil)
	ctx.Emit(emit.Mark(ctx.BlockLabel(b)))

	if d.trace {
		util.Trace("Block", "ID", b.ID, "Address", fmt.Sprintf("%#x", b.Address),
			"Ops", len(b.Ops))
	}

	for i := range b.Ops {
		d.generateOp(ctx, b, b.Ops[i])
	}

	if !b.Terminal() {
		d.fallThrough(ctx, b, index)
	}
}

// fallThrough continues to the block at the fall-through address. Nothing is
// emitted when it is the next block in emission order.
func (d *Driver) fallThrough(ctx *Context, b *pcode.Block, index int) {
	p := ctx.Passage()
	if index+1 < len(p.Blocks) && p.Blocks[index+1].Address == b.Next {
		return
	}

	if l, ok := ctx.LabelAt(b.Next); ok {
		ctx.Emit(emit.Jump(l))
		return
	}

	ctx.Emit(emit.Exit(b.Next))
}

func (d *Driver) generateOp(ctx *Context, b *pcode.Block, op pcode.Op) {
	ctx.op = &op

	d.invoke(HookPosOpPending, b, &OpState{Block: b, Op: op})

	switch g := Lookup(op.Kind).(type) {
	case RunCodeGen:
		g.GenerateRunCode(ctx, op, b)
		d.invoke(HookPosOpEmitted, b, &OpState{Block: b, Op: op})
	case UnOpGen:
		d.generateUnOp(ctx, b, op, g)
	case BinOpGen:
		d.generateBinOp(ctx, b, op, g)
	default:
		invalid(fmt.Sprintf("generator of %s has no known shape", op.Kind))
	}

	if d.trace {
		util.Trace("Op", "Address", fmt.Sprintf("%#x", op.Address), "Op", op.String())
	}
}

func (d *Driver) generateUnOp(
	ctx *Context,
	b *pcode.Block,
	op pcode.Op,
	g UnOpGen,
) {
	uType := ctx.Produce(op.Input(0))
	d.invoke(HookPosLeftProduced, b, &OpState{Block: b, Op: op,
		Types: []jittype.Type{uType}})

	result := g.GenerateUnOpRunCode(ctx, op, b, uType)
	ctx.StoreOutput(op, result)

	d.invoke(HookPosOpEmitted, b, &OpState{Block: b, Op: op,
		Types: []jittype.Type{result}})
}

func (d *Driver) generateBinOp(
	ctx *Context,
	b *pcode.Block,
	op pcode.Op,
	g BinOpGen,
) {
	lType := ctx.Produce(op.Input(0))
	rType := ctx.TypeOf(op.Input(1))

	lType = g.AfterLeft(ctx, op, lType, rType)
	d.invoke(HookPosLeftProduced, b, &OpState{Block: b, Op: op,
		Types: []jittype.Type{lType}})

	rType = ctx.Produce(op.Input(1))
	d.invoke(HookPosBothProduced, b, &OpState{Block: b, Op: op,
		Types: []jittype.Type{lType, rType}})

	result := g.GenerateBinOpRunCode(ctx, op, b, lType, rType)
	ctx.StoreOutput(op, result)

	d.invoke(HookPosOpEmitted, b, &OpState{Block: b, Op: op,
		Types: []jittype.Type{result}})
}

func (d *Driver) invoke(pos *sim.HookPos, b *pcode.Block, state *OpState) {
	if d.NumHooks() == 0 {
		return
	}

	hookCtx := sim.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   b,
	}
	if state != nil {
		hookCtx.Detail = state
	}

	d.InvokeHook(hookCtx)
}
