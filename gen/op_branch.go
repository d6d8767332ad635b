package gen

import (
	"fmt"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/pcode"
)

// branchTarget returns the address a direct branch goes to. Constant targets
// are relative branches between ops of one instruction.
func branchTarget(op pcode.Op) uint64 {
	in := op.Input(0)
	if in.IsConst() {
		unimplemented("relative branch by %d ops", int64(in.Offset))
	}

	return in.Offset
}

// branchOpGen jumps to blocks inside the passage and leaves generated code
// for any other address. CALL is generated the same way: the callee is
// entered like any other branch target.
type branchOpGen struct {
	kind pcode.OpKind
}

func (g branchOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (branchOpGen) GenerateRunCode(ctx *Context, op pcode.Op, _ *pcode.Block) {
	target := branchTarget(op)

	if l, ok := ctx.LabelAt(target); ok {
		ctx.Emit(emit.Jump(l))
		return
	}

	ctx.Emit(emit.Exit(target))
}

type cbranchOpGen struct{}

func (cbranchOpGen) Kind() pcode.OpKind {
	return pcode.CBranch
}

func (cbranchOpGen) GenerateRunCode(ctx *Context, op pcode.Op, _ *pcode.Block) {
	target := branchTarget(op)

	fixed(ctx.Produce(op.Input(1)))

	if l, ok := ctx.LabelAt(target); ok {
		ctx.Emit(emit.JumpIf(l))
		return
	}

	skip := ctx.NewLabel()
	ctx.Emit(emit.JumpIfNot(skip))
	ctx.Emit(emit.Exit(target))
	ctx.Emit(emit.Mark(skip))
}

// indirectBranchOpGen leaves generated code for a computed address.
type indirectBranchOpGen struct {
	kind pcode.OpKind
}

func (g indirectBranchOpGen) Kind() pcode.OpKind {
	return g.kind
}

func (indirectBranchOpGen) GenerateRunCode(ctx *Context, op pcode.Op, _ *pcode.Block) {
	t := fixed(ctx.Produce(op.Input(0)))
	ctx.Emit(emit.ExitInd(t))
}

type unimplementedOpGen struct{}

func (unimplementedOpGen) Kind() pcode.OpKind {
	return pcode.Unimplemented
}

// GenerateRunCode emits a trap. Reaching an unimplemented instruction is a
// fault of the guest program, not of code generation.
func (unimplementedOpGen) GenerateRunCode(ctx *Context, op pcode.Op, _ *pcode.Block) {
	ctx.Emit(emit.Trap(fmt.Sprintf("unimplemented instruction at %#x", op.Address)))
}

var (
	branchGen = branchOpGen{kind: pcode.Branch}
	callGen   = branchOpGen{kind: pcode.Call}

	branchIndGen = indirectBranchOpGen{kind: pcode.BranchInd}
	callIndGen   = indirectBranchOpGen{kind: pcode.CallInd}
	returnGen    = indirectBranchOpGen{kind: pcode.Return}
)
