package verify

import (
	"fmt"
	"math/big"

	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
)

// FunctionalSimulator interprets a passage op by op, without generating
// code. Values of every size are computed exactly.
type FunctionalSimulator struct {
	passage *pcode.Passage
	mem     *machine.Memory

	TraceOpPre  func(b *pcode.Block, op pcode.Op)
	TraceOpPost func(b *pcode.Block, op pcode.Op)
}

// NewFunctionalSimulator creates a simulator of a passage over a memory.
func NewFunctionalSimulator(p *pcode.Passage, mem *machine.Memory) *FunctionalSimulator {
	return &FunctionalSimulator{passage: p, mem: mem}
}

// Memory returns the memory the simulator runs on.
func (fs *FunctionalSimulator) Memory() *machine.Memory {
	return fs.mem
}

// control is where execution goes after an op.
type control struct {
	next     int // op index in the current block
	leave    bool
	exit     machine.Exit
	toBlock  *pcode.Block
	hasBlock bool
}

// Run interprets the passage from its entry for up to maxSteps ops. Runtime
// faults end up in the returned Exit; the error reports a malformed passage.
func (fs *FunctionalSimulator) Run(maxSteps int) (exit machine.Exit, err error) {
	if fs.passage == nil || fs.mem == nil {
		return machine.Exit{}, fmt.Errorf("FunctionalSimulator not properly initialized")
	}

	b, ok := fs.passage.BlockAt(fs.passage.Entry)
	if !ok {
		return machine.Exit{}, fmt.Errorf("entry %#x is not the start of a block", fs.passage.Entry)
	}

	steps := 0
	defer func() {
		exit.Steps = steps
	}()

	i := 0
	for {
		if i >= len(b.Ops) {
			next, ok := fs.passage.BlockAt(b.Next)
			if !ok {
				return machine.Exit{Target: b.Next}, nil
			}
			b, i = next, 0

			continue
		}

		if maxSteps > 0 && steps >= maxSteps {
			return machine.Exit{Fault: machine.ErrStepLimit}, nil
		}

		op := b.Ops[i]
		if fs.TraceOpPre != nil {
			fs.TraceOpPre(b, op)
		}

		steps++
		c, err := fs.executeOp(b, i, op)
		if err != nil {
			return machine.Exit{Fault: fmt.Errorf("%s at %#x: %w", op.Kind, op.Address, err)}, nil
		}

		if fs.TraceOpPost != nil {
			fs.TraceOpPost(b, op)
		}

		switch {
		case c.leave:
			return c.exit, nil
		case c.hasBlock:
			b, i = c.toBlock, 0
		default:
			i = c.next
		}
	}
}

func (fs *FunctionalSimulator) read(v pcode.Varnode) (*big.Int, error) {
	if v.IsConst() {
		x := new(big.Int).SetUint64(v.Offset)
		return x.And(x, mask(v.Size)), nil
	}

	data, err := fs.mem.ReadBytes(v.Space, v.Offset, v.Size)
	if err != nil {
		return nil, err
	}

	return fromLittleEndian(data), nil
}

func (fs *FunctionalSimulator) write(v pcode.Varnode, x *big.Int) error {
	return fs.mem.WriteBytes(v.Space, v.Offset, toLittleEndian(x, v.Size))
}

func mask(size int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(8*size))
	return m.Sub(m, big.NewInt(1))
}

func fromLittleEndian(data []byte) *big.Int {
	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}

	return new(big.Int).SetBytes(be)
}

func toLittleEndian(x *big.Int, size int) []byte {
	v := new(big.Int).And(x, mask(size))
	be := v.FillBytes(make([]byte, size))

	le := make([]byte, size)
	for i, b := range be {
		le[size-1-i] = b
	}

	return le
}

// signed reads the size-byte value x as two's complement.
func signed(x *big.Int, size int) *big.Int {
	v := new(big.Int).And(x, mask(size))
	if v.Bit(8*size-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*size)))
	}

	return v
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}

	return big.NewInt(0)
}

func (fs *FunctionalSimulator) inputs(op pcode.Op) ([]*big.Int, error) {
	values := make([]*big.Int, len(op.Inputs))
	for i, in := range op.Inputs {
		v, err := fs.read(in)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return values, nil
}

func (fs *FunctionalSimulator) executeOp(b *pcode.Block, i int, op pcode.Op) (control, error) {
	c := control{next: i + 1}

	switch op.Kind {
	case pcode.Unimplemented:
		c.leave = true
		c.exit = machine.Exit{Trap: fmt.Sprintf("unimplemented instruction at %#x", op.Address)}
		return c, nil
	case pcode.Load:
		return c, fs.runLoad(op)
	case pcode.Store:
		return c, fs.runStore(op)
	case pcode.Branch, pcode.Call:
		return fs.runBranch(b, i, op, true)
	case pcode.CBranch:
		cond, err := fs.read(op.Input(1))
		if err != nil {
			return c, err
		}
		return fs.runBranch(b, i, op, cond.Sign() != 0)
	case pcode.BranchInd, pcode.CallInd, pcode.Return:
		target, err := fs.read(op.Input(0))
		if err != nil {
			return c, err
		}
		c.leave = true
		c.exit = machine.Exit{Target: target.Uint64(), Indirect: true}
		return c, nil
	}

	in, err := fs.inputs(op)
	if err != nil {
		return c, err
	}

	if op.Output == nil {
		return c, fmt.Errorf("%s has no output", op.Kind)
	}

	r, err := evaluate(op, in)
	if err != nil {
		return c, err
	}

	return c, fs.write(*op.Output, r)
}

// evaluate computes the result of a value-producing op.
func evaluate(op pcode.Op, in []*big.Int) (*big.Int, error) {
	size := op.Inputs[0].Size
	bits := 8 * size
	r := new(big.Int)

	switch op.Kind {
	case pcode.Copy, pcode.IntZExt:
		return r.Set(in[0]), nil
	case pcode.IntSExt:
		return signed(in[0], size), nil
	case pcode.IntAdd:
		return r.Add(in[0], in[1]), nil
	case pcode.IntSub:
		return r.Sub(in[0], in[1]), nil
	case pcode.IntMult:
		return r.Mul(in[0], in[1]), nil
	case pcode.IntAnd, pcode.BoolAnd:
		return r.And(in[0], in[1]), nil
	case pcode.IntOr, pcode.BoolOr:
		return r.Or(in[0], in[1]), nil
	case pcode.IntXor, pcode.BoolXor:
		return r.Xor(in[0], in[1]), nil
	case pcode.Int2Comp:
		return r.Neg(in[0]), nil
	case pcode.IntNegate:
		return r.Not(in[0]), nil
	case pcode.BoolNegate:
		return r.Xor(in[0], big.NewInt(1)), nil
	case pcode.IntDiv, pcode.IntRem, pcode.IntSDiv, pcode.IntSRem:
		return divide(op.Kind, in, size)
	case pcode.IntEqual:
		return boolInt(in[0].Cmp(in[1]) == 0), nil
	case pcode.IntNotEqual:
		return boolInt(in[0].Cmp(in[1]) != 0), nil
	case pcode.IntLess:
		return boolInt(in[0].Cmp(in[1]) < 0), nil
	case pcode.IntLessEqual:
		return boolInt(in[0].Cmp(in[1]) <= 0), nil
	case pcode.IntSLess:
		return boolInt(signed(in[0], size).Cmp(signed(in[1], size)) < 0), nil
	case pcode.IntSLessEqual:
		return boolInt(signed(in[0], size).Cmp(signed(in[1], size)) <= 0), nil
	case pcode.IntCarry:
		return boolInt(r.Add(in[0], in[1]).BitLen() > bits), nil
	case pcode.IntSCarry:
		sum := r.Add(signed(in[0], size), signed(in[1], size))
		return boolInt(!fitsSigned(sum, bits)), nil
	case pcode.IntSBorrow:
		diff := r.Sub(signed(in[0], size), signed(in[1], size))
		return boolInt(!fitsSigned(diff, bits)), nil
	case pcode.IntLeft, pcode.IntRight, pcode.IntSRight:
		return shift(op.Kind, in, size), nil
	case pcode.Piece:
		r.Lsh(in[0], uint(8*op.Inputs[1].Size))
		return r.Or(r, in[1]), nil
	case pcode.SubPiece:
		return r.Rsh(in[0], uint(8*in[1].Uint64())), nil
	case pcode.PopCount:
		n := 0
		for _, w := range in[0].Bits() {
			for ; w != 0; w &= w - 1 {
				n++
			}
		}
		return big.NewInt(int64(n)), nil
	case pcode.LzCount:
		return big.NewInt(int64(bits - in[0].BitLen())), nil
	default:
		return nil, fmt.Errorf("cannot evaluate %s", op.Kind)
	}
}

func fitsSigned(x *big.Int, bits int) bool {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if x.Cmp(limit) >= 0 {
		return false
	}

	return x.Cmp(limit.Neg(limit)) >= 0
}

func divide(kind pcode.OpKind, in []*big.Int, size int) (*big.Int, error) {
	a, b := in[0], in[1]
	if kind == pcode.IntSDiv || kind == pcode.IntSRem {
		a, b = signed(a, size), signed(b, size)
	}

	if b.Sign() == 0 {
		return nil, intrinsic.ErrDivideByZero
	}

	r := new(big.Int)
	switch kind {
	case pcode.IntDiv, pcode.IntSDiv:
		return r.Quo(a, b), nil
	default:
		return r.Rem(a, b), nil
	}
}

func shift(kind pcode.OpKind, in []*big.Int, size int) *big.Int {
	bits := 8 * size
	r := new(big.Int)

	amount := bits
	if in[1].IsUint64() && in[1].Uint64() < uint64(bits) {
		amount = int(in[1].Uint64())
	}

	switch kind {
	case pcode.IntLeft:
		return r.Lsh(in[0], uint(amount))
	case pcode.IntRight:
		return r.Rsh(in[0], uint(amount))
	default:
		return r.Rsh(signed(in[0], size), uint(amount))
	}
}

func (fs *FunctionalSimulator) runLoad(op pcode.Op) error {
	if op.Output == nil {
		return fmt.Errorf("LOAD has no output")
	}

	space := pcode.Space(op.Input(0).Offset)

	addr, err := fs.read(op.Input(1))
	if err != nil {
		return err
	}

	data, err := fs.mem.ReadBytes(space, addr.Uint64(), op.Output.Size)
	if err != nil {
		return err
	}

	return fs.write(*op.Output, fromLittleEndian(data))
}

func (fs *FunctionalSimulator) runStore(op pcode.Op) error {
	space := pcode.Space(op.Input(0).Offset)

	addr, err := fs.read(op.Input(1))
	if err != nil {
		return err
	}

	value := op.Input(2)
	v, err := fs.read(value)
	if err != nil {
		return err
	}

	return fs.mem.WriteBytes(space, addr.Uint64(), toLittleEndian(v, value.Size))
}

// runBranch follows a direct branch when taken. Constant targets are
// relative to the op within its block.
func (fs *FunctionalSimulator) runBranch(
	b *pcode.Block,
	i int,
	op pcode.Op,
	taken bool,
) (control, error) {
	c := control{next: i + 1}
	if !taken {
		return c, nil
	}

	target := op.Input(0)
	if target.IsConst() {
		rel := signed(new(big.Int).SetUint64(target.Offset), target.Size).Int64()
		next := int64(i) + rel
		if next < 0 || next > int64(len(b.Ops)) {
			return c, fmt.Errorf("relative branch by %d leaves the block", rel)
		}
		c.next = int(next)

		return c, nil
	}

	if t, ok := fs.passage.BlockAt(target.Offset); ok {
		c.toBlock = t
		c.hasBlock = true

		return c, nil
	}

	c.leave = true
	c.exit = machine.Exit{Target: target.Offset}

	return c, nil
}
