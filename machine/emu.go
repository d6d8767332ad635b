package machine

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
)

var (
	errStackOverflow  = errors.New("evaluation stack overflow")
	errStackUnderflow = errors.New("evaluation stack underflow")
)

type instEmulator struct {
}

type instFunc func(i instEmulator, inst emit.Inst, state *machineState) error

var instFuncs map[emit.Op]instFunc

func init() {
	instFuncs = map[emit.Op]instFunc{
		emit.OpNop:       instEmulator.runNop,
		emit.OpConst:     instEmulator.runConst,
		emit.OpLoad:      instEmulator.runLoad,
		emit.OpStore:     instEmulator.runStore,
		emit.OpLoadInd:   instEmulator.runLoadInd,
		emit.OpStoreInd:  instEmulator.runStoreInd,
		emit.OpAdd:       instEmulator.runBinary,
		emit.OpSub:       instEmulator.runBinary,
		emit.OpMul:       instEmulator.runBinary,
		emit.OpDiv:       instEmulator.runBinary,
		emit.OpRem:       instEmulator.runBinary,
		emit.OpAnd:       instEmulator.runBinary,
		emit.OpOr:        instEmulator.runBinary,
		emit.OpXor:       instEmulator.runBinary,
		emit.OpShl:       instEmulator.runBinary,
		emit.OpShr:       instEmulator.runBinary,
		emit.OpSar:       instEmulator.runBinary,
		emit.OpCmpEq:     instEmulator.runBinary,
		emit.OpCmpNe:     instEmulator.runBinary,
		emit.OpCmpLt:     instEmulator.runBinary,
		emit.OpCmpLe:     instEmulator.runBinary,
		emit.OpNeg:       instEmulator.runUnary,
		emit.OpNot:       instEmulator.runUnary,
		emit.OpZext:      instEmulator.runConvert,
		emit.OpSext:      instEmulator.runConvert,
		emit.OpTrunc:     instEmulator.runConvert,
		emit.OpCall:      instEmulator.runCall,
		emit.OpLabel:     instEmulator.runNop,
		emit.OpJump:      instEmulator.runJump,
		emit.OpJumpIf:    instEmulator.runJump,
		emit.OpJumpIfNot: instEmulator.runJump,
		emit.OpExit:      instEmulator.runExit,
		emit.OpExitInd:   instEmulator.runExitInd,
		emit.OpTrap:      instEmulator.runTrap,
	}
}

// RunInst executes one instruction. The returned error is a runtime fault.
func (i instEmulator) RunInst(inst emit.Inst, state *machineState, depth int) error {
	f, ok := instFuncs[inst.Op]
	if !ok {
		panic(fmt.Sprintf("unknown instruction '%s' at PC %d", inst.Op, state.PC))
	}

	pc := state.PC
	if err := f(i, inst, state); err != nil {
		return fmt.Errorf("%s at %d: %w", inst.Op, pc, err)
	}

	if len(state.Stack) > depth {
		return fmt.Errorf("%s at %d: %w", inst.Op, pc, errStackOverflow)
	}

	return nil
}

func (i instEmulator) push(state *machineState, value uint64) {
	state.Stack = append(state.Stack, value)
}

func (i instEmulator) pop(state *machineState) (uint64, error) {
	n := len(state.Stack)
	if n == 0 {
		return 0, errStackUnderflow
	}

	v := state.Stack[n-1]
	state.Stack = state.Stack[:n-1]

	return v, nil
}

func (i instEmulator) popN(state *machineState, n int) ([]uint64, error) {
	if len(state.Stack) < n {
		return nil, errStackUnderflow
	}

	base := len(state.Stack) - n
	args := make([]uint64, n)
	copy(args, state.Stack[base:])
	state.Stack = state.Stack[:base]

	return args, nil
}

func widthOf(t jittype.Type) jittype.Width {
	it, ok := t.(jittype.IntType)
	if !ok {
		panic(fmt.Sprintf("host instructions cannot operate on %v", t))
	}

	return it.Width
}

func signExtend(v uint64, w jittype.Width) int64 {
	shift := 64 - uint(w)
	return int64(v<<shift) >> shift
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

func (i instEmulator) runNop(_ emit.Inst, state *machineState) error {
	state.PC++
	return nil
}

func (i instEmulator) runConst(inst emit.Inst, state *machineState) error {
	i.push(state, inst.Imm&widthOf(inst.Type).Mask())
	state.PC++

	return nil
}

func (i instEmulator) runLoad(inst emit.Inst, state *machineState) error {
	v, err := state.Mem.ReadVarnode(inst.Var)
	if err != nil {
		return err
	}

	i.push(state, v&widthOf(inst.Type).Mask())
	state.PC++

	return nil
}

func (i instEmulator) runStore(inst emit.Inst, state *machineState) error {
	v, err := i.pop(state)
	if err != nil {
		return err
	}

	if err := state.Mem.WriteVarnode(inst.Var, v); err != nil {
		return err
	}
	state.PC++

	return nil
}

func (i instEmulator) runLoadInd(inst emit.Inst, state *machineState) error {
	addr, err := i.pop(state)
	if err != nil {
		return err
	}

	v, err := state.Mem.Read(inst.Space, addr, inst.Size)
	if err != nil {
		return err
	}

	i.push(state, v&widthOf(inst.Type).Mask())
	state.PC++

	return nil
}

func (i instEmulator) runStoreInd(inst emit.Inst, state *machineState) error {
	args, err := i.popN(state, 2)
	if err != nil {
		return err
	}

	if err := state.Mem.Write(inst.Space, args[0], inst.Size, args[1]); err != nil {
		return err
	}
	state.PC++

	return nil
}

func (i instEmulator) runBinary(inst emit.Inst, state *machineState) error {
	args, err := i.popN(state, 2)
	if err != nil {
		return err
	}

	w := widthOf(inst.Type)
	a, b := args[0]&w.Mask(), args[1]&w.Mask()
	sa, sb := signExtend(a, w), signExtend(b, w)

	var r uint64

	switch inst.Op {
	case emit.OpAdd:
		r = a + b
	case emit.OpSub:
		r = a - b
	case emit.OpMul:
		r = a * b
	case emit.OpDiv, emit.OpRem:
		if sb == 0 {
			return intrinsic.ErrDivideByZero
		}
		// MIN / -1 wraps to MIN with remainder 0.
		if inst.Op == emit.OpDiv {
			r = uint64(sa / sb)
		} else {
			r = uint64(sa % sb)
		}
	case emit.OpAnd:
		r = a & b
	case emit.OpOr:
		r = a | b
	case emit.OpXor:
		r = a ^ b
	case emit.OpShl:
		if b < uint64(w) {
			r = a << b
		}
	case emit.OpShr:
		if b < uint64(w) {
			r = a >> b
		}
	case emit.OpSar:
		if b >= uint64(w) {
			b = uint64(w) - 1
		}
		r = uint64(sa >> b)
	case emit.OpCmpEq:
		r = boolValue(a == b)
	case emit.OpCmpNe:
		r = boolValue(a != b)
	case emit.OpCmpLt:
		r = boolValue(sa < sb)
	case emit.OpCmpLe:
		r = boolValue(sa <= sb)
	default:
		panic(fmt.Sprintf("%s is not a binary instruction", inst.Op))
	}

	if inst.Op.IsComparison() {
		i.push(state, r)
	} else {
		i.push(state, r&w.Mask())
	}
	state.PC++

	return nil
}

func (i instEmulator) runUnary(inst emit.Inst, state *machineState) error {
	v, err := i.pop(state)
	if err != nil {
		return err
	}

	w := widthOf(inst.Type)

	switch inst.Op {
	case emit.OpNeg:
		v = -v
	case emit.OpNot:
		v = ^v
	}

	i.push(state, v&w.Mask())
	state.PC++

	return nil
}

func (i instEmulator) runConvert(inst emit.Inst, state *machineState) error {
	v, err := i.pop(state)
	if err != nil {
		return err
	}

	from, to := widthOf(inst.Type), widthOf(inst.To)
	v &= from.Mask()

	if inst.Op == emit.OpSext {
		v = uint64(signExtend(v, from))
	}

	i.push(state, v&to.Mask())
	state.PC++

	return nil
}

func (i instEmulator) runCall(inst emit.Inst, state *machineState) error {
	e, ok := intrinsic.Resolve(inst.Symbol)
	if !ok {
		return fmt.Errorf("unknown intrinsic %q", inst.Symbol)
	}

	args, err := i.popN(state, inst.Arity)
	if err != nil {
		return err
	}

	r, err := e.Invoke(args...)
	if err != nil {
		return err
	}

	i.push(state, r&e.Result.Mask())
	state.PC++

	return nil
}

func (i instEmulator) runJump(inst emit.Inst, state *machineState) error {
	taken := true

	if inst.Op != emit.OpJump {
		v, err := i.pop(state)
		if err != nil {
			return err
		}
		taken = (v != 0) == (inst.Op == emit.OpJumpIf)
	}

	if !taken {
		state.PC++
		return nil
	}

	target, ok := state.code.LabelIndex(inst.Label)
	if !ok {
		return fmt.Errorf("label L%d is not placed", inst.Label)
	}
	state.PC = target

	return nil
}

func (i instEmulator) runExit(inst emit.Inst, state *machineState) error {
	state.exit = &Exit{Target: inst.Imm}
	state.halted = true

	return nil
}

func (i instEmulator) runExitInd(inst emit.Inst, state *machineState) error {
	v, err := i.pop(state)
	if err != nil {
		return err
	}

	state.exit = &Exit{Target: v, Indirect: true}
	state.halted = true

	return nil
}

func (i instEmulator) runTrap(inst emit.Inst, state *machineState) error {
	state.exit = &Exit{Trap: inst.Msg}
	state.halted = true

	return nil
}
