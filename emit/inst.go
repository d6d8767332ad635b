// Package emit is the code buffer generated code is appended to.
//
// The host is a stack machine: instructions pop their operands from an
// evaluation stack and push their result. Native arithmetic works on the
// width of the instruction's type and treats operands as signed where the
// distinction matters (division, remainder, ordered comparison), like the
// integer instructions of a typical bytecode host.
package emit

import (
	"fmt"

	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// Op is a host instruction.
type Op uint8

// The host instructions.
const (
	OpNop Op = iota

	// Stack and storage.
	OpConst
	OpLoad
	OpStore
	OpLoadInd
	OpStoreInd

	// Native arithmetic and logic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
	OpNeg
	OpNot
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe

	// Conversions.
	OpZext
	OpSext
	OpTrunc

	// Runtime intrinsic call.
	OpCall

	// Control.
	OpLabel
	OpJump
	OpJumpIf
	OpJumpIfNot
	OpExit
	OpExitInd
	OpTrap

	numOps
)

var opNames = [numOps]string{
	OpNop:       "NOP",
	OpConst:     "CONST",
	OpLoad:      "LOAD",
	OpStore:     "STORE",
	OpLoadInd:   "LOADIND",
	OpStoreInd:  "STOREIND",
	OpAdd:       "ADD",
	OpSub:       "SUB",
	OpMul:       "MUL",
	OpDiv:       "DIV",
	OpRem:       "REM",
	OpAnd:       "AND",
	OpOr:        "OR",
	OpXor:       "XOR",
	OpShl:       "SHL",
	OpShr:       "SHR",
	OpSar:       "SAR",
	OpNeg:       "NEG",
	OpNot:       "NOT",
	OpCmpEq:     "CMPEQ",
	OpCmpNe:     "CMPNE",
	OpCmpLt:     "CMPLT",
	OpCmpLe:     "CMPLE",
	OpZext:      "ZEXT",
	OpSext:      "SEXT",
	OpTrunc:     "TRUNC",
	OpCall:      "CALL",
	OpLabel:     "LABEL",
	OpJump:      "JUMP",
	OpJumpIf:    "JUMPIF",
	OpJumpIfNot: "JUMPIFNOT",
	OpExit:      "EXIT",
	OpExitInd:   "EXITIND",
	OpTrap:      "TRAP",
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}

	return fmt.Sprintf("Op(%d)", uint8(o))
}

// IsNative tells if o is a native arithmetic, logic or comparison
// instruction.
func (o Op) IsNative() bool {
	return o >= OpAdd && o <= OpCmpLe
}

// IsUnary tells if a native instruction pops a single operand.
func (o Op) IsUnary() bool {
	return o == OpNeg || o == OpNot
}

// IsComparison tells if a native instruction pushes a boolean.
func (o Op) IsComparison() bool {
	return o >= OpCmpEq && o <= OpCmpLe
}

// IsConversion tells if o converts the value on top of the stack.
func (o Op) IsConversion() bool {
	return o == OpZext || o == OpSext || o == OpTrunc
}

// Label names a position in a listing.
type Label int

// Inst is one host instruction. Which fields are meaningful depends on Op.
type Inst struct {
	Op Op

	// Type is the operand type, or the source type of a conversion.
	Type jittype.Type
	// To is the target type of a conversion.
	To jittype.Type

	// Imm is the constant of CONST and the target address of EXIT.
	Imm uint64

	// Var is the storage of LOAD and STORE.
	Var pcode.Varnode

	// Space and Size locate the storage of LOADIND and STOREIND.
	Space pcode.Space
	Size  int

	// Label is the position of LABEL and the destination of jumps.
	Label Label

	// Symbol and Arity identify the routine of CALL.
	Symbol string
	Arity  int

	// Msg is the fault reported by TRAP.
	Msg string
}

func (i Inst) String() string {
	switch {
	case i.Op == OpConst:
		return fmt.Sprintf("%s.%s %#x", i.Op, i.Type, i.Imm)
	case i.Op == OpLoad, i.Op == OpStore:
		return fmt.Sprintf("%s.%s %s", i.Op, i.Type, i.Var)
	case i.Op == OpLoadInd, i.Op == OpStoreInd:
		return fmt.Sprintf("%s.%s %s[%d]", i.Op, i.Type, i.Space, i.Size)
	case i.Op.IsNative():
		return fmt.Sprintf("%s.%s", i.Op, i.Type)
	case i.Op.IsConversion():
		return fmt.Sprintf("%s %s->%s", i.Op, i.Type, i.To)
	case i.Op == OpCall:
		return fmt.Sprintf("%s %s/%d -> %s", i.Op, i.Symbol, i.Arity, i.Type)
	case i.Op == OpLabel, i.Op == OpJump, i.Op == OpJumpIf, i.Op == OpJumpIfNot:
		return fmt.Sprintf("%s L%d", i.Op, i.Label)
	case i.Op == OpExit:
		return fmt.Sprintf("%s %#x", i.Op, i.Imm)
	case i.Op == OpTrap:
		return fmt.Sprintf("%s %q", i.Op, i.Msg)
	default:
		return i.Op.String()
	}
}

// Native returns a native arithmetic, logic or comparison instruction.
func Native(op Op, t jittype.Type) Inst {
	if !op.IsNative() {
		panic(fmt.Sprintf("%s is not a native operation", op))
	}

	return Inst{Op: op, Type: t}
}

// Convert returns a conversion of the value on top of the stack.
func Convert(op Op, from, to jittype.Type) Inst {
	if !op.IsConversion() {
		panic(fmt.Sprintf("%s is not a conversion", op))
	}

	return Inst{Op: op, Type: from, To: to}
}

// Const returns an instruction pushing a constant.
func Const(t jittype.Type, value uint64) Inst {
	return Inst{Op: OpConst, Type: t, Imm: value}
}

// Load returns an instruction pushing the value of a varnode.
func Load(v pcode.Varnode, t jittype.Type) Inst {
	return Inst{Op: OpLoad, Type: t, Var: v}
}

// Store returns an instruction popping a value into a varnode.
func Store(v pcode.Varnode, t jittype.Type) Inst {
	return Inst{Op: OpStore, Type: t, Var: v}
}

// LoadInd returns an instruction replacing an address on the stack with the
// size bytes stored there.
func LoadInd(space pcode.Space, size int, t jittype.Type) Inst {
	return Inst{Op: OpLoadInd, Type: t, Space: space, Size: size}
}

// StoreInd returns an instruction popping a value and an address and writing
// size bytes of the value there.
func StoreInd(space pcode.Space, size int, t jittype.Type) Inst {
	return Inst{Op: OpStoreInd, Type: t, Space: space, Size: size}
}

// Mark returns the instruction placing a label.
func Mark(l Label) Inst {
	return Inst{Op: OpLabel, Label: l}
}

// Jump returns an unconditional jump.
func Jump(l Label) Inst {
	return Inst{Op: OpJump, Label: l}
}

// JumpIf returns a jump taken when the popped value is non-zero.
func JumpIf(l Label) Inst {
	return Inst{Op: OpJumpIf, Label: l}
}

// JumpIfNot returns a jump taken when the popped value is zero.
func JumpIfNot(l Label) Inst {
	return Inst{Op: OpJumpIfNot, Label: l}
}

// Exit returns an instruction leaving generated code for a fixed address.
func Exit(target uint64) Inst {
	return Inst{Op: OpExit, Imm: target}
}

// ExitInd returns an instruction leaving generated code for the popped
// address.
func ExitInd(t jittype.Type) Inst {
	return Inst{Op: OpExitInd, Type: t}
}

// Trap returns an instruction that faults when reached.
func Trap(msg string) Inst {
	return Inst{Op: OpTrap, Msg: msg}
}
