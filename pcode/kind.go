package pcode

import (
	"fmt"
	"strings"
)

// OpKind identifies the operation a p-code op performs.
type OpKind uint8

// The p-code operation kinds handled by the backend.
const (
	Unimplemented OpKind = iota
	Copy
	Load
	Store
	Branch
	CBranch
	BranchInd
	Call
	CallInd
	Return
	IntEqual
	IntNotEqual
	IntSLess
	IntSLessEqual
	IntLess
	IntLessEqual
	IntZExt
	IntSExt
	IntAdd
	IntSub
	IntCarry
	IntSCarry
	IntSBorrow
	Int2Comp
	IntNegate
	IntXor
	IntAnd
	IntOr
	IntLeft
	IntRight
	IntSRight
	IntMult
	IntDiv
	IntSDiv
	IntRem
	IntSRem
	BoolNegate
	BoolXor
	BoolAnd
	BoolOr
	Piece
	SubPiece
	PopCount
	LzCount

	// NumOpKinds is the number of operation kinds.
	NumOpKinds
)

var kindNames = [NumOpKinds]string{
	Unimplemented: "UNIMPLEMENTED",
	Copy:          "COPY",
	Load:          "LOAD",
	Store:         "STORE",
	Branch:        "BRANCH",
	CBranch:       "CBRANCH",
	BranchInd:     "BRANCHIND",
	Call:          "CALL",
	CallInd:       "CALLIND",
	Return:        "RETURN",
	IntEqual:      "INT_EQUAL",
	IntNotEqual:   "INT_NOTEQUAL",
	IntSLess:      "INT_SLESS",
	IntSLessEqual: "INT_SLESSEQUAL",
	IntLess:       "INT_LESS",
	IntLessEqual:  "INT_LESSEQUAL",
	IntZExt:       "INT_ZEXT",
	IntSExt:       "INT_SEXT",
	IntAdd:        "INT_ADD",
	IntSub:        "INT_SUB",
	IntCarry:      "INT_CARRY",
	IntSCarry:     "INT_SCARRY",
	IntSBorrow:    "INT_SBORROW",
	Int2Comp:      "INT_2COMP",
	IntNegate:     "INT_NEGATE",
	IntXor:        "INT_XOR",
	IntAnd:        "INT_AND",
	IntOr:         "INT_OR",
	IntLeft:       "INT_LEFT",
	IntRight:      "INT_RIGHT",
	IntSRight:     "INT_SRIGHT",
	IntMult:       "INT_MULT",
	IntDiv:        "INT_DIV",
	IntSDiv:       "INT_SDIV",
	IntRem:        "INT_REM",
	IntSRem:       "INT_SREM",
	BoolNegate:    "BOOL_NEGATE",
	BoolXor:       "BOOL_XOR",
	BoolAnd:       "BOOL_AND",
	BoolOr:        "BOOL_OR",
	Piece:         "PIECE",
	SubPiece:      "SUBPIECE",
	PopCount:      "POPCOUNT",
	LzCount:       "LZCOUNT",
}

func (k OpKind) String() string {
	if k < NumOpKinds {
		return kindNames[k]
	}

	return fmt.Sprintf("OpKind(%d)", uint8(k))
}

// Valid tells if k names a known operation.
func (k OpKind) Valid() bool {
	return k < NumOpKinds
}

// ParseOpKind returns the kind with the given mnemonic.
func ParseOpKind(s string) (OpKind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return OpKind(k), nil
		}
	}

	return 0, fmt.Errorf("unknown p-code operation %q", s)
}

// IsTerminal tells if control never falls out of an op of this kind.
func (k OpKind) IsTerminal() bool {
	switch k {
	case Branch, BranchInd, Call, CallInd, Return:
		return true
	default:
		return false
	}
}

// IsBranch tells if an op of this kind may transfer control.
func (k OpKind) IsBranch() bool {
	return k.IsTerminal() || k == CBranch
}
