package gen

import (
	"fmt"

	"github.com/sarchlab/pcodejit/pcode"
)

// registry holds exactly one generator per op kind.
var registry = [pcode.NumOpKinds]OpGen{
	pcode.Unimplemented: unimplementedOpGen{},

	pcode.Copy:      copyOpGen{},
	pcode.Load:      loadOpGen{},
	pcode.Store:     storeOpGen{},
	pcode.Branch:    branchGen,
	pcode.CBranch:   cbranchOpGen{},
	pcode.BranchInd: branchIndGen,
	pcode.Call:      callGen,
	pcode.CallInd:   callIndGen,
	pcode.Return:    returnGen,

	pcode.IntEqual:      intEqualOpGen,
	pcode.IntNotEqual:   intNotEqualOpGen,
	pcode.IntSLess:      intSLessOpGen,
	pcode.IntSLessEqual: intSLessEqualOpGen,
	pcode.IntLess:       intLessOpGen,
	pcode.IntLessEqual:  intLessEqualOpGen,

	pcode.IntZExt: intZExtOpGen,
	pcode.IntSExt: intSExtOpGen,

	pcode.IntAdd:     intAddOpGen,
	pcode.IntSub:     intSubOpGen,
	pcode.IntCarry:   intCarryOpGen,
	pcode.IntSCarry:  intSCarryOpGen,
	pcode.IntSBorrow: intSBorrowOpGen,
	pcode.Int2Comp:   int2CompOpGen,
	pcode.IntNegate:  intNegateOpGen,
	pcode.IntXor:     intXorOpGen,
	pcode.IntAnd:     intAndOpGen,
	pcode.IntOr:      intOrOpGen,
	pcode.IntLeft:    intLeftOpGen,
	pcode.IntRight:   intRightOpGen,
	pcode.IntSRight:  intSRightOpGen,
	pcode.IntMult:    intMultOpGen,
	pcode.IntDiv:     intDivOpGen,
	pcode.IntSDiv:    intSDivOpGen,
	pcode.IntRem:     intRemOpGen,
	pcode.IntSRem:    intSRemOpGen,

	pcode.BoolNegate: boolNegateOpGen{},
	pcode.BoolXor:    boolXorOpGen,
	pcode.BoolAnd:    boolAndOpGen,
	pcode.BoolOr:     boolOrOpGen,

	pcode.Piece:    pieceOpGen{},
	pcode.SubPiece: subPieceOpGen{},
	pcode.PopCount: popCountOpGen,
	pcode.LzCount:  lzCountOpGen,
}

func init() {
	for k, g := range registry {
		kind := pcode.OpKind(k)

		if g == nil {
			panic(fmt.Sprintf("no generator for %s", kind))
		}

		if g.Kind() != kind {
			panic(fmt.Sprintf("generator for %s registered as %s", g.Kind(), kind))
		}

		if shapes(g) != 1 {
			panic(fmt.Sprintf("generator for %s must have exactly one shape", kind))
		}
	}
}

func shapes(g OpGen) int {
	n := 0
	if _, ok := g.(UnOpGen); ok {
		n++
	}
	if _, ok := g.(BinOpGen); ok {
		n++
	}
	if _, ok := g.(RunCodeGen); ok {
		n++
	}

	return n
}

// Lookup returns the generator of an op kind.
func Lookup(kind pcode.OpKind) OpGen {
	if !kind.Valid() {
		invalid(fmt.Sprintf("unknown op kind %d", uint8(kind)))
	}

	return registry[kind]
}
