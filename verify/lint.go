package verify

import (
	"fmt"

	"github.com/sarchlab/pcodejit/pcode"
)

// arity gives the number of inputs of an op kind and whether it writes an
// output. A negative count means "at least -count".
type arity struct {
	inputs int
	output bool
}

var arities = [pcode.NumOpKinds]arity{
	pcode.Unimplemented: {0, false},
	pcode.Copy:          {1, true},
	pcode.Load:          {2, true},
	pcode.Store:         {3, false},
	pcode.Branch:        {1, false},
	pcode.CBranch:       {2, false},
	pcode.BranchInd:     {1, false},
	pcode.Call:          {-1, false},
	pcode.CallInd:       {-1, false},
	pcode.Return:        {-1, false},
	pcode.IntEqual:      {2, true},
	pcode.IntNotEqual:   {2, true},
	pcode.IntSLess:      {2, true},
	pcode.IntSLessEqual: {2, true},
	pcode.IntLess:       {2, true},
	pcode.IntLessEqual:  {2, true},
	pcode.IntZExt:       {1, true},
	pcode.IntSExt:       {1, true},
	pcode.IntAdd:        {2, true},
	pcode.IntSub:        {2, true},
	pcode.IntCarry:      {2, true},
	pcode.IntSCarry:     {2, true},
	pcode.IntSBorrow:    {2, true},
	pcode.Int2Comp:      {1, true},
	pcode.IntNegate:     {1, true},
	pcode.IntXor:        {2, true},
	pcode.IntAnd:        {2, true},
	pcode.IntOr:         {2, true},
	pcode.IntLeft:       {2, true},
	pcode.IntRight:      {2, true},
	pcode.IntSRight:     {2, true},
	pcode.IntMult:       {2, true},
	pcode.IntDiv:        {2, true},
	pcode.IntSDiv:       {2, true},
	pcode.IntRem:        {2, true},
	pcode.IntSRem:       {2, true},
	pcode.BoolNegate:    {1, true},
	pcode.BoolXor:       {2, true},
	pcode.BoolAnd:       {2, true},
	pcode.BoolOr:        {2, true},
	pcode.Piece:         {2, true},
	pcode.SubPiece:      {2, true},
	pcode.PopCount:      {1, true},
	pcode.LzCount:       {1, true},
}

// RunLint performs static checks on a passage.
// It validates op structure (STRUCT) and control flow (FLOW).
// Returns a list of issues found, or empty list if no issues.
func RunLint(p *pcode.Passage) []Issue {
	var issues []Issue

	if len(p.Blocks) == 0 {
		return []Issue{{
			Type:    IssueFlow,
			Block:   -1,
			OpID:    -1,
			Message: "passage has no blocks",
		}}
	}

	// FLOW: every block starts at a distinct address
	seen := make(map[uint64]int)
	for _, b := range p.Blocks {
		if prev, exists := seen[b.Address]; exists {
			issues = append(issues, Issue{
				Type:    IssueFlow,
				Block:   b.ID,
				Address: b.Address,
				OpID:    -1,
				Message: fmt.Sprintf("blocks %d and %d both start at %#x", prev, b.ID, b.Address),
			})
			continue
		}
		seen[b.Address] = b.ID
	}

	if _, ok := p.BlockAt(p.Entry); !ok {
		issues = append(issues, Issue{
			Type:    IssueFlow,
			Block:   -1,
			Address: p.Entry,
			OpID:    -1,
			Message: fmt.Sprintf("entry %#x is not the start of a block", p.Entry),
		})
	}

	for _, b := range p.Blocks {
		for i, op := range b.Ops {
			for _, msg := range checkOp(op) {
				issues = append(issues, Issue{
					Type:    IssueStruct,
					Block:   b.ID,
					Address: op.Address,
					OpID:    i,
					Message: fmt.Sprintf("%s: %s", op.Kind, msg),
					Details: map[string]interface{}{"op": op.String()},
				})
			}

			issues = append(issues, checkFlow(b, i, op)...)
		}
	}

	return issues
}

func checkOp(op pcode.Op) []string {
	if !op.Kind.Valid() {
		return []string{"unknown op kind"}
	}

	var msgs []string

	a := arities[op.Kind]
	switch {
	case a.inputs >= 0 && len(op.Inputs) != a.inputs:
		msgs = append(msgs, fmt.Sprintf("takes %d inputs, has %d", a.inputs, len(op.Inputs)))
	case a.inputs < 0 && len(op.Inputs) < -a.inputs:
		msgs = append(msgs, fmt.Sprintf("takes at least %d inputs, has %d", -a.inputs, len(op.Inputs)))
	}

	if a.output != (op.Output != nil) {
		if a.output {
			msgs = append(msgs, "has no output")
		} else {
			msgs = append(msgs, "must not have an output")
		}
	}

	if len(msgs) > 0 {
		return msgs
	}

	if op.Output != nil && op.Output.IsConst() {
		msgs = append(msgs, "writes to the constant space")
	}

	for _, in := range op.Inputs {
		if in.Size <= 0 || !in.Space.Valid() {
			msgs = append(msgs, fmt.Sprintf("malformed input %s", in))
		}
	}

	return append(msgs, checkSizes(op)...)
}

func checkSizes(op pcode.Op) []string {
	var msgs []string

	fail := func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}

	outSize := func() int { return op.Output.Size }

	switch op.Kind {
	case pcode.Copy, pcode.Int2Comp, pcode.IntNegate:
		if outSize() != op.Inputs[0].Size {
			fail("output size %d differs from input size %d", outSize(), op.Inputs[0].Size)
		}
	case pcode.IntAdd, pcode.IntSub, pcode.IntMult, pcode.IntAnd, pcode.IntOr,
		pcode.IntXor, pcode.IntDiv, pcode.IntSDiv, pcode.IntRem, pcode.IntSRem:
		if op.Inputs[0].Size != op.Inputs[1].Size || outSize() != op.Inputs[0].Size {
			fail("operand sizes %d, %d and %d differ",
				op.Inputs[0].Size, op.Inputs[1].Size, outSize())
		}
	case pcode.IntEqual, pcode.IntNotEqual, pcode.IntLess, pcode.IntLessEqual,
		pcode.IntSLess, pcode.IntSLessEqual, pcode.IntCarry, pcode.IntSCarry,
		pcode.IntSBorrow:
		if op.Inputs[0].Size != op.Inputs[1].Size {
			fail("input sizes %d and %d differ", op.Inputs[0].Size, op.Inputs[1].Size)
		}
		if outSize() != 1 {
			fail("boolean output has size %d", outSize())
		}
	case pcode.BoolAnd, pcode.BoolOr, pcode.BoolXor, pcode.BoolNegate:
		for _, in := range op.Inputs {
			if in.Size != 1 {
				fail("boolean input %s has size %d", in, in.Size)
			}
		}
		if outSize() != 1 {
			fail("boolean output has size %d", outSize())
		}
	case pcode.IntZExt, pcode.IntSExt:
		if outSize() <= op.Inputs[0].Size {
			fail("extension from %d to %d bytes does not widen",
				op.Inputs[0].Size, outSize())
		}
	case pcode.IntLeft, pcode.IntRight, pcode.IntSRight:
		if outSize() != op.Inputs[0].Size {
			fail("output size %d differs from shifted size %d", outSize(), op.Inputs[0].Size)
		}
	case pcode.Piece:
		if outSize() != op.Inputs[0].Size+op.Inputs[1].Size {
			fail("output size %d is not %d+%d", outSize(), op.Inputs[0].Size, op.Inputs[1].Size)
		}
	case pcode.SubPiece:
		n := op.Inputs[1]
		if !n.IsConst() {
			fail("byte count %s is not a constant", n)
		} else if n.Offset >= uint64(op.Inputs[0].Size) {
			fail("drops %d of %d bytes", n.Offset, op.Inputs[0].Size)
		}
	case pcode.Load, pcode.Store:
		space := op.Inputs[0]
		if !space.IsConst() || space.Offset == uint64(pcode.SpaceConst) ||
			!pcode.Space(space.Offset).Valid() || space.Offset > 0xff {
			fail("space operand %s names no addressable space", space)
		}
	case pcode.CBranch:
		if op.Inputs[1].Size != 1 {
			fail("condition has size %d", op.Inputs[1].Size)
		}
	}

	return msgs
}

func checkFlow(b *pcode.Block, i int, op pcode.Op) []Issue {
	var issues []Issue

	issue := func(msg string) {
		issues = append(issues, Issue{
			Type:    IssueFlow,
			Block:   b.ID,
			Address: op.Address,
			OpID:    i,
			Message: msg,
		})
	}

	if op.Kind.IsTerminal() && i != len(b.Ops)-1 {
		issue(fmt.Sprintf("%s is followed by %d ops", op.Kind, len(b.Ops)-1-i))
	}

	switch op.Kind {
	case pcode.Branch, pcode.CBranch:
		if len(op.Inputs) == 0 || !op.Inputs[0].IsConst() {
			break
		}

		rel := int64(op.Inputs[0].Offset)
		if op.Inputs[0].Size < 8 {
			shift := 64 - 8*uint(op.Inputs[0].Size)
			rel = rel << shift >> shift
		}

		if target := int64(i) + rel; target < 0 || target > int64(len(b.Ops)) {
			issue(fmt.Sprintf("relative branch by %d leaves the block", rel))
		}
	}

	return issues
}
