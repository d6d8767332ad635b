package pcode

import (
	"fmt"
	"strings"
	"sync"
)

// A Block is a straight-line run of ops with no branch target inside it.
type Block struct {
	ID      int
	Address uint64
	Ops     []Op

	// Next is the address control reaches when it falls out of the last op.
	// It is ignored when the last op is terminal.
	Next uint64
}

// Terminal tells if control never falls out of the block.
func (b *Block) Terminal() bool {
	return len(b.Ops) > 0 && b.Ops[len(b.Ops)-1].Kind.IsTerminal()
}

// A Passage is the unit of compilation: blocks in emission order. The first
// block is the entry.
type Passage struct {
	Entry  uint64
	Blocks []*Block

	indexOnce sync.Once
	byAddress map[uint64]*Block
}

// NewPassage creates a passage from blocks, numbering them in order.
func NewPassage(blocks ...*Block) *Passage {
	p := &Passage{Blocks: blocks}
	if len(blocks) > 0 {
		p.Entry = blocks[0].Address
	}

	for i, b := range blocks {
		b.ID = i
	}

	p.indexOnce.Do(p.index)

	return p
}

func (p *Passage) index() {
	p.byAddress = make(map[uint64]*Block, len(p.Blocks))
	for _, b := range p.Blocks {
		if _, found := p.byAddress[b.Address]; !found {
			p.byAddress[b.Address] = b
		}
	}
}

// BlockAt returns the block starting at address, if the passage has one.
func (p *Passage) BlockAt(address uint64) (*Block, bool) {
	p.indexOnce.Do(p.index)

	b, ok := p.byAddress[address]

	return b, ok
}

// Successors returns the blocks control may reach from b inside the passage.
func (p *Passage) Successors(b *Block) []*Block {
	var succ []*Block

	seen := make(map[int]bool)
	add := func(address uint64) {
		if t, ok := p.BlockAt(address); ok && !seen[t.ID] {
			seen[t.ID] = true
			succ = append(succ, t)
		}
	}

	for _, op := range b.Ops {
		switch op.Kind {
		case Branch, CBranch, Call:
			if len(op.Inputs) > 0 && !op.Inputs[0].IsConst() {
				add(op.Inputs[0].Offset)
			}
		}
	}

	if !b.Terminal() {
		add(b.Next)
	}

	return succ
}

// NumOps returns the number of ops over all blocks.
func (p *Passage) NumOps() int {
	n := 0
	for _, b := range p.Blocks {
		n += len(b.Ops)
	}

	return n
}

func (p *Passage) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "passage %#x\n", p.Entry)
	for _, b := range p.Blocks {
		fmt.Fprintf(&sb, "block %d @%#x next %#x\n", b.ID, b.Address, b.Next)
		for _, op := range b.Ops {
			fmt.Fprintf(&sb, "  %#x: %s\n", op.Address, op)
		}
	}

	return sb.String()
}
