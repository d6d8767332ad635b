package emit

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/pcodejit/jittype"
)

// Buffer receives generated code. It is append-only: generated code never
// reads back what it wrote.
type Buffer interface {
	// Emit appends a native, conversion, storage or control instruction.
	Emit(inst Inst)

	// EmitCall appends a call to a runtime intrinsic.
	EmitCall(call Call)
}

// Call is a call to a runtime intrinsic. The call pops Arity arguments, the
// first argument deepest, and pushes a value of type Result.
type Call struct {
	Symbol string
	Arity  int
	Result jittype.Type
}

// Listing is a Buffer that keeps instructions in memory.
type Listing struct {
	insts  []Inst
	labels map[Label]int
}

// NewListing creates an empty listing.
func NewListing() *Listing {
	return &Listing{labels: make(map[Label]int)}
}

// Emit appends an instruction.
func (l *Listing) Emit(inst Inst) {
	if inst.Op == OpLabel {
		if _, found := l.labels[inst.Label]; found {
			panic(fmt.Sprintf("label L%d placed twice", inst.Label))
		}
		l.labels[inst.Label] = len(l.insts)
	}

	l.insts = append(l.insts, inst)
}

// EmitCall appends a call instruction.
func (l *Listing) EmitCall(call Call) {
	l.insts = append(l.insts, Inst{
		Op:     OpCall,
		Type:   call.Result,
		Symbol: call.Symbol,
		Arity:  call.Arity,
	})
}

// Insts returns the instructions in order.
func (l *Listing) Insts() []Inst {
	return l.insts
}

// Len returns the number of instructions.
func (l *Listing) Len() int {
	return len(l.insts)
}

// LabelIndex returns the index of the instruction placing a label.
func (l *Listing) LabelIndex(label Label) (int, bool) {
	i, ok := l.labels[label]
	return i, ok
}

// Count returns how many instructions use op.
func (l *Listing) Count(op Op) int {
	n := 0
	for _, inst := range l.insts {
		if inst.Op == op {
			n++
		}
	}

	return n
}

// Calls returns the symbols of all intrinsic calls in order.
func (l *Listing) Calls() []string {
	var symbols []string
	for _, inst := range l.insts {
		if inst.Op == OpCall {
			symbols = append(symbols, inst.Symbol)
		}
	}

	return symbols
}

// Validate checks that every jump has a placed label.
func (l *Listing) Validate() error {
	for i, inst := range l.insts {
		switch inst.Op {
		case OpJump, OpJumpIf, OpJumpIfNot:
			if _, ok := l.labels[inst.Label]; !ok {
				return fmt.Errorf("instruction %d jumps to unplaced label L%d", i, inst.Label)
			}
		}
	}

	return nil
}

func (l *Listing) String() string {
	var sb strings.Builder
	for i, inst := range l.insts {
		fmt.Fprintf(&sb, "%4d  %s\n", i, inst)
	}

	return sb.String()
}

// Render returns the listing as a table.
func (l *Listing) Render(title string) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Op", "Type", "Operand"})

	for i, inst := range l.insts {
		t.AppendRow(table.Row{i, inst.Op, typeColumn(inst), operandColumn(inst)})
	}

	t.AppendFooter(table.Row{"", "", "total", len(l.insts)})

	return t.Render()
}

func typeColumn(inst Inst) string {
	switch {
	case inst.Op.IsConversion():
		return fmt.Sprintf("%s->%s", inst.Type, inst.To)
	case inst.Type != nil:
		return inst.Type.String()
	default:
		return ""
	}
}

func operandColumn(inst Inst) string {
	switch inst.Op {
	case OpConst, OpExit:
		return fmt.Sprintf("%#x", inst.Imm)
	case OpLoad, OpStore:
		return inst.Var.String()
	case OpLoadInd, OpStoreInd:
		return fmt.Sprintf("%s[%d]", inst.Space, inst.Size)
	case OpCall:
		return fmt.Sprintf("%s/%d", inst.Symbol, inst.Arity)
	case OpLabel, OpJump, OpJumpIf, OpJumpIfNot:
		return fmt.Sprintf("L%d", inst.Label)
	case OpTrap:
		return inst.Msg
	default:
		return ""
	}
}
