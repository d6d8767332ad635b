package pcode

import (
	"fmt"
	"strings"
)

// An Op is one p-code operation. Ops are produced by the front end and are
// never modified afterwards.
type Op struct {
	// Address is the address of the machine instruction the op belongs to.
	Address uint64
	Kind    OpKind
	Output  *Varnode
	Inputs  []Varnode
}

// NewOp creates an op. A nil output means the op writes nothing.
func NewOp(address uint64, kind OpKind, output *Varnode, inputs ...Varnode) Op {
	return Op{Address: address, Kind: kind, Output: output, Inputs: inputs}
}

// Input returns the i-th input, panicking when the op has fewer inputs.
func (o Op) Input(i int) Varnode {
	if i >= len(o.Inputs) {
		panic(fmt.Sprintf("%s at %#x has no input %d", o.Kind, o.Address, i))
	}

	return o.Inputs[i]
}

func (o Op) String() string {
	var sb strings.Builder

	if o.Output != nil {
		sb.WriteString(o.Output.String())
		sb.WriteString(" = ")
	}

	sb.WriteString(o.Kind.String())

	for i, in := range o.Inputs {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(in.String())
	}

	return sb.String()
}

// ParseOp reads an op in the form "out = KIND in0, in1" or "KIND in0, in1".
func ParseOp(address uint64, s string) (Op, error) {
	op := Op{Address: address}

	text := strings.TrimSpace(s)
	if lhs, rhs, found := strings.Cut(text, "="); found {
		out, err := ParseVarnode(lhs)
		if err != nil {
			return Op{}, fmt.Errorf("op %q: %w", s, err)
		}
		op.Output = &out
		text = strings.TrimSpace(rhs)
	}

	mnemonic, rest, _ := strings.Cut(text, " ")
	kind, err := ParseOpKind(mnemonic)
	if err != nil {
		return Op{}, fmt.Errorf("op %q: %w", s, err)
	}
	op.Kind = kind

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return op, nil
	}

	for _, field := range strings.Split(rest, ",") {
		in, err := ParseVarnode(field)
		if err != nil {
			return Op{}, fmt.Errorf("op %q: %w", s, err)
		}
		op.Inputs = append(op.Inputs, in)
	}

	return op, nil
}

// MustParseOp is ParseOp that panics on error.
func MustParseOp(address uint64, s string) Op {
	op, err := ParseOp(address, s)
	if err != nil {
		panic(err)
	}

	return op
}
