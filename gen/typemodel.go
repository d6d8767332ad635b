package gen

import (
	"fmt"

	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// TypeModel assigns a type to every varnode of a passage.
type TypeModel interface {
	TypeOf(v pcode.Varnode) jittype.Type
}

// SizeModel types a varnode by its size alone.
type SizeModel struct {
	Signed bool
}

// TypeOf returns the type of the narrowest host width holding the varnode, or
// a multi-precision type when none does.
func (m SizeModel) TypeOf(v pcode.Varnode) jittype.Type {
	t, err := jittype.ForSize(v.Size, m.Signed)
	if err != nil {
		invalid(fmt.Sprintf("varnode %s: %v", v, err))
	}

	return t
}

// MapModel types listed varnodes explicitly and defers the rest to a fallback
// model.
type MapModel struct {
	types    map[pcode.Varnode]jittype.Type
	fallback TypeModel
}

// NewMapModel creates a model with no overrides. A nil fallback means an
// unsigned SizeModel.
func NewMapModel(fallback TypeModel) *MapModel {
	if fallback == nil {
		fallback = SizeModel{}
	}

	return &MapModel{
		types:    make(map[pcode.Varnode]jittype.Type),
		fallback: fallback,
	}
}

// Set overrides the type of a varnode.
func (m *MapModel) Set(v pcode.Varnode, t jittype.Type) *MapModel {
	m.types[v] = t
	return m
}

// SetAll parses and sets type overrides written as type names.
func (m *MapModel) SetAll(types map[pcode.Varnode]string) error {
	for v, name := range types {
		t, err := jittype.Parse(name)
		if err != nil {
			return fmt.Errorf("varnode %s: %w", v, err)
		}

		if t.Size() < v.Size {
			return fmt.Errorf("varnode %s: type %s is narrower than the varnode", v, t)
		}

		m.types[v] = t
	}

	return nil
}

// TypeOf returns the override for v, if any, or the fallback's type.
func (m *MapModel) TypeOf(v pcode.Varnode) jittype.Type {
	if t, ok := m.types[v]; ok {
		return t
	}

	return m.fallback.TypeOf(v)
}
