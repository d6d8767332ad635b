package pcode

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a passage read from YAML, with optional operand type overrides and
// initial storage values.
//
//	entry: 0x1000
//	blocks:
//	  - address: 0x1000
//	    next: 0x1004
//	    ops:
//	      - "register:0x10:4 = INT_DIV register:0x0:4, register:0x4:4"
//	types:
//	  "register:0x4:4": s32
//	inputs:
//	  "register:0x0:4": 100
type File struct {
	Passage *Passage
	Types   map[Varnode]string
	Inputs  map[Varnode]uint64
}

type yamlBlock struct {
	Address uint64   `yaml:"address"`
	Next    uint64   `yaml:"next"`
	Ops     []string `yaml:"ops"`
}

type yamlFile struct {
	Entry  *uint64           `yaml:"entry"`
	Blocks []yamlBlock       `yaml:"blocks"`
	Types  map[string]string `yaml:"types"`
	Inputs map[string]uint64 `yaml:"inputs"`
}

// LoadFile reads a passage file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// ParseFile reads a passage file from YAML text.
func ParseFile(data []byte) (*File, error) {
	var raw yamlFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if len(raw.Blocks) == 0 {
		return nil, fmt.Errorf("passage has no blocks")
	}

	blocks := make([]*Block, 0, len(raw.Blocks))
	for _, rb := range raw.Blocks {
		b := &Block{Address: rb.Address, Next: rb.Next}
		for _, text := range rb.Ops {
			op, err := ParseOp(rb.Address, text)
			if err != nil {
				return nil, fmt.Errorf("block %#x: %w", rb.Address, err)
			}
			b.Ops = append(b.Ops, op)
		}
		blocks = append(blocks, b)
	}

	f := &File{
		Passage: NewPassage(blocks...),
		Types:   make(map[Varnode]string, len(raw.Types)),
		Inputs:  make(map[Varnode]uint64, len(raw.Inputs)),
	}

	if raw.Entry != nil {
		f.Passage.Entry = *raw.Entry
	}

	for text, t := range raw.Types {
		v, err := ParseVarnode(text)
		if err != nil {
			return nil, fmt.Errorf("types: %w", err)
		}
		f.Types[v] = t
	}

	for text, value := range raw.Inputs {
		v, err := ParseVarnode(text)
		if err != nil {
			return nil, fmt.Errorf("inputs: %w", err)
		}
		f.Inputs[v] = value
	}

	return f, nil
}
