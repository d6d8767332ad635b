package pcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Space is an address space a varnode lives in.
type Space uint8

// The address spaces. The index of a space is what LOAD and STORE name in
// their first input.
const (
	SpaceConst Space = iota
	SpaceUnique
	SpaceRegister
	SpaceRAM

	numSpaces
)

var spaceNames = [numSpaces]string{
	SpaceConst:    "const",
	SpaceUnique:   "unique",
	SpaceRegister: "register",
	SpaceRAM:      "ram",
}

func (s Space) String() string {
	if s < numSpaces {
		return spaceNames[s]
	}

	return fmt.Sprintf("space%d", uint8(s))
}

// Valid tells if s is a known space.
func (s Space) Valid() bool {
	return s < numSpaces
}

// ParseSpace returns the space with the given name.
func ParseSpace(s string) (Space, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range spaceNames {
		if name == s {
			return Space(i), nil
		}
	}

	return 0, fmt.Errorf("unknown address space %q", s)
}

// A Varnode is a contiguous range of bytes in an address space. In the const
// space the offset is the value itself.
type Varnode struct {
	Space  Space
	Offset uint64
	Size   int
}

// Const returns a constant varnode.
func Const(value uint64, size int) Varnode {
	return Varnode{Space: SpaceConst, Offset: value, Size: size}
}

// Reg returns a register varnode.
func Reg(offset uint64, size int) Varnode {
	return Varnode{Space: SpaceRegister, Offset: offset, Size: size}
}

// Unique returns a temporary varnode.
func Unique(offset uint64, size int) Varnode {
	return Varnode{Space: SpaceUnique, Offset: offset, Size: size}
}

// RAM returns a memory varnode.
func RAM(offset uint64, size int) Varnode {
	return Varnode{Space: SpaceRAM, Offset: offset, Size: size}
}

// IsConst tells if the varnode is a constant.
func (v Varnode) IsConst() bool {
	return v.Space == SpaceConst
}

func (v Varnode) String() string {
	return fmt.Sprintf("%s:%#x:%d", v.Space, v.Offset, v.Size)
}

// ParseVarnode reads a varnode written as space:offset:size.
func ParseVarnode(s string) (Varnode, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Varnode{}, fmt.Errorf("varnode %q is not space:offset:size", s)
	}

	space, err := ParseSpace(parts[0])
	if err != nil {
		return Varnode{}, err
	}

	offset, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 64)
	if err != nil {
		return Varnode{}, fmt.Errorf("varnode %q: invalid offset: %w", s, err)
	}

	size, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || size <= 0 {
		return Varnode{}, fmt.Errorf("varnode %q: invalid size", s)
	}

	return Varnode{Space: space, Offset: offset, Size: size}, nil
}
