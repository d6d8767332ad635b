// Package jittype defines the operand types that flow through generated code.
//
// The lattice is closed: a value is either a fixed-width integer of one of the
// host widths, or a multi-precision integer whose byte length does not fit any
// host width. Signedness of a fixed-width type only guides instruction
// selection; the bits of a value are always kept zero-extended to its width.
package jittype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCombination is returned when two types cannot be joined.
var ErrInvalidCombination = errors.New("invalid type combination")

// Width is the bit width of a fixed-width integer type.
type Width uint8

// The host widths.
const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

// Widths lists the supported fixed widths from narrowest to widest.
func Widths() []Width {
	return []Width{W8, W16, W32, W64}
}

// Bytes returns the number of bytes of the width.
func (w Width) Bytes() int {
	return int(w) / 8
}

// Mask returns the mask selecting the low w bits.
func (w Width) Mask() uint64 {
	if w == W64 {
		return ^uint64(0)
	}

	return (uint64(1) << w) - 1
}

// Valid tells if w is one of the host widths.
func (w Width) Valid() bool {
	switch w {
	case W8, W16, W32, W64:
		return true
	default:
		return false
	}
}

// Type is an operand type. Only IntType and MpIntType implement it.
type Type interface {
	fmt.Stringer

	// Size returns the number of bytes a value of the type occupies.
	Size() int

	jitType()
}

// IntType is a fixed-width integer.
type IntType struct {
	Width  Width
	Signed bool
}

// Int returns the fixed-width type of the given width and signedness.
func Int(w Width, signed bool) IntType {
	if !w.Valid() {
		panic(fmt.Sprintf("invalid integer width %d", w))
	}

	return IntType{Width: w, Signed: signed}
}

// Frequently used fixed-width types.
var (
	U8  = IntType{Width: W8}
	U16 = IntType{Width: W16}
	U32 = IntType{Width: W32}
	U64 = IntType{Width: W64}
	S8  = IntType{Width: W8, Signed: true}
	S16 = IntType{Width: W16, Signed: true}
	S32 = IntType{Width: W32, Signed: true}
	S64 = IntType{Width: W64, Signed: true}

	// Bool is the type of comparison results.
	Bool = U8
)

func (IntType) jitType() {}

// Size returns the number of bytes of the type.
func (t IntType) Size() int {
	return t.Width.Bytes()
}

// Mask returns the mask selecting the bits of the type.
func (t IntType) Mask() uint64 {
	return t.Width.Mask()
}

// AsSigned returns the signed type of the same width.
func (t IntType) AsSigned() IntType {
	t.Signed = true
	return t
}

// AsUnsigned returns the unsigned type of the same width.
func (t IntType) AsUnsigned() IntType {
	t.Signed = false
	return t
}

func (t IntType) String() string {
	if t.Signed {
		return "s" + strconv.Itoa(int(t.Width))
	}

	return "u" + strconv.Itoa(int(t.Width))
}

// MpIntType is a multi-precision integer of a fixed byte length.
type MpIntType struct {
	Bytes int
}

// MpInt returns the multi-precision type of the given byte length.
func MpInt(bytes int) MpIntType {
	if bytes <= 8 {
		panic(fmt.Sprintf("multi-precision type of %d bytes fits a host width", bytes))
	}

	return MpIntType{Bytes: bytes}
}

func (MpIntType) jitType() {}

// Size returns the number of bytes of the type.
func (t MpIntType) Size() int {
	return t.Bytes
}

// Legs returns the number of 32-bit legs a value of the type occupies.
func (t MpIntType) Legs() int {
	return (t.Bytes + 3) / 4
}

func (t MpIntType) String() string {
	return "mp" + strconv.Itoa(t.Bytes)
}

// WidthForSize returns the narrowest host width holding size bytes.
func WidthForSize(size int) (Width, bool) {
	switch {
	case size <= 0:
		return 0, false
	case size == 1:
		return W8, true
	case size == 2:
		return W16, true
	case size <= 4:
		return W32, true
	case size <= 8:
		return W64, true
	default:
		return 0, false
	}
}

// IsHostSize reports whether size bytes fill a host width exactly. Values of
// other sizes live in the low bits of the next wider width.
func IsHostSize(size int) bool {
	w, ok := WidthForSize(size)
	return ok && w.Bytes() == size
}

// SizeMask returns the mask selecting the low size bytes.
func SizeMask(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}

	if size <= 0 {
		return 0
	}

	return 1<<(8*uint(size)) - 1
}

// ForSize returns the type used for a value of size bytes. Sizes between host
// widths round up: 3 bytes are held in 32 bits and 5 to 7 bytes in 64 bits.
func ForSize(size int, signed bool) (Type, error) {
	if size <= 0 {
		return nil, fmt.Errorf("no type for %d bytes", size)
	}

	if w, ok := WidthForSize(size); ok {
		return IntType{Width: w, Signed: signed}, nil
	}

	return MpIntType{Bytes: size}, nil
}

// MustForSize is ForSize that panics on error.
func MustForSize(size int, signed bool) Type {
	t, err := ForSize(size, signed)
	if err != nil {
		panic(err)
	}

	return t
}

// Join returns the least type both a and b can be represented in.
//
// Equal widths keep a unchanged. Different widths take the wider width with
// the signedness of the wider operand. A multi-precision operand makes the
// join multi-precision.
func Join(a, b Type) (Type, error) {
	switch at := a.(type) {
	case IntType:
		switch bt := b.(type) {
		case IntType:
			if bt.Width > at.Width {
				return bt, nil
			}
			return at, nil
		case MpIntType:
			return bt, nil
		}
	case MpIntType:
		switch bt := b.(type) {
		case IntType:
			return at, nil
		case MpIntType:
			if bt.Bytes > at.Bytes {
				return bt, nil
			}
			return at, nil
		}
	}

	return nil, fmt.Errorf("%w: %v and %v", ErrInvalidCombination, a, b)
}

// Parse reads a type from its String form.
func Parse(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case strings.HasPrefix(s, "mp"):
		n, err := strconv.Atoi(s[2:])
		if err != nil || n <= 8 {
			return nil, fmt.Errorf("invalid multi-precision type %q", s)
		}
		return MpIntType{Bytes: n}, nil
	case strings.HasPrefix(s, "u"), strings.HasPrefix(s, "s"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || !Width(n).Valid() || n > 64 {
			return nil, fmt.Errorf("invalid integer type %q", s)
		}
		return IntType{Width: Width(n), Signed: s[0] == 's'}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", s)
	}
}
