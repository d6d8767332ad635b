package gen

import (
	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/jittype"
)

// ForceUniformZExt brings the value on top of the stack, of type from, to the
// width of to by zero extension.
//
// Nothing is emitted when from is at least as wide as to; the other operand is
// widened by the opposite call. The returned type is the type the value has
// afterwards.
func ForceUniformZExt(buf emit.Buffer, from, to jittype.Type) jittype.Type {
	return forceUniform(buf, emit.OpZext, from, to)
}

// ForceUniformSExt is ForceUniformZExt for operations that read their operands
// as signed. The value must already be sign-extended within its own width; see
// SignExtendFrom.
func ForceUniformSExt(buf emit.Buffer, from, to jittype.Type) jittype.Type {
	return forceUniform(buf, emit.OpSext, from, to)
}

// SignExtendFrom copies bit 8*size-1 of the value on top of the stack, of type
// t, into the bits above it. A varnode narrower than its type, such as a
// 3-byte varnode held in 32 bits, reads its sign from its own top byte.
//
// Nothing is emitted when the varnode fills its type.
func SignExtendFrom(buf emit.Buffer, size int, t jittype.Type) jittype.Type {
	it, ok := t.(jittype.IntType)
	if !ok {
		return t
	}

	bits := 8 * size
	if bits <= 0 || bits >= int(it.Width) {
		return it
	}

	shift := uint64(int(it.Width) - bits)
	buf.Emit(emit.Const(it, shift))
	buf.Emit(emit.Native(emit.OpShl, it))
	buf.Emit(emit.Const(it, shift))
	buf.Emit(emit.Native(emit.OpSar, it))

	return it
}

func forceUniform(
	buf emit.Buffer,
	op emit.Op,
	from, to jittype.Type,
) jittype.Type {
	fi, fromFixed := from.(jittype.IntType)
	ti, toFixed := to.(jittype.IntType)

	switch {
	case fromFixed && toFixed:
		if fi.Width >= ti.Width {
			return fi
		}

		buf.Emit(emit.Convert(op, fi, ti))

		return ti
	case isMp(from) && (toFixed || isMp(to)),
		isMp(to) && fromFixed:
		unimplemented("conversion between %s and %s", from, to)
	default:
		invalid("cannot make operands uniform", from, to)
	}

	panic("unreachable")
}

// Convert brings the value on top of the stack, of type from, to exactly the
// width of to: zero extension when narrower, truncation when wider.
func Convert(buf emit.Buffer, from, to jittype.Type) jittype.Type {
	fi, fromFixed := from.(jittype.IntType)
	ti, toFixed := to.(jittype.IntType)

	switch {
	case fromFixed && toFixed:
		switch {
		case fi.Width < ti.Width:
			buf.Emit(emit.Convert(emit.OpZext, fi, ti))
		case fi.Width > ti.Width:
			buf.Emit(emit.Convert(emit.OpTrunc, fi, ti))
		}

		return ti
	case isMp(from) && (toFixed || isMp(to)),
		isMp(to) && fromFixed:
		unimplemented("conversion between %s and %s", from, to)
	default:
		invalid("cannot convert", from, to)
	}

	panic("unreachable")
}

func isMp(t jittype.Type) bool {
	_, ok := t.(jittype.MpIntType)
	return ok
}
