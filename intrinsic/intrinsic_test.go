package intrinsic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
)

func invoke(name intrinsic.Name, w jittype.Width, args ...uint64) uint64 {
	e, ok := intrinsic.Lookup(name, w)
	Expect(ok).To(BeTrue())

	v, err := e.Invoke(args...)
	Expect(err).NotTo(HaveOccurred())

	return v
}

var _ = Describe("Intrinsics", func() {
	It("should provide every family at every width", func() {
		Expect(intrinsic.Symbols()).To(HaveLen(11 * 4))

		e, ok := intrinsic.Resolve("divideUnsigned32")
		Expect(ok).To(BeTrue())
		Expect(e.Name).To(Equal(intrinsic.DivideUnsigned))
		Expect(e.Width).To(Equal(jittype.W32))
		Expect(e.Arity).To(Equal(2))
		Expect(e.Result).To(Equal(jittype.U32))
	})

	Context("divideUnsigned", func() {
		It("should divide 32-bit values", func() {
			Expect(invoke(intrinsic.DivideUnsigned, jittype.W32, 100, 7)).
				To(Equal(uint64(14)))
		})

		It("should treat the high bit as magnitude", func() {
			Expect(invoke(intrinsic.DivideUnsigned, jittype.W32, 0xfffffffe, 2)).
				To(Equal(uint64(0x7fffffff)))
			Expect(invoke(intrinsic.DivideUnsigned, jittype.W64,
				0xffffffffffffffff, 0x10)).
				To(Equal(uint64(0x0fffffffffffffff)))
		})

		It("should trap on a zero divisor", func() {
			e, _ := intrinsic.Lookup(intrinsic.DivideUnsigned, jittype.W64)
			_, err := e.Invoke(5, 0)
			Expect(err).To(MatchError(intrinsic.ErrDivideByZero))

			e, _ = intrinsic.Lookup(intrinsic.RemainderUnsigned, jittype.W8)
			_, err = e.Invoke(5, 0x100)
			Expect(err).To(MatchError(intrinsic.ErrDivideByZero))
		})
	})

	It("should compute unsigned remainders", func() {
		Expect(invoke(intrinsic.RemainderUnsigned, jittype.W16, 0xffff, 10)).
			To(Equal(uint64(5)))
	})

	It("should compare unsigned", func() {
		Expect(invoke(intrinsic.CompareUnsigned, jittype.W8, 0x80, 0x7f)).
			To(Equal(uint64(1)))
		Expect(invoke(intrinsic.CompareUnsigned, jittype.W8, 0x7f, 0x80)).
			To(Equal(uint64(0xffffffff)))
		Expect(invoke(intrinsic.CompareUnsigned, jittype.W64, 3, 3)).
			To(Equal(uint64(0)))
	})

	DescribeTable("carry flags",
		func(name intrinsic.Name, w jittype.Width, a, b, expected uint64) {
			Expect(invoke(name, w, a, b)).To(Equal(expected))
		},
		Entry("carry 8", intrinsic.Carry, jittype.W8, uint64(0xff), uint64(1), uint64(1)),
		Entry("no carry 8", intrinsic.Carry, jittype.W8, uint64(0xfe), uint64(1), uint64(0)),
		Entry("carry 64", intrinsic.Carry, jittype.W64, ^uint64(0), uint64(1), uint64(1)),
		Entry("scarry 32", intrinsic.SCarry, jittype.W32, uint64(0x7fffffff), uint64(1), uint64(1)),
		Entry("no scarry 32", intrinsic.SCarry, jittype.W32, uint64(0xffffffff), uint64(1), uint64(0)),
		Entry("scarry 64", intrinsic.SCarry, jittype.W64, uint64(1)<<63, uint64(1)<<63, uint64(1)),
		Entry("sborrow 16", intrinsic.SBorrow, jittype.W16, uint64(0x8000), uint64(1), uint64(1)),
		Entry("no sborrow 16", intrinsic.SBorrow, jittype.W16, uint64(0), uint64(1), uint64(0)),
	)

	DescribeTable("shifts",
		func(name intrinsic.Name, w jittype.Width, a, b, expected uint64) {
			Expect(invoke(name, w, a, b)).To(Equal(expected))
		},
		Entry("left", intrinsic.IntLeft, jittype.W8, uint64(0x81), uint64(1), uint64(0x02)),
		Entry("left out", intrinsic.IntLeft, jittype.W32, uint64(1), uint64(32), uint64(0)),
		Entry("right", intrinsic.IntRight, jittype.W16, uint64(0x8000), uint64(15), uint64(1)),
		Entry("right out", intrinsic.IntRight, jittype.W64, ^uint64(0), uint64(64), uint64(0)),
		Entry("sright", intrinsic.IntSRight, jittype.W8, uint64(0x80), uint64(3), uint64(0xf0)),
		Entry("sright out", intrinsic.IntSRight, jittype.W32, uint64(0x80000000), uint64(100), uint64(0xffffffff)),
		Entry("sright positive out", intrinsic.IntSRight, jittype.W32, uint64(0x7fffffff), uint64(40), uint64(0)),
	)

	It("should count bits", func() {
		Expect(invoke(intrinsic.PopCount, jittype.W16, 0xf0f0)).To(Equal(uint64(8)))
		Expect(invoke(intrinsic.LzCount, jittype.W16, 0x00f0)).To(Equal(uint64(8)))
		Expect(invoke(intrinsic.LzCount, jittype.W32, 0)).To(Equal(uint64(32)))
		Expect(invoke(intrinsic.LzCount, jittype.W64, 1)).To(Equal(uint64(63)))
	})

	It("should check the argument count", func() {
		e, _ := intrinsic.Lookup(intrinsic.PopCount, jittype.W8)
		_, err := e.Invoke(1, 2)
		Expect(err).To(HaveOccurred())
	})
})
