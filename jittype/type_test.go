package jittype_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcodejit/jittype"
)

var _ = Describe("Type", func() {
	Context("ForSize", func() {
		DescribeTable("maps byte sizes to host widths",
			func(size int, expected jittype.Type) {
				t, err := jittype.ForSize(size, false)
				Expect(err).NotTo(HaveOccurred())
				Expect(t).To(Equal(expected))
			},
			Entry("1 byte", 1, jittype.U8),
			Entry("2 bytes", 2, jittype.U16),
			Entry("3 bytes", 3, jittype.U32),
			Entry("4 bytes", 4, jittype.U32),
			Entry("5 bytes", 5, jittype.U64),
			Entry("6 bytes", 6, jittype.U64),
			Entry("7 bytes", 7, jittype.U64),
			Entry("8 bytes", 8, jittype.U64),
			Entry("16 bytes", 16, jittype.MpInt(16)),
		)

		It("should keep the requested signedness", func() {
			Expect(jittype.MustForSize(4, true)).To(Equal(jittype.S32))
		})

		It("should reject empty sizes", func() {
			_, err := jittype.ForSize(0, false)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("sizes between host widths", func() {
		DescribeTable("tells host sizes apart",
			func(size int, host bool) {
				Expect(jittype.IsHostSize(size)).To(Equal(host))
			},
			Entry("1 byte", 1, true),
			Entry("2 bytes", 2, true),
			Entry("3 bytes", 3, false),
			Entry("4 bytes", 4, true),
			Entry("5 bytes", 5, false),
			Entry("6 bytes", 6, false),
			Entry("7 bytes", 7, false),
			Entry("8 bytes", 8, true),
			Entry("16 bytes", 16, false),
			Entry("no bytes", 0, false),
		)

		It("should hold 3 bytes in the low bits of 32", func() {
			t := jittype.MustForSize(3, true)
			Expect(t).To(Equal(jittype.S32))
			Expect(t.Size()).To(Equal(4))
			Expect(jittype.SizeMask(3)).To(Equal(uint64(0xFFFFFF)))
		})

		It("should hold 6 bytes in the low bits of 64", func() {
			t := jittype.MustForSize(6, false)
			Expect(t).To(Equal(jittype.U64))
			Expect(jittype.SizeMask(6)).To(Equal(uint64(0xFFFF_FFFF_FFFF)))
		})

		It("should mask whole registers at 8 bytes", func() {
			Expect(jittype.SizeMask(8)).To(Equal(^uint64(0)))
			Expect(jittype.SizeMask(0)).To(BeZero())
		})
	})

	Context("Join", func() {
		It("should keep the left type on equal widths", func() {
			t, err := jittype.Join(jittype.S32, jittype.U32)
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(jittype.S32))
		})

		It("should take the wider width and its signedness", func() {
			t, err := jittype.Join(jittype.S32, jittype.U64)
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(jittype.U64))

			t, err = jittype.Join(jittype.S64, jittype.U8)
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(jittype.S64))
		})

		It("should become multi-precision with a multi-precision side", func() {
			t, err := jittype.Join(jittype.U64, jittype.MpInt(12))
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(jittype.MpInt(12)))

			t, err = jittype.Join(jittype.MpInt(16), jittype.MpInt(12))
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(jittype.MpInt(16)))
		})

		It("should reject missing types", func() {
			_, err := jittype.Join(nil, jittype.U8)
			Expect(err).To(MatchError(jittype.ErrInvalidCombination))
		})
	})

	Context("Parse", func() {
		It("should round trip every fixed width", func() {
			for _, w := range jittype.Widths() {
				for _, signed := range []bool{false, true} {
					t := jittype.Int(w, signed)
					parsed, err := jittype.Parse(t.String())
					Expect(err).NotTo(HaveOccurred())
					Expect(parsed).To(Equal(t))
				}
			}
		})

		It("should parse multi-precision types", func() {
			t, err := jittype.Parse("mp16")
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(jittype.MpInt(16)))
			Expect(t.(jittype.MpIntType).Legs()).To(Equal(4))
		})

		It("should reject odd widths", func() {
			_, err := jittype.Parse("u24")
			Expect(err).To(HaveOccurred())
			_, err = jittype.Parse("u264")
			Expect(err).To(HaveOccurred())
			_, err = jittype.Parse("mp8")
			Expect(err).To(HaveOccurred())
		})
	})

	It("should mask to the width", func() {
		Expect(jittype.U8.Mask()).To(Equal(uint64(0xff)))
		Expect(jittype.S32.Mask()).To(Equal(uint64(0xffffffff)))
		Expect(jittype.U64.Mask()).To(Equal(^uint64(0)))
	})

	It("should panic on a width the host does not have", func() {
		Expect(func() { jittype.Int(24, false) }).To(Panic())
	})
})
