package gen_test

import (
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/jittype"
)

var _ = Describe("Conversion", func() {
	var (
		mockCtrl *gomock.Controller
		buf      *MockBuffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = NewMockBuffer(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("when forcing uniform zero extension", func() {
		It("should emit nothing for equal widths", func() {
			t := gen.ForceUniformZExt(buf, jittype.S32, jittype.U32)

			Expect(t).To(Equal(jittype.S32))
		})

		It("should widen a narrower value", func() {
			buf.EXPECT().Emit(emit.Convert(emit.OpZext, jittype.U8, jittype.U32))

			t := gen.ForceUniformZExt(buf, jittype.U8, jittype.U32)

			Expect(t).To(Equal(jittype.U32))
		})

		It("should take the signedness of the wider side", func() {
			buf.EXPECT().Emit(emit.Convert(emit.OpZext, jittype.U16, jittype.S64))

			t := gen.ForceUniformZExt(buf, jittype.U16, jittype.S64)

			Expect(t).To(Equal(jittype.S64))
		})

		It("should leave a wider value alone", func() {
			t := gen.ForceUniformZExt(buf, jittype.U64, jittype.U8)

			Expect(t).To(Equal(jittype.U64))
		})

		It("should report multi-precision operands as unimplemented", func() {
			Expect(func() {
				gen.ForceUniformZExt(buf, jittype.MpInt(16), jittype.U32)
			}).To(PanicWith(BeAssignableToTypeOf(&gen.UnimplementedError{})))

			Expect(func() {
				gen.ForceUniformZExt(buf, jittype.U32, jittype.MpInt(12))
			}).To(PanicWith(BeAssignableToTypeOf(&gen.UnimplementedError{})))
		})

		It("should reject untyped operands", func() {
			Expect(func() {
				gen.ForceUniformZExt(buf, nil, jittype.U32)
			}).To(PanicWith(BeAssignableToTypeOf(&gen.InvalidCombinationError{})))
		})
	})

	Context("when forcing uniform sign extension", func() {
		It("should sign-extend a narrower value", func() {
			buf.EXPECT().Emit(emit.Convert(emit.OpSext, jittype.S8, jittype.U16))

			t := gen.ForceUniformSExt(buf, jittype.S8, jittype.U16)

			Expect(t).To(Equal(jittype.U16))
		})
	})

	Context("when sign-extending from a varnode size", func() {
		It("should copy bit 23 of a 3-byte value up through bit 31", func() {
			gomock.InOrder(
				buf.EXPECT().Emit(emit.Const(jittype.U32, 8)),
				buf.EXPECT().Emit(emit.Native(emit.OpShl, jittype.U32)),
				buf.EXPECT().Emit(emit.Const(jittype.U32, 8)),
				buf.EXPECT().Emit(emit.Native(emit.OpSar, jittype.U32)),
			)

			Expect(gen.SignExtendFrom(buf, 3, jittype.U32)).To(Equal(jittype.U32))
		})

		It("should shift by 16 for a 6-byte value", func() {
			gomock.InOrder(
				buf.EXPECT().Emit(emit.Const(jittype.S64, 16)),
				buf.EXPECT().Emit(emit.Native(emit.OpShl, jittype.S64)),
				buf.EXPECT().Emit(emit.Const(jittype.S64, 16)),
				buf.EXPECT().Emit(emit.Native(emit.OpSar, jittype.S64)),
			)

			gen.SignExtendFrom(buf, 6, jittype.S64)
		})

		It("should emit nothing when the varnode fills its type", func() {
			Expect(gen.SignExtendFrom(buf, 4, jittype.S32)).To(Equal(jittype.S32))
			Expect(gen.SignExtendFrom(buf, 16, jittype.MpInt(16))).
				To(Equal(jittype.MpInt(16)))
		})
	})

	Context("when converting to an output", func() {
		It("should re-type equal widths without code", func() {
			Expect(gen.Convert(buf, jittype.S16, jittype.U16)).To(Equal(jittype.U16))
		})

		It("should zero-extend narrower values", func() {
			buf.EXPECT().Emit(emit.Convert(emit.OpZext, jittype.S8, jittype.U64))

			Expect(gen.Convert(buf, jittype.S8, jittype.U64)).To(Equal(jittype.U64))
		})

		It("should truncate wider values", func() {
			buf.EXPECT().Emit(emit.Convert(emit.OpTrunc, jittype.U64, jittype.U8))

			Expect(gen.Convert(buf, jittype.U64, jittype.U8)).To(Equal(jittype.U8))
		})

		It("should report multi-precision outputs as unimplemented", func() {
			Expect(func() {
				gen.Convert(buf, jittype.U64, jittype.MpInt(16))
			}).To(PanicWith(BeAssignableToTypeOf(&gen.UnimplementedError{})))
		})
	})
})
