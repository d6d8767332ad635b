package gen_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/pcode"
)

// generateOps compiles one block at 0x1000 falling through to 0x1004 and
// returns the instructions between the block label and the fall-through exit.
func generateOps(model gen.TypeModel, ops ...string) []emit.Inst {
	b := &pcode.Block{Address: 0x1000, Next: 0x1004}
	for _, text := range ops {
		b.Ops = append(b.Ops, pcode.MustParseOp(0x1000, text))
	}

	l := emit.NewListing()
	Expect(gen.NewDriver(model).Generate(pcode.NewPassage(b), l)).To(Succeed())

	insts := l.Insts()
	Expect(insts[0]).To(Equal(emit.Mark(0)))
	Expect(insts[len(insts)-1]).To(Equal(emit.Exit(0x1004)))

	return insts[1 : len(insts)-1]
}

func call(symbol string, arity int, result jittype.Type) emit.Inst {
	return emit.Inst{Op: emit.OpCall, Type: result, Symbol: symbol, Arity: arity}
}

var (
	r0  = pcode.Reg(0x0, 4)
	r4  = pcode.Reg(0x4, 4)
	r8  = pcode.Reg(0x8, 8)
	r10 = pcode.Reg(0x10, 4)
	r14 = pcode.Reg(0x14, 4)
	u0  = pcode.Unique(0x0, 4)
)

var _ = Describe("Generators", func() {
	var model *gen.MapModel

	BeforeEach(func() {
		model = gen.NewMapModel(nil)
	})

	It("should call the unsigned division intrinsic for INT_DIV", func() {
		insts := generateOps(model,
			"register:0x10:4 = INT_DIV register:0x0:4, register:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r0, jittype.U32),
			emit.Load(r4, jittype.U32),
			call("divideUnsigned32", 2, jittype.U32),
			emit.Store(r10, jittype.U32),
		}))
	})

	It("should widen the left operand before producing the right one", func() {
		insts := generateOps(model,
			"register:0x10:4 = INT_ADD register:0x0:1, register:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(pcode.Reg(0, 1), jittype.U8),
			emit.Convert(emit.OpZext, jittype.U8, jittype.U32),
			emit.Load(r4, jittype.U32),
			emit.Native(emit.OpAdd, jittype.U32),
			emit.Store(r10, jittype.U32),
		}))
	})

	It("should widen the right operand after producing it", func() {
		insts := generateOps(model,
			"register:0x8:8 = INT_MULT register:0x8:8, register:0x0:2")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r8, jittype.U64),
			emit.Load(pcode.Reg(0, 2), jittype.U16),
			emit.Convert(emit.OpZext, jittype.U16, jittype.U64),
			emit.Native(emit.OpMul, jittype.U64),
			emit.Store(r8, jittype.U64),
		}))
	})

	It("should sign-extend operands of INT_SDIV", func() {
		model.Set(pcode.Reg(0, 1), jittype.S8).Set(r4, jittype.S32)

		insts := generateOps(model,
			"register:0x10:4 = INT_SDIV register:0x0:1, register:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(pcode.Reg(0, 1), jittype.S8),
			emit.Convert(emit.OpSext, jittype.S8, jittype.S32),
			emit.Load(r4, jittype.S32),
			emit.Native(emit.OpDiv, jittype.S32),
			emit.Store(r10, jittype.U32),
		}))
	})

	It("should compare unsigned values through the intrinsic", func() {
		insts := generateOps(model,
			"unique:0x0:1 = INT_LESS register:0x0:4, register:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r0, jittype.U32),
			emit.Load(r4, jittype.U32),
			call("compareUnsigned32", 2, jittype.S32),
			emit.Const(jittype.S32, 0),
			emit.Native(emit.OpCmpLt, jittype.S32),
			emit.Store(pcode.Unique(0, 1), jittype.U8),
		}))
	})

	It("should compare signed values natively", func() {
		insts := generateOps(model,
			"unique:0x0:1 = INT_SLESSEQUAL register:0x0:4, register:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r0, jittype.U32),
			emit.Load(r4, jittype.U32),
			emit.Native(emit.OpCmpLe, jittype.S32),
			emit.Store(pcode.Unique(0, 1), jittype.U8),
		}))
	})

	It("should pass a 64-bit amount to shift intrinsics", func() {
		insts := generateOps(model,
			"register:0x0:4 = INT_SRIGHT register:0x0:4, register:0x8:1")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r0, jittype.U32),
			emit.Load(pcode.Reg(8, 1), jittype.U8),
			emit.Convert(emit.OpZext, jittype.U8, jittype.U64),
			call("intSRight32", 2, jittype.U32),
			emit.Store(r0, jittype.U32),
		}))
	})

	It("should concatenate with PIECE", func() {
		insts := generateOps(model,
			"register:0x8:8 = PIECE register:0x10:4, register:0x14:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r10, jittype.U32),
			emit.Convert(emit.OpZext, jittype.U32, jittype.U64),
			emit.Const(jittype.U64, 32),
			emit.Native(emit.OpShl, jittype.U64),
			emit.Load(r14, jittype.U32),
			emit.Convert(emit.OpZext, jittype.U32, jittype.U64),
			emit.Native(emit.OpOr, jittype.U64),
			emit.Store(r8, jittype.U64),
		}))
	})

	It("should extract bytes with SUBPIECE", func() {
		insts := generateOps(model,
			"unique:0x0:4 = SUBPIECE register:0x8:8, const:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r8, jittype.U64),
			emit.Const(jittype.U32, 4),
			emit.Convert(emit.OpZext, jittype.U32, jittype.U64),
			emit.Const(jittype.U64, 8),
			emit.Native(emit.OpMul, jittype.U64),
			call("intRight64", 2, jittype.U64),
			emit.Convert(emit.OpTrunc, jittype.U64, jittype.U32),
			emit.Store(u0, jittype.U32),
		}))
	})

	It("should extend with INT_ZEXT and INT_SEXT", func() {
		Expect(generateOps(model,
			"register:0x8:8 = INT_SEXT register:0x0:2")).To(Equal([]emit.Inst{
			emit.Load(pcode.Reg(0, 2), jittype.U16),
			emit.Convert(emit.OpSext, jittype.U16, jittype.U64),
			emit.Store(r8, jittype.U64),
		}))
	})

	It("should negate booleans with an exclusive or", func() {
		Expect(generateOps(model,
			"unique:0x0:1 = BOOL_NEGATE register:0x0:1")).To(Equal([]emit.Inst{
			emit.Load(pcode.Reg(0, 1), jittype.U8),
			emit.Const(jittype.U8, 1),
			emit.Native(emit.OpXor, jittype.U8),
			emit.Store(pcode.Unique(0, 1), jittype.U8),
		}))
	})

	It("should copy constants without arithmetic", func() {
		Expect(generateOps(model,
			"register:0x0:4 = COPY const:0x2a:4")).To(Equal([]emit.Inst{
			emit.Const(jittype.U32, 0x2a),
			emit.Store(r0, jittype.U32),
		}))
	})

	It("should truncate bit counts to the output", func() {
		Expect(generateOps(model,
			"unique:0x0:1 = POPCOUNT register:0x8:8")).To(Equal([]emit.Inst{
			emit.Load(r8, jittype.U64),
			call("popCount64", 1, jittype.S32),
			emit.Convert(emit.OpTrunc, jittype.S32, jittype.U8),
			emit.Store(pcode.Unique(0, 1), jittype.U8),
		}))
	})

	It("should load and store through an address space", func() {
		insts := generateOps(model,
			"register:0x0:4 = LOAD const:0x3:8, register:0x8:8",
			"STORE const:0x3:8, register:0x8:8, register:0x4:4")

		Expect(insts).To(Equal([]emit.Inst{
			emit.Load(r8, jittype.U64),
			emit.LoadInd(pcode.SpaceRAM, 4, jittype.U32),
			emit.Store(r0, jittype.U32),
			emit.Load(r8, jittype.U64),
			emit.Load(r4, jittype.U32),
			emit.StoreInd(pcode.SpaceRAM, 4, jittype.U32),
		}))
	})

	It("should trap on unimplemented instructions", func() {
		Expect(generateOps(model, "UNIMPLEMENTED")).To(Equal([]emit.Inst{
			emit.Trap("unimplemented instruction at 0x1000"),
		}))
	})

	It("should compute carries through intrinsics", func() {
		insts := generateOps(model,
			"unique:0x0:1 = INT_SBORROW register:0x0:4, register:0x4:4")

		Expect(insts).To(ContainElement(call("sBorrow32", 2, jittype.Bool)))
	})

	Context("with varnodes narrower than their host width", func() {
		var (
			r0x3 = pcode.Reg(0x0, 3)
			r4x3 = pcode.Reg(0x4, 3)
		)

		signExtend24 := []emit.Inst{
			emit.Const(jittype.U32, 8),
			emit.Native(emit.OpShl, jittype.U32),
			emit.Const(jittype.U32, 8),
			emit.Native(emit.OpSar, jittype.U32),
		}

		It("should sign-extend both INT_SDIV operands from bit 23", func() {
			insts := generateOps(model,
				"register:0x10:3 = INT_SDIV register:0x0:3, register:0x4:3")

			expected := []emit.Inst{emit.Load(r0x3, jittype.U32)}
			expected = append(expected, signExtend24...)
			expected = append(expected, emit.Load(r4x3, jittype.U32))
			expected = append(expected, signExtend24...)
			expected = append(expected,
				emit.Native(emit.OpDiv, jittype.S32),
				emit.Store(pcode.Reg(0x10, 3), jittype.U32),
			)
			Expect(insts).To(Equal(expected))
		})

		It("should fill the output of INT_SEXT from the input's top bit", func() {
			insts := generateOps(model, "register:0x10:4 = INT_SEXT register:0x0:3")

			expected := []emit.Inst{emit.Load(r0x3, jittype.U32)}
			expected = append(expected, signExtend24...)
			expected = append(expected, emit.Store(r10, jittype.U32))
			Expect(insts).To(Equal(expected))
		})

		It("should shift INT_SRIGHT operands with their own sign", func() {
			insts := generateOps(model,
				"register:0x0:3 = INT_SRIGHT register:0x0:3, register:0x8:1")

			Expect(insts[1:5]).To(Equal(signExtend24))
			Expect(insts).To(ContainElement(call("intSRight32", 2, jittype.U32)))
		})

		It("should not count the padding bits in LZCOUNT", func() {
			Expect(generateOps(model,
				"unique:0x0:1 = LZCOUNT register:0x0:3")).To(Equal([]emit.Inst{
				emit.Load(r0x3, jittype.U32),
				call("lzCount32", 1, jittype.S32),
				emit.Const(jittype.S32, 8),
				emit.Native(emit.OpSub, jittype.S32),
				emit.Convert(emit.OpTrunc, jittype.S32, jittype.U8),
				emit.Store(pcode.Unique(0, 1), jittype.U8),
			}))
		})

		It("should carry out of bit 47 for 6-byte operands", func() {
			r6 := pcode.Reg(0x8, 6)
			Expect(generateOps(model,
				"unique:0x0:1 = INT_CARRY register:0x8:6, register:0x8:6")).
				To(Equal([]emit.Inst{
					emit.Load(r6, jittype.U64),
					emit.Load(r6, jittype.U64),
					emit.Native(emit.OpAdd, jittype.U64),
					emit.Const(jittype.U64, 48),
					emit.Native(emit.OpShr, jittype.U64),
					emit.Const(jittype.U64, 0),
					emit.Native(emit.OpCmpNe, jittype.U64),
					emit.Store(pcode.Unique(0, 1), jittype.U8),
				}))
		})

		It("should bias signed sums before testing INT_SCARRY", func() {
			insts := generateOps(model,
				"unique:0x0:1 = INT_SCARRY register:0x0:3, register:0x4:3")

			Expect(insts).NotTo(ContainElement(call("sCarry32", 2, jittype.Bool)))
			Expect(insts[len(insts)-8:]).To(Equal([]emit.Inst{
				emit.Native(emit.OpAdd, jittype.U32),
				emit.Const(jittype.U32, 1<<23),
				emit.Native(emit.OpAdd, jittype.U32),
				emit.Const(jittype.U32, 24),
				emit.Native(emit.OpShr, jittype.U32),
				emit.Const(jittype.U32, 0),
				emit.Native(emit.OpCmpNe, jittype.U32),
				emit.Store(pcode.Unique(0, 1), jittype.U8),
			}))
		})

		It("should mask constants to their varnode", func() {
			Expect(generateOps(model,
				"register:0x0:3 = COPY const:0x12345678:3")).To(Equal([]emit.Inst{
				emit.Const(jittype.U32, 0x345678),
				emit.Store(r0x3, jittype.U32),
			}))
		})
	})

	It("should reject boolean operations on wide operands", func() {
		Expect(func() {
			generateOps(model,
				"unique:0x0:1 = BOOL_AND register:0x0:4, register:0x4:4")
		}).To(PanicWith(BeAssignableToTypeOf(&gen.InvalidCombinationError{})))
	})

	It("should reject LOAD from the constant space", func() {
		Expect(func() {
			generateOps(model,
				"register:0x0:4 = LOAD const:0x0:8, register:0x8:8")
		}).To(PanicWith(BeAssignableToTypeOf(&gen.InvalidCombinationError{})))
	})
})
