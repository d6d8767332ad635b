package machine_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/intrinsic"
	"github.com/sarchlab/pcodejit/jittype"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
)

var _ = Describe("Machine", func() {
	var (
		mem  *machine.Memory
		code *emit.Listing
	)

	BeforeEach(func() {
		mem = machine.NewMemory(machine.DefaultCapacity)
		code = emit.NewListing()
	})

	It("should run straight-line code to an exit", func() {
		Expect(mem.WriteVarnode(pcode.Reg(0, 4), 40)).To(Succeed())

		code.Emit(emit.Mark(0))
		code.Emit(emit.Load(pcode.Reg(0, 4), jittype.U32))
		code.Emit(emit.Const(jittype.U32, 2))
		code.Emit(emit.Native(emit.OpAdd, jittype.U32))
		code.Emit(emit.Store(pcode.Reg(4, 4), jittype.U32))
		code.Emit(emit.Exit(0x1004))

		exit, err := machine.Run(code, mem, machine.MakeBuilder())

		Expect(err).NotTo(HaveOccurred())
		Expect(exit.Target).To(Equal(uint64(0x1004)))
		Expect(exit.Trapped()).To(BeFalse())
		Expect(exit.Steps).To(Equal(6))
		Expect(mem.ReadVarnode(pcode.Reg(4, 4))).To(Equal(uint64(42)))
	})

	It("should loop until the condition clears", func() {
		Expect(mem.WriteVarnode(pcode.Reg(0, 1), 5)).To(Succeed())

		code.Emit(emit.Mark(0))
		code.Emit(emit.Load(pcode.Reg(0, 1), jittype.U8))
		code.Emit(emit.Const(jittype.U8, 1))
		code.Emit(emit.Native(emit.OpSub, jittype.U8))
		code.Emit(emit.Store(pcode.Reg(0, 1), jittype.U8))
		code.Emit(emit.Load(pcode.Reg(0, 1), jittype.U8))
		code.Emit(emit.JumpIf(0))
		code.Emit(emit.Exit(0x2000))

		exit, err := machine.Run(code, mem, machine.MakeBuilder())

		Expect(err).NotTo(HaveOccurred())
		Expect(exit.Target).To(Equal(uint64(0x2000)))
		Expect(mem.ReadVarnode(pcode.Reg(0, 1))).To(Equal(uint64(0)))
	})

	It("should stop on a division by zero", func() {
		code.Emit(emit.Const(jittype.U32, 1))
		code.Emit(emit.Const(jittype.U32, 0))
		code.EmitCall(emit.Call{Symbol: "divideUnsigned32", Arity: 2, Result: jittype.U32})
		code.Emit(emit.Exit(0))

		exit, err := machine.Run(code, mem, machine.MakeBuilder())

		Expect(err).NotTo(HaveOccurred())
		Expect(exit.Trapped()).To(BeTrue())
		Expect(errors.Is(exit.Fault, intrinsic.ErrDivideByZero)).To(BeTrue())
	})

	It("should stop on a trap", func() {
		code.Emit(emit.Trap("unimplemented instruction at 0x1000"))

		exit, err := machine.Run(code, mem, machine.MakeBuilder())

		Expect(err).NotTo(HaveOccurred())
		Expect(exit.Trap).To(ContainSubstring("0x1000"))
	})

	It("should give up after the step limit", func() {
		code.Emit(emit.Mark(0))
		code.Emit(emit.Jump(0))

		exit, err := machine.Run(code, mem, machine.MakeBuilder().WithMaxSteps(100))

		Expect(err).NotTo(HaveOccurred())
		Expect(exit.Fault).To(MatchError(machine.ErrStepLimit))
		Expect(exit.Steps).To(Equal(100))
	})

	It("should fault when control runs off the listing", func() {
		code.Emit(emit.Const(jittype.U8, 1))
		code.Emit(emit.Store(pcode.Reg(0, 1), jittype.U8))

		exit, err := machine.Run(code, mem, machine.MakeBuilder())

		Expect(err).NotTo(HaveOccurred())
		Expect(exit.Fault).To(MatchError(ContainSubstring("left the listing")))
	})

	It("should render its state", func() {
		code.Emit(emit.Const(jittype.U8, 0x5a))
		code.Emit(emit.Exit(0x10))

		engine := sim.NewSerialEngine()
		m := machine.MakeBuilder().WithEngine(engine).Build("Machine")
		m.Load(code, mem)
		m.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(m.Halted()).To(BeTrue())
		out := m.StateTable()
		Expect(out).To(ContainSubstring("0x5a"))
		Expect(out).To(ContainSubstring("exit to 0x10"))
	})

	It("should refuse listings with unplaced labels", func() {
		code.Emit(emit.Jump(3))

		Expect(func() {
			_, _ = machine.Run(code, mem, machine.MakeBuilder())
		}).To(Panic())
	})
})

var _ = Describe("Memory", func() {
	var mem *machine.Memory

	BeforeEach(func() {
		mem = machine.NewMemory(machine.DefaultCapacity)
	})

	It("should read unwritten bytes as zero", func() {
		Expect(mem.Read(pcode.SpaceRAM, 0x1234, 8)).To(Equal(uint64(0)))
	})

	It("should store values little-endian", func() {
		Expect(mem.Write(pcode.SpaceRAM, 0x10, 4, 0x11223344)).To(Succeed())

		data, err := mem.ReadBytes(pcode.SpaceRAM, 0x10, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{0x44, 0x33, 0x22, 0x11}))
	})

	It("should keep address spaces apart", func() {
		Expect(mem.Write(pcode.SpaceRAM, 0, 1, 1)).To(Succeed())
		Expect(mem.Write(pcode.SpaceRegister, 0, 1, 2)).To(Succeed())

		Expect(mem.Read(pcode.SpaceRAM, 0, 1)).To(Equal(uint64(1)))
		Expect(mem.Read(pcode.SpaceRegister, 0, 1)).To(Equal(uint64(2)))
	})

	It("should read constants as their offset", func() {
		Expect(mem.ReadVarnode(pcode.Const(0x1ff, 1))).To(Equal(uint64(0xff)))
	})

	It("should refuse the constant space and oversized values", func() {
		Expect(mem.Write(pcode.SpaceConst, 0, 1, 1)).NotTo(Succeed())
		_, err := mem.Read(pcode.SpaceRAM, 0, 9)
		Expect(err).To(HaveOccurred())
	})

	It("should fault beyond its capacity", func() {
		small := machine.NewMemory(0x10000)

		Expect(small.Write(pcode.SpaceRAM, 0x10000, 1, 1)).NotTo(Succeed())
	})

	It("should initialize varnodes", func() {
		Expect(mem.Init(map[pcode.Varnode]uint64{
			pcode.Reg(0, 2): 0xbeef,
		})).To(Succeed())

		Expect(mem.ReadVarnode(pcode.Reg(0, 2))).To(Equal(uint64(0xbeef)))
	})
})
