package main

import (
	_ "embed"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pcodejit/emit"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
)

//go:embed countdown.yaml
var passageYAML []byte

func main() {
	f, err := pcode.ParseFile(passageYAML)
	if err != nil {
		panic(err)
	}

	code := emit.NewListing()
	if err := gen.NewDriver(nil).Generate(f.Passage, code); err != nil {
		panic(err)
	}
	fmt.Println(code.Render("countdown"))

	mem := machine.NewMemory(machine.DefaultCapacity)
	if err := mem.Init(f.Inputs); err != nil {
		panic(err)
	}

	engine := sim.NewSerialEngine()
	m := machine.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Machine")

	m.Load(code, mem)
	m.Start()

	if err := engine.Run(); err != nil {
		panic(err)
	}

	m.PrintState()

	sum, _ := mem.ReadVarnode(pcode.Reg(0x8, 8))
	fmt.Printf("sum: %d, exit: %s\n", sum, m.Exit())

	atexit.Exit(0)
}
