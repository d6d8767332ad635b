package main

import (
	_ "embed"
	"fmt"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/pcodejit/api"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
)

//go:embed udiv.yaml
var passageYAML []byte

func main() {
	f, err := pcode.ParseFile(passageYAML)
	if err != nil {
		panic(err)
	}

	model := gen.NewMapModel(nil)
	if err := model.SetAll(f.Types); err != nil {
		panic(err)
	}

	compiler := api.MakeCompilerBuilder().
		WithTypeModel(model).
		Build()

	unit, err := compiler.Compile(f.Passage)
	if err != nil {
		panic(err)
	}
	fmt.Println(unit.Code.Render("udiv"))

	mem := machine.NewMemory(machine.DefaultCapacity)
	if err := mem.Init(f.Inputs); err != nil {
		panic(err)
	}

	exit, err := unit.Run(mem)
	if err != nil {
		panic(err)
	}
	fmt.Println(exit)

	results := []struct {
		name string
		v    pcode.Varnode
	}{
		{"udiv", pcode.Reg(0x10, 4)},
		{"urem", pcode.Reg(0x14, 4)},
		{"sdiv", pcode.Reg(0x18, 4)},
		{"srem", pcode.Reg(0x1c, 4)},
		{"less", pcode.Reg(0x20, 1)},
		{"sless", pcode.Reg(0x21, 1)},
	}

	for _, r := range results {
		v, _ := mem.ReadVarnode(r.v)
		fmt.Printf("%-5s %#x\n", r.name, v)
	}

	atexit.Exit(0)
}
