// Command pjit compiles a p-code passage from a YAML file, prints the
// generated code and runs it.
//
//	pjit [flags] passage.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pcodejit/api"
	"github.com/sarchlab/pcodejit/config"
	"github.com/sarchlab/pcodejit/gen"
	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
	"github.com/sarchlab/pcodejit/verify"
)

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command with the given arguments and returns its exit
// status.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.FromEnv()

	flags := flag.NewFlagSet("pjit", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var listingFlag = flags.Bool("listing", true, "print the generated code")
	var runFlag = flags.Bool("run", true, "run the compiled passage with the file's inputs")
	var checkFlag = flags.Bool("check", false, "compare the run against the interpreter")
	var reportFlag = flags.String("report", "", "write a lint and interpreter report to this file")
	var traceFlag = flags.Bool("trace", cfg.Trace, "trace generation and execution")
	var fallbackFlag = flags.Bool("fallback", cfg.Fallback, "interpret passages that cannot be compiled")
	var maxStepsFlag = flags.Int("max-steps", cfg.MaxSteps, "step limit of a run (0 for none)")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: pjit [flags] passage.yaml")
		flags.PrintDefaults()
		return 2
	}

	cfg.Trace = *traceFlag
	cfg.Fallback = *fallbackFlag
	cfg.MaxSteps = *maxStepsFlag
	config.InstallLogger(stderr, cfg)

	f, err := pcode.LoadFile(flags.Arg(0))
	if err != nil {
		return fail(stderr, err)
	}

	model := gen.NewMapModel(nil)
	if err := model.SetAll(f.Types); err != nil {
		return fail(stderr, err)
	}

	if *reportFlag != "" {
		mem, err := newMemory(f)
		if err != nil {
			return fail(stderr, err)
		}

		report := verify.GenerateReport(f.Passage, mem, cfg.MaxSteps)
		if err := report.SaveReportToFile(*reportFlag); err != nil {
			return fail(stderr, err)
		}
	}

	compiler := api.MakeCompilerBuilder().
		WithConfig(cfg).
		WithTypeModel(model).
		Build()

	unit, err := compiler.Compile(f.Passage)
	if err != nil {
		return fail(stderr, err)
	}

	if *listingFlag {
		if unit.Interpreted() {
			fmt.Fprintf(stdout, "passage %#x is interpreted: %v\n", f.Passage.Entry, unit.Reason)
		} else {
			fmt.Fprintln(stdout, unit.Code.Render(fmt.Sprintf("Passage %#x [%s]", f.Passage.Entry, unit.Key)))
		}
	}

	if !*runFlag {
		return 0
	}

	mem, err := newMemory(f)
	if err != nil {
		return fail(stderr, err)
	}

	exit, err := unit.Run(mem)
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintln(stdout, exit)

	outputs := outputsOf(f.Passage)
	fmt.Fprintln(stdout, outputTable(outputs, mem))

	if !*checkFlag {
		return 0
	}

	ref, err := newMemory(f)
	if err != nil {
		return fail(stderr, err)
	}

	refExit, err := verify.NewFunctionalSimulator(f.Passage, ref).Run(cfg.MaxSteps)
	if err != nil {
		return fail(stderr, err)
	}

	if mismatch := compare(outputs, mem, ref); mismatch != "" || refExit.Target != exit.Target {
		fmt.Fprintf(stdout, "MISMATCH: interpreter %s; %s\n", refExit, mismatch)
		return 1
	}
	fmt.Fprintln(stdout, "interpreter agrees")

	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, "pjit:", err)
	return 1
}

func newMemory(f *pcode.File) (*machine.Memory, error) {
	mem := machine.NewMemory(machine.DefaultCapacity)
	if err := mem.Init(f.Inputs); err != nil {
		return nil, err
	}

	return mem, nil
}

// outputsOf lists the distinct varnodes written by the passage, in order.
func outputsOf(p *pcode.Passage) []pcode.Varnode {
	var outputs []pcode.Varnode

	seen := make(map[pcode.Varnode]bool)
	for _, b := range p.Blocks {
		for _, op := range b.Ops {
			if op.Output == nil || seen[*op.Output] || op.Output.Size > 8 {
				continue
			}
			seen[*op.Output] = true
			outputs = append(outputs, *op.Output)
		}
	}

	return outputs
}

func outputTable(outputs []pcode.Varnode, mem *machine.Memory) string {
	t := table.NewWriter()
	t.SetTitle("Outputs")
	t.AppendHeader(table.Row{"Varnode", "Hex", "Decimal"})

	for _, v := range outputs {
		value, err := mem.ReadVarnode(v)
		if err != nil {
			t.AppendRow(table.Row{v, err, ""})
			continue
		}
		t.AppendRow(table.Row{v, fmt.Sprintf("%#x", value), value})
	}

	return t.Render()
}

func compare(outputs []pcode.Varnode, got, want *machine.Memory) string {
	for _, v := range outputs {
		g, _ := got.ReadVarnode(v)
		w, _ := want.ReadVarnode(v)
		if g != w {
			return fmt.Sprintf("%s is %#x, interpreter has %#x", v, g, w)
		}
	}

	return ""
}
