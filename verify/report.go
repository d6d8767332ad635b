package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/pcodejit/machine"
	"github.com/sarchlab/pcodejit/pcode"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	BlockCount   int
	OpCount      int
	LintIssues   []Issue
	StructIssues []Issue
	FlowIssues   []Issue
	Exit         machine.Exit
	SimulationOK bool
	SimErr       error
	Passage      *pcode.Passage
}

// GenerateReport runs both lint and functional simulation, returns a report.
// The simulation only runs when lint finds no STRUCT issue.
func GenerateReport(p *pcode.Passage, mem *machine.Memory, maxSimSteps int) *VerificationReport {
	report := &VerificationReport{
		BlockCount: len(p.Blocks),
		OpCount:    p.NumOps(),
		Passage:    p,
	}

	report.LintIssues = RunLint(p)

	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.FlowIssues = append(report.FlowIssues, issue)
		}
	}

	if len(report.StructIssues) > 0 {
		report.SimErr = fmt.Errorf("simulation skipped: %d STRUCT issues", len(report.StructIssues))
		return report
	}

	fs := NewFunctionalSimulator(p, mem)
	report.Exit, report.SimErr = fs.Run(maxSimSteps)
	report.SimulationOK = report.SimErr == nil && report.Exit.Fault == nil

	return report
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "P-CODE PASSAGE VERIFICATION REPORT")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\nLoaded %d blocks, %d ops\n", r.BlockCount, r.OpCount)

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "No lint issues found")
	} else {
		fmt.Fprintln(w, r.issueTable())
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: FUNCTIONAL SIMULATION")
	fmt.Fprintln(w, separator)

	switch {
	case r.SimErr != nil:
		fmt.Fprintf(w, "Simulation error: %v\n", r.SimErr)
	default:
		fmt.Fprintf(w, "Simulation ended: %s\n", r.Exit)
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d FLOW)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.FlowIssues))

	simStatus := "SUCCESS"
	if !r.SimulationOK {
		simStatus = "FAILED"
	}
	fmt.Fprintf(w, "Simulation Result: %s\n", simStatus)
	fmt.Fprintln(w)
}

func (r *VerificationReport) issueTable() string {
	t := table.NewWriter()
	t.SetTitle("Lint Issues")
	t.AppendHeader(table.Row{"Type", "Block", "Address", "Op", "Message"})

	for _, issue := range r.LintIssues {
		t.AppendRow(table.Row{
			issue.Type,
			issue.Block,
			fmt.Sprintf("%#x", issue.Address),
			issue.OpID,
			issue.Message,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "total", len(r.LintIssues)})

	return t.Render()
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
