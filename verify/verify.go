// Package verify provides checking tools for p-code passages before and
// after code generation.
//
// It implements two complementary stages:
//
// 1. Static Lint (lint.go): fast structural checks of a passage
//   - STRUCT checks: operand counts, varnode sizes, address spaces
//   - FLOW checks: terminal ops, branch targets, block layout
//
// 2. Functional Simulator (funcsim.go): a direct interpreter of p-code
//   - Executes every op kind on values of any size, multi-precision included
//   - Serves as the reference generated code is compared against
//   - Serves as the fallback for passages the generator cannot compile
//
// # Usage Example
//
//	issues := verify.RunLint(passage)
//	if len(issues) > 0 {
//	    for _, issue := range issues {
//	        log.Printf("[%s] block %d op %d: %s", issue.Type, issue.Block, issue.OpID, issue.Message)
//	    }
//	    panic("lint found issues; check the front end")
//	}
//
//	mem := machine.NewMemory(machine.DefaultCapacity)
//	fs := verify.NewFunctionalSimulator(passage, mem)
//	exit, err := fs.Run(10000)
//
// # Limitations
//
// - Relative branches are followed inside one block only
// - Memory is the same sparse model the machine uses; no I/O side effects
package verify

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Malformed op (operand count, size, space)
	IssueFlow   IssueType = "FLOW"   // Control-flow problem (misplaced terminal, bad target)
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // STRUCT or FLOW
	Block   int                    // Block ID (-1 if not applicable)
	Address uint64                 // Address of the op, or of the block
	OpID    int                    // Op index in the block or -1
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}
