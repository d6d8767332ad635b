package machine

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// StateTable renders the program counter, the evaluation stack and the exit
// of the machine.
func (m *Machine) StateTable() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s @ PC %d", m.Name(), m.state.PC))
	t.AppendHeader(table.Row{"Slot", "Hex", "Signed"})

	for i := len(m.state.Stack) - 1; i >= 0; i-- {
		v := m.state.Stack[i]
		t.AppendRow(table.Row{i, fmt.Sprintf("%#x", v), int64(v)})
	}

	status := "running"
	if m.state.halted {
		status = m.Exit().String()
	}
	t.AppendFooter(table.Row{"Steps", m.steps, status})

	return t.Render()
}

// PrintState prints the state table.
func (m *Machine) PrintState() {
	fmt.Println(m.StateTable())
}
