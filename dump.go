package piquouze

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteEntries renders the entries visible from c as a table.
func WriteEntries(w io.Writer, c *Container) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("container %v", c.ID())
	t.AppendHeader(table.Row{"Name", "Kind", "Value", "Policy"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 48}})

	for _, e := range c.Entries() {
		reg, _ := c.Lookup(e.Name)
		t.AppendRow(table.Row{e.Name, e.Kind, describeRegistration(reg), policyName(reg.Policy)})
	}

	t.Render()
}

func describeRegistration(reg *Registration) string {
	if reg.Kind == Registration_Value {
		return fmt.Sprintf("%v", reg.Value)
	}

	m := reg.marking
	name := m.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%v %v(%v)", m.Kind, name, strings.Join(m.Params, ", "))
}
