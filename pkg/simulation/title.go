package simulation

import (
	"html"
	"strings"

	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/variables"
)

// Title describes a simulated variable and the drivers its variants follow
type Title struct {
	Name    string   `json:"name"`
	Drivers []string `json:"drivers,omitempty"`
}

// NewTitle builds the title of a variant group. Driver names follow variant
// order and appear once each.
func NewTitle(group variables.Group, graph dependencies.Reader) Title {
	t := Title{Name: group.Name}
	seen := make(map[string]struct{})

	for _, v := range group.Variants {
		node, err := graph.GetNode(v.ID)
		if err != nil || node.DriverName == "" {
			continue
		}

		if _, dup := seen[node.DriverName]; dup {
			continue
		}

		seen[node.DriverName] = struct{}{}
		t.Drivers = append(t.Drivers, node.DriverName)
	}

	return t
}

// String renders the title as plain text, e.g. "(Tax according to the GDP & Population)"
func (t Title) String() string {
	return t.render(func(s string) string { return s })
}

// HTML renders the title with the variable and driver names in bold
func (t Title) HTML() string {
	return t.render(func(s string) string { return "<b>" + html.EscapeString(s) + "</b>" })
}

func (t Title) render(name func(string) string) string {
	var sb strings.Builder

	sb.WriteString("(")
	sb.WriteString(name(t.Name))

	if len(t.Drivers) > 0 {
		sb.WriteString(" according to the ")

		for i, d := range t.Drivers {
			if i > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(name(d))
		}
	}

	sb.WriteString(")")

	return sb.String()
}
