// Where: internal/commands/graph.go
// What: graph command.
// Why: Show what routes where without reading the template.
package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

type GraphCmd struct {
	Live bool `help:"Include queue depths from the local emulator"`
}

func runGraph(cli CLI, deps Dependencies, out io.Writer) int {
	s, _, err := loadStack(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	ui := console(out)

	ui.Header("📦", fmt.Sprintf("Stack %s", s.Name))
	byKind := map[string][]string{}
	for _, id := range s.LogicalIDs() {
		kind := s.Kind(id)
		byKind[kind] = append(byKind[kind], id)
	}
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		ui.Item(kind, strings.Join(byKind[kind], ", "))
	}

	writeLine(out, "")
	ui.Header("🔀", "Routing")
	for _, edge := range s.Edges() {
		ui.Route(edge.From, edge.Label, edge.To)
	}

	if !cli.Graph.Live {
		return 0
	}
	p, err := newProvisioner(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	depths, err := p.Inspect(context.Background(), s, projectName(cli))
	if err != nil {
		return exitWithError(out, err)
	}
	writeLine(out, "")
	ui.Header("📬", "Queues")
	for _, d := range depths {
		ui.Depth(d.Name, d.Visible, d.InFlight, d.Missing)
	}
	return 0
}
