package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphedit/internal/domain"
)

func inspectCmd(global *globalOptions) *cobra.Command {
	var (
		format  string
		asJSON  bool
		noEdges bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a graph description",
		Long: `Load a graph description into the editor and print its nodes, edges
and loop groups, along with anything that would be dropped on export.

Supported formats: ` + formatList(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			st := newStore(cfg, cat, zap.NewNop())
			if err := st.LoadData(g); err != nil {
				return err
			}

			gui := st.State()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(gui)
			}

			Brand.Fprintf(out, "%s\n", args[0])
			Subtle.Fprintf(out, "  version %g, %d nodes, %d edges, %d loop groups\n\n",
				gui.Version, len(gui.Nodes), len(gui.Edges), len(gui.Loops.Groups))

			rows := make([][]string, 0, len(gui.Nodes))
			for _, n := range gui.Nodes {
				rows = append(rows, nodeRow(&gui, n))
			}
			table(out, []string{"NODE", "TYPE", "AGENT", "SCOPE", "INPUTS", "RESULT"}, rows)

			if !noEdges && len(gui.Edges) > 0 {
				fmt.Fprintln(out)
				rows = rows[:0]
				for _, e := range gui.Edges {
					rows = append(rows, []string{e.Source.String(), e.Target.String()})
				}
				table(out, []string{"SOURCE", "TARGET"}, rows)
			}

			if gui.Loops.Root != nil {
				fmt.Fprintf(out, "\n  loop: %s\n", loopString(gui.Loops.Root))
			}
			for _, grp := range gui.Loops.Groups {
				if grp.Spec != nil {
					fmt.Fprintf(out, "  loop %s: %s\n", grp.ID, loopString(grp.Spec))
				}
			}

			_, report := st.ToGraphData()
			if report.OK() {
				Good.Fprintln(out, "\n  exports cleanly")
				return nil
			}
			Warn.Fprintf(out, "\n  %d item(s) dropped on export:\n", len(report.Rejected))
			for _, r := range report.Rejected {
				fmt.Fprintf(out, "    %s\n", r.Error())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "", "input format (default from extension)")
	f.BoolVar(&asJSON, "json", false, "print the editable graph as JSON")
	f.BoolVar(&noEdges, "no-edges", false, "omit the edge table")
	return cmd
}

func nodeRow(g *domain.GUIData, n domain.Node) []string {
	agent := n.Agent
	if n.IsStatic() {
		agent = "-"
	}
	scope := g.ScopeOf(n.ID)
	if scope == "" {
		scope = "root"
	}

	bound := 0
	for _, port := range n.Inputs {
		if g.IsBound(domain.Endpoint{NodeID: n.ID, Port: port}) {
			bound++
		}
	}
	inputs := fmt.Sprintf("%d/%d", bound, len(n.Inputs))

	result := ""
	if n.IsResult {
		result = "yes"
	}
	return []string{n.ID, string(n.Type), agent, scope, inputs, result}
}

func loopString(spec *domain.LoopSpec) string {
	var parts []string
	if spec.While != nil {
		parts = append(parts, fmt.Sprintf("while %v", spec.While))
	}
	if spec.Count != 0 {
		parts = append(parts, fmt.Sprintf("count %d", spec.Count))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
