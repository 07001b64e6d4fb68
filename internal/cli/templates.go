package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"graphedit/internal/codec"
	"graphedit/internal/templates"
)

func templatesCmd(_ *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "List the built-in starter graphs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := templates.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0)
			for _, t := range lib.All() {
				rows = append(rows, []string{t.Name, fmt.Sprint(len(t.Graph.Nodes)), t.Description})
			}
			table(out, []string{"NAME", "NODES", "DESCRIPTION"}, rows)
			Subtle.Fprintln(out, "\n  graphedit templates show <name> to print one")
			return nil
		},
	}

	cmd.AddCommand(templatesShowCmd())
	return cmd
}

func templatesShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a template as a graph description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := templates.Load()
			if err != nil {
				return err
			}
			t, ok := lib.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown template %q (available: %s)", args[0], strings.Join(lib.Names(), ", "))
			}
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			return c.Export(t.Graph, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: "+formatList())
	return cmd
}

func agentsCmd(global *globalOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the agents in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0)
			for _, p := range cat.All() {
				if category != "" && !strings.EqualFold(p.Category, category) {
					continue
				}
				name := p.Name
				if name == cat.Default() {
					name += " *"
				}
				rows = append(rows, []string{name, p.Category, strings.Join(p.Inputs, ","), strings.Join(p.Outputs, ",")})
			}
			if len(rows) == 0 {
				Warn.Fprintln(out, "no agents found")
				return nil
			}
			table(out, []string{"AGENT", "CATEGORY", "INPUTS", "OUTPUTS"}, rows)
			Subtle.Fprintln(out, "\n  * default agent for new nodes")
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list agents in this category")
	return cmd
}
