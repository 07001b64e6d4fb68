package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphedit/internal/codec"
	"graphedit/internal/converter"
	"graphedit/internal/domain"
)

type convertOptions struct {
	from string
	to   string
	raw  bool
}

func convertCmd(global *globalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a graph description between JSON, YAML and HCL",
		Long: `Convert a graph description between JSON, YAML and HCL.

Formats are taken from the file extensions unless --from or --to is given.
Use "-" as input to read stdin; without an output the result goes to
stdout. The graph is loaded into the editor and written back out, so
positions and ports are normalized; --raw skips that step.`,
		Example: `  graphedit convert chat.json chat.hcl
  cat chat.yaml | graphedit convert - --from yaml --to json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := ""
			if len(args) == 2 {
				output = args[1]
			}
			return opts.run(cmd, global, args[0], output)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "input format: json, yaml, hcl")
	f.StringVar(&opts.to, "to", "", "output format: json, yaml, hcl (default json for stdout)")
	f.BoolVar(&opts.raw, "raw", false, "convert without loading the graph into the editor")
	return cmd
}

func (o *convertOptions) run(cmd *cobra.Command, global *globalOptions, input, output string) error {
	g, err := readGraph(cmd.InOrStdin(), input, o.from)
	if err != nil {
		return err
	}

	exporter, err := outputCodec(output, o.to)
	if err != nil {
		return err
	}

	if !o.raw {
		var report converter.Report
		g, report, err = normalize(global, g)
		if err != nil {
			return err
		}
		for _, r := range report.Rejected {
			Warn.Fprintf(cmd.ErrOrStderr(), "dropped %s\n", r.Error())
		}
	}

	var buf bytes.Buffer
	if err := exporter.Export(g, &buf); err != nil {
		return err
	}

	if output == "" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	Good.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", output, exporter.Format())
	return nil
}

// readGraph parses path, or stdin when path is "-"
func readGraph(stdin io.Reader, path, format string) (*domain.GraphData, error) {
	var (
		c   codec.Codec
		err error
	)
	switch {
	case format != "":
		c, err = codec.ForFormat(format)
	case path == "-":
		err = fmt.Errorf("%w: --from is required when reading stdin", codec.ErrUnsupportedFormat)
	default:
		c, err = codec.ForPath(path)
	}
	if err != nil {
		return nil, err
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	g, err := c.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func outputCodec(path, format string) (codec.Codec, error) {
	switch {
	case format != "":
		return codec.ForFormat(format)
	case path == "":
		return codec.ForFormat("json")
	default:
		return codec.ForPath(path)
	}
}

// normalize loads g into a fresh edit store and reads it back
func normalize(global *globalOptions, g *domain.GraphData) (*domain.GraphData, converter.Report, error) {
	cfg, err := global.loadConfig()
	if err != nil {
		return nil, converter.Report{}, err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, converter.Report{}, err
	}

	st := newStore(cfg, cat, zap.NewNop())
	if err := st.LoadData(g); err != nil {
		return nil, converter.Report{}, err
	}
	out, report := st.ToGraphData()
	return out, report, nil
}

func formatList() string {
	return strings.Join(codec.Formats, ", ")
}
