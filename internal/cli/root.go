// Package cli implements the graphedit command line
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphedit/internal/catalog"
	"graphedit/internal/config"
	"graphedit/internal/logging"
	"graphedit/internal/store"
)

var version = "0.1.0"

// globalOptions holds the persistent flags
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "graphedit",
		Short: "graphedit: edit GraphAI-style agent graphs",
		Long: Brand.Sprint("graphedit") + " edits agent graph descriptions\n" +
			Subtle.Sprint("Serve the editor API, convert between JSON, YAML and HCL, and inspect graphs"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("graphedit {{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: search $"+config.EnvConfigPath+", ./graphedit.yaml, XDG, /etc)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		serveCmd(opts),
		convertCmd(opts),
		inspectCmd(opts),
		templatesCmd(opts),
		agentsCmd(opts),
	)
	return root
}

// Execute runs the command line and reports any error
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		Bad.Fprintf(os.Stderr, "graphedit: %v\n", err)
	}
	return err
}

// loadConfig reads the config file and applies the log flags
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, _, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, cfg.Validate()
}

// newLogger builds the logger for cfg
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// loadCatalog returns the built-in agents merged with the configured
// catalog directory
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent catalog: %w", err)
	}
	cat.SetDefault(cfg.Editor.DefaultAgent)
	return cat, nil
}

// newStore creates an edit store configured from cfg
func newStore(cfg *config.Config, cat *catalog.Catalog, logger *zap.Logger) *store.Store {
	return store.New(
		store.WithHistoryLimit(cfg.Editor.HistoryLimit),
		store.WithCatalog(cat),
		store.WithLogger(logger),
	)
}
