package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/tuneup/internal/config"
	"github.com/soaringjerry/tuneup/internal/logging"
)

// Set at build time via ldflags; TUNEUP_COMMIT and TUNEUP_BUILD_TIME override them.
var (
	commit    = ""
	buildTime = ""
)

type rootOptions struct {
	cfgFile string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "tuneup",
		Short: "Founder talent tune-up: rate five areas, compare perspectives, chart the result",
		Long: `tuneup scores a founder self-assessment across Product, Engineering,
Leadership, Go-to-Market and Finance. Ratings are kept for an individual and
a manager perspective, compared for disagreements and drawn as a radar chart.

Run "tuneup serve" for the web API, "tuneup tui" for the terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Commit == "" {
				cfg.Commit = commit
			}
			if cfg.BuildTime == "" {
				cfg.BuildTime = buildTime
			}
			logger, err := logging.New(logging.Options{
				Level:   cfg.Log.Level,
				Format:  cfg.Log.Format,
				Output:  cfg.Log.Output,
				Verbose: opts.verbose,
			})
			if err != nil {
				return err
			}
			opts.cfg, opts.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "YAML config file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: json or console")
	pf.String("log-output", "", "Log destination: stderr, stdout, discard or a file path")
	pf.String("storage", "", "Storage driver: sqlite or memory")
	pf.String("db", "", "SQLite database path")
	pf.String("catalog", "", "Catalog YAML file (default: embedded catalog)")
	pf.String("share-base-url", "", "Base URL for share links")
	pf.String("share-secret", "", "Secret for signing share links")

	root.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newReportCmd(opts),
		newShareCmd(opts),
		newMigrateCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.cfg.Commit
			if c == "" {
				c = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tuneup %s", c)
			if opts.cfg.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (built %s)", opts.cfg.BuildTime)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
