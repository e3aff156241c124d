package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/soaringjerry/tuneup/internal/mcptools"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve assessment tools over MCP on stdio",
		Long: `Serve the assessment as Model Context Protocol tools on stdin/stdout.

Example client entry:
  "mcpServers": { "tuneup": { "command": "tuneup", "args": ["mcp", "--log-output", "discard"] } }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return server.ServeStdio(mcptools.New(a.svc, mcptools.Options{
				Version: a.cfg.Commit,
				Radar:   a.radarOptions(),
			}))
		},
	}
}
