package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [document.json]",
		Short: "Apply storage migrations and import a saved assessment document",
		Long: `Opens storage, which applies schema migrations and copies a legacy
key-value snapshot (storage.snapshot_path) into a new SQLite database.

With a document argument, the JSON assessment (as saved by the browser
app, including documents with a single "answers" map) is sanitized and
replaces the stored assessment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "storage is up to date")
				return nil
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			st, err := a.svc.Import(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			name := st.Founder.Name
			if name == "" {
				name = "unnamed founder"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported assessment for %s\n", name)
			return nil
		},
	}
}
