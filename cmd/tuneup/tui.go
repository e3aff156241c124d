package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/soaringjerry/tuneup/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Rate and chart the assessment in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			model := tui.New(a.svc, tui.Options{
				Radar:         a.radarOptions(),
				Animation:     a.cfg.Radar.Animation,
				MarkdownStyle: style,
			})
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "Glamour style for the report view")
	return cmd
}
