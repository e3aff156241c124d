package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		view   string
		out    string
		style  string
		width  int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the stored assessment",
		Long: `Render the stored assessment in one of these formats:
  text         Markdown styled for the terminal (default)
  markdown     plain Markdown
  html         printable HTML page with an embedded radar chart
  svg          the radar chart alone
  csv-ratings  one row per perspective and question
  csv-scores   category percentages per perspective`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, ok := services.ParseView(view)
			if view != "" && !ok {
				return fmt.Errorf("unknown view %q", view)
			}
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := renderReport(a, format, v, style, width, time.Now())
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			_, err = w.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "text, markdown, html, svg, csv-ratings or csv-scores")
	cmd.Flags().StringVar(&view, "view", "", "individual, manager or combined (default: the stored view)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&style, "style", "", "Glamour style for text output (default: detect from terminal)")
	cmd.Flags().IntVar(&width, "width", 80, "Word wrap width for text output")
	return cmd
}

func renderReport(a *app, format string, view services.View, style string, width int, now time.Time) ([]byte, error) {
	switch format {
	case "markdown", "md":
		return []byte(services.RenderMarkdown(a.svc.Report(view, a.radarOptions(), now))), nil
	case "text", "":
		md := services.RenderMarkdown(a.svc.Report(view, a.radarOptions(), now))
		styleOpt := glamour.WithAutoStyle()
		if style != "" {
			styleOpt = glamour.WithStandardStyle(style)
		}
		r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
		if err != nil {
			return nil, fmt.Errorf("init markdown renderer: %w", err)
		}
		text, err := r.Render(md)
		if err != nil {
			return nil, fmt.Errorf("render markdown: %w", err)
		}
		return []byte(text), nil
	case "html":
		return services.RenderHTML(a.svc.Report(view, a.radarOptions(), now))
	case "svg":
		return radar.RenderSVG(radar.Build(a.svc.RadarSeries(view), a.radarOptions())), nil
	case "csv-ratings":
		return a.svc.ExportRatings()
	case "csv-scores":
		return a.svc.ExportScores()
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
