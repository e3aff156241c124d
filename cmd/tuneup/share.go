package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/tuneup/internal/services"
)

func newShareCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Create or open share links",
	}
	cmd.AddCommand(newShareEncodeCmd(opts), newShareOpenCmd(opts))
	return cmd
}

func newShareEncodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Print a share link for the stored assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			link, err := a.svc.Share()
			if err != nil {
				return fmt.Errorf("encode share link: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), link.URL)
			return nil
		},
	}
}

func newShareOpenCmd(opts *rootOptions) *cobra.Command {
	var (
		sig   string
		view  string
		apply bool
	)
	cmd := &cobra.Command{
		Use:   "open <link-or-token>",
		Short: "Score a share link, optionally replacing the stored assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, linkSig := parseShareArg(args[0])
			if sig == "" {
				sig = linkSig
			}
			v, ok := services.ParseView(view)
			if view != "" && !ok {
				return fmt.Errorf("unknown view %q", view)
			}
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if apply {
				if !a.svc.OpenShare(token, sig) {
					return services.ErrShareTokenInvalid
				}
				a.svc.Flush()
				fmt.Fprintln(cmd.OutOrStdout(), "shared assessment saved")
				printSnapshot(cmd.OutOrStdout(), a.svc.Snapshot(v))
				return nil
			}
			snap, err := a.svc.Preview(token, sig, v)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&sig, "sig", "", "Signature, when not part of the link")
	cmd.Flags().StringVar(&view, "view", "", "individual, manager or combined")
	cmd.Flags().BoolVar(&apply, "apply", false, "Replace the stored assessment with the shared one")
	return cmd
}

// parseShareArg accepts a full link, a bare query string or a raw token.
func parseShareArg(arg string) (token, sig string) {
	arg = strings.TrimSpace(arg)
	raw := arg
	if i := strings.IndexByte(arg, '?'); i >= 0 {
		raw = arg[i+1:]
	} else if !strings.Contains(arg, "=") {
		return arg, ""
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return arg, ""
	}
	return q.Get(services.ShareParam), q.Get(services.SigParam)
}

func printSnapshot(w io.Writer, snap services.Snapshot) {
	f := snap.State.Founder
	if f.Name != "" || f.Company != "" {
		fmt.Fprintf(w, "%s %s\n", f.Name, f.Company)
	}
	fmt.Fprintf(w, "view: %s\noverall: %d%%\n", snap.View, snap.Summary.Overall)
	for _, cs := range snap.Summary.CategoryScores {
		fmt.Fprintf(w, "  %-24s %3d%%  %s\n", cs.Name, cs.Score, snap.Summary.Interpretations[cs.ID])
	}
	for _, g := range snap.Gaps {
		if g.Flagged {
			fmt.Fprintf(w, "  gap %s: %+d (%s higher)\n", g.Name, g.Delta, g.Leader)
		}
	}
}
