package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text...>",
		Short: "Submit a question to the council",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			node, err := s.nav().Submit(cmd.Context(), opts.session, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return printJSON(out, node)
			}
			printNode(out, node)
			return nil
		},
	}
}

func printNode(w io.Writer, n *domain.SoulStateNode) {
	d := n.Deliberation
	fmt.Fprintf(w, "[%s] %s\n", n.ID, n.Time().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "> %s\n\n", n.Input)
	if n.IsError {
		fmt.Fprintf(w, "%s\n", d.FinalSynthesis.ResponseText)
		printNextMoves(w, d.NextMoves)
		return
	}

	for _, p := range domain.Personas {
		role := d.CouncilChamber.Get(p)
		if role.Stance == "" {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", p, role.Stance)
	}
	fmt.Fprintf(w, "\nprimary: %s (weight %.2f)\n", d.PrimaryPath.Source, d.PrimaryPath.Weight)
	for _, sh := range d.Shadows {
		fmt.Fprintf(w, "shadow:  %s (%s)\n", sh.Source, sh.ConflictReason)
	}
	fmt.Fprintf(w, "tension: %.2f %s [%s]\n\n", d.EntropyMeter.Value, d.EntropyMeter.Status, d.EntropyMeter.Zone)
	fmt.Fprintf(w, "%s\n", d.FinalSynthesis.ResponseText)
	if d.Audit != nil && d.Audit.AuditVerdict != "" {
		fmt.Fprintf(w, "\naudit: %s\n", d.Audit.AuditVerdict)
	}
	printNextMoves(w, d.NextMoves)
}

func printNextMoves(w io.Writer, moves []domain.NextMove) {
	if len(moves) == 0 {
		return
	}
	fmt.Fprintln(w, "\nnext:")
	for _, m := range moves {
		fmt.Fprintf(w, "  - %s: %s\n", m.Label, m.Text)
	}
}
