package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInsightCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insight",
		Short: "Summarize the session's whole trajectory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.nav().Insight(cmd.Context(), opts.session)
			if err != nil {
				return fmt.Errorf("insight: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return printJSON(out, report)
			}
			fmt.Fprintf(out, "arc:         %s\n", report.EmotionalArc)
			fmt.Fprintf(out, "hidden need: %s\n", report.HiddenNeeds)
			fmt.Fprintf(out, "connection:  %.0f/10  growth: %.0f/10\n",
				report.NavigatorRating.ConnectionScore, report.NavigatorRating.GrowthScore)
			for _, k := range report.KeyInsights {
				fmt.Fprintf(out, "  * %s\n", k)
			}
			fmt.Fprintf(out, "\n%s\n", report.ClosingAdvice)
			return nil
		},
	}
}
