package cli

import (
	"fmt"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/spf13/cobra"
)

const barWidth = 30

func newTensionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tension",
		Short: "Chart tension across the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			nodes, err := s.nav().History().Snapshot(cmd.Context(), opts.session)
			if err != nil {
				return fmt.Errorf("tension: %w", err)
			}
			points := service.TensionSeries(nodes)

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return printJSON(out, points)
			}
			for _, p := range points {
				n := int(p.Value*barWidth + 0.5)
				n = min(max(n, 0), barWidth)
				fmt.Fprintf(out, "%-8s %-30s %.2f %s\n", p.Label, strings.Repeat("#", n), p.Value, p.Zone)
			}
			return nil
		},
	}
}
