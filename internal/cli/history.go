package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse or erase the session's history",
	}
	cmd.AddCommand(newHistoryListCmd(opts), newHistoryShowCmd(opts), newHistoryPurgeCmd(opts))
	return cmd
}

func newHistoryListCmd(opts *options) *cobra.Command {
	var filter service.HistoryFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := filter.Validate(); err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			nodes, err := s.nav().History().Snapshot(cmd.Context(), opts.session)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			matched := service.FilterHistory(nodes, filter, time.Now())

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return printJSON(out, matched)
			}
			for _, n := range matched {
				marker := " "
				if n.IsError {
					marker = "!"
				}
				fmt.Fprintf(out, "%s %s  %s  %.2f  %s\n", marker, n.ID,
					n.Time().Format("2006-01-02 15:04"), n.Deliberation.EntropyMeter.Value, truncate(n.Input, 60))
			}
			fmt.Fprintf(out, "%d of %d node(s)\n", len(matched), len(nodes))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Match input or answer text")
	cmd.Flags().StringVar(&filter.Zone, "zone", "", "Tension zone: all, echo, friction, chaos")
	cmd.Flags().StringVar(&filter.Verdict, "verdict", "", "Audit verdict: all, pass, fail")
	cmd.Flags().StringVar(&filter.Range, "range", "", "Date range: all, today, week")
	return cmd
}

func newHistoryShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <node-id>",
		Short: "Show one history node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			node, err := s.nav().History().Get(cmd.Context(), opts.session, args[0])
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			if opts.format == formatJSON {
				return printJSON(cmd.OutOrStdout(), node)
			}
			printNode(cmd.OutOrStdout(), node)
			return nil
		},
	}
}

func newHistoryPurgeCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Erase the session's whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Erase all history of session %q? [y/N] ", opts.session)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(out, "aborted")
					return nil
				}
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.nav().Purge(cmd.Context(), opts.session); err != nil {
				return fmt.Errorf("purge: %w", err)
			}
			fmt.Fprintf(out, "history of session %q erased\n", opts.session)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
