package cli

import (
	"fmt"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/buildconfig"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), buildconfig.String())
			return err
		},
	}
}
