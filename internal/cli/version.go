package cli

import (
	"fmt"

	"github.com/soyeahso/assistloop/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the assistloop version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
