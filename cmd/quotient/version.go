package quotient

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			v := version
			if v == "" {
				v = "development"
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
		},
	}
}
