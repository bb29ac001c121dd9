package quotient

import (
	"os"

	"github.com/spf13/cobra"
)

var version string

func Execute(v string) {
	version = v
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quotient",
		Short: "quotient is a single-node adaptive resource governor",
		Long: `quotient tracks finite system resources, admits allocation requests from
competing consumers under a capacity reserve, observes utilization, and
periodically rebalances grants based on observed trends.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
