package quotient

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quotient-project/quotient/pkg/config"
	"github.com/quotient-project/quotient/pkg/node"
)

func newServeCmd() *cobra.Command {
	var configFile string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resource governor node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configFile)
		},
	}
	serveCmd.Flags().StringVar(&configFile, "config", "", "Path to an optional config file")
	return serveCmd
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n, err := node.NewNode(ctx, cfg)
	if err != nil {
		return err
	}
	n.Start(ctx)

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	sig := <-signals
	log.Ctx(ctx).Info().Str("Signal", sig.String()).Msg("Shutting down")

	return n.Stop(ctx)
}
