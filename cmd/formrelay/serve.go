package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/awantoch/formrelay/constants"
	formrelayhttp "github.com/awantoch/formrelay/http"
	"github.com/awantoch/formrelay/logger"
	"github.com/spf13/cobra"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescServe,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			if cfg == nil {
				return
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer logger.Sync()
			if err := formrelayhttp.StartServer(ctx, cfg); err != nil {
				logger.Error("Server failed: %v", err)
				exit(1)
			}
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}
