package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/txalert/internal/monitor"
	"github.com/gabapcia/txalert/internal/pkg/logger"

	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// startCommand returns the command that runs the monitor and the HTTP API.
//
// Usage example:
//
//	txalert start
//
// The process runs until it receives SIGINT or SIGTERM, the parent context
// is canceled or the HTTP server fails.
func startCommand(mon monitor.Service, srv Server) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the Ethereum and Bitcoin scanners and serves the HTTP and websocket API.",
		Usage:       "Runs the monitor. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			if err := mon.Start(ctx); err != nil {
				return err
			}
			defer mon.Close()

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- srv.Start()
			}()

			logger.Info(ctx, "txalert started")

			select {
			case sig := <-quit:
				logger.Info(ctx, "shutting down", "signal", sig.String())
			case <-ctx.Done():
				logger.Info(ctx, "shutting down", "reason", ctx.Err().Error())
			case err := <-serveErr:
				if err != nil {
					return err
				}
				return nil
			}

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			return srv.Stop(stopCtx)
		},
	}
}
