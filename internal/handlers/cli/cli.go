package cli

import (
	"context"
	"os"

	"github.com/gabapcia/txalert/internal/monitor"

	"github.com/urfave/cli/v3"
)

// Server is the HTTP surface started next to the scanners.
type Server interface {
	// Start serves until Stop is called. It returns nil after a clean stop.
	Start() error

	// Stop gracefully shuts the server down.
	Stop(ctx context.Context) error
}

// Run builds the txalert command line and executes it with os.Args.
//
// Available commands:
//
//   - `start`: runs both chain scanners and the HTTP API until interrupted.
func Run(ctx context.Context, mon monitor.Service, srv Server) error {
	return newApp(mon, srv).Run(ctx, os.Args)
}

func newApp(mon monitor.Service, srv Server) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "txalert",
		Description:           "Watches Ethereum blocks and the Bitcoin mempool for large transfers and streams them to websocket clients.",
		Usage:                 "txalert [command] [flags]",
		Commands: []*cli.Command{
			startCommand(mon, srv),
		},
	}
}
