// Package ethereum reads blocks and transactions from an Ethereum node over
// JSON-RPC.
package ethereum

import (
	"github.com/gabapcia/txalert/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/txalert/internal/scanner"
)

// client implements scanner.AccountChain on top of a JSON-RPC connection.
type client struct {
	conn jsonrpc.Client
}

var _ scanner.AccountChain = (*client)(nil)

// NewClient returns an Ethereum client using conn.
func NewClient(conn jsonrpc.Client) *client {
	return &client{
		conn: conn,
	}
}
