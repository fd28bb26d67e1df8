package scanner

import (
	"context"

	"github.com/gabapcia/txalert/internal/broadcast"
)

// AccountChain reads blocks and transactions from an account-based chain.
type AccountChain interface {
	// LatestBlockNumber returns the current chain tip.
	LatestBlockNumber(ctx context.Context) (uint64, error)

	// BlockByNumber returns the block at height n with its transaction
	// hashes in block order. A block the node does not know is an error.
	BlockByNumber(ctx context.Context, n uint64) (Block, error)

	// TransactionByHash returns the transaction identified by hash.
	// A transaction the node does not know is an error.
	TransactionByHash(ctx context.Context, hash string) (Transaction, error)
}

// MempoolSource lists recently seen transactions of a UTXO chain.
type MempoolSource interface {
	// RecentTransactions returns the indexer's sliding window of recent
	// mempool entries, in the order served.
	RecentTransactions(ctx context.Context) ([]MempoolTx, error)
}

// Emitter publishes classified transactions. commit is the history update
// belonging to events; the emitter runs it before fan-out as one step.
type Emitter interface {
	Emit(ctx context.Context, commit func(), events ...broadcast.Event)
}

var _ Emitter = (*broadcast.Broadcaster)(nil)
