package scanner

import (
	"context"
	"fmt"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/classify"
	"github.com/gabapcia/txalert/internal/history"
	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/pkg/types"
)

// AccountScanner walks an account chain block by block, publishing every
// transaction and keeping the recent ones (and recent alerts) in history.
//
// A tick covers cursor+1 through the tip. The cursor only moves once the
// whole range was published, so a failing tick is repeated in full and may
// republish the transactions it already emitted; nothing is skipped.
type AccountScanner struct {
	chain   AccountChain
	emitter Emitter
	txs     *history.Buffer[AccountTx]
	alerts  *history.Buffer[AccountTx]

	cursor BlockCursor
	cfg    config
	inst   instruments
}

// NewAccountScanner returns a scanner publishing to emitter and recording
// into txs and alerts.
func NewAccountScanner(chain AccountChain, emitter Emitter, txs, alerts *history.Buffer[AccountTx], opts ...Option) *AccountScanner {
	return &AccountScanner{
		chain:   chain,
		emitter: emitter,
		txs:     txs,
		alerts:  alerts,
		cfg:     newConfig(DefaultAccountInterval, opts),
		inst:    newInstruments(ChainEthereum),
	}
}

// Cursor returns the last fully scanned block height.
func (s *AccountScanner) Cursor() (uint64, bool) {
	return s.cursor.Height()
}

// Run ticks until ctx is done. Tick failures are logged and never stop the loop.
func (s *AccountScanner) Run(ctx context.Context) {
	logger.Info(ctx, "account scanner started", "chain", ChainEthereum, "interval", s.cfg.interval.String())

	runEvery(ctx, s.cfg.interval, func(ctx context.Context) {
		if err := s.Tick(ctx); err != nil {
			logFetchError(ctx, err)
		}
	})

	logger.Info(ctx, "account scanner stopped", "chain", ChainEthereum)
}

// Tick runs a single scan pass.
func (s *AccountScanner) Tick(ctx context.Context) (err error) {
	ctx, end := s.inst.startTick(ctx)
	defer func() { end(err) }()

	tip, err := fetch(ctx, s.cfg.retry, s.chain.LatestBlockNumber)
	if err != nil {
		return &FetchError{Chain: ChainEthereum, Query: "eth_blockNumber", Err: err}
	}

	last, ok := s.cursor.Height()
	if !ok {
		s.cursor.Advance(tip)
		logger.Info(ctx, "cursor initialized at chain tip", "chain", ChainEthereum, "block.height", tip)
		return nil
	}

	for n := last + 1; n <= tip; n++ {
		if err := s.scanBlock(ctx, n); err != nil {
			return err
		}
	}

	if tip > last {
		s.cursor.Advance(tip)
		logger.Debug(ctx, "blocks scanned", "chain", ChainEthereum, "block.from", last+1, "block.to", tip)
	}

	return nil
}

func (s *AccountScanner) scanBlock(ctx context.Context, n uint64) error {
	block, err := fetch(ctx, s.cfg.retry, func(ctx context.Context) (Block, error) {
		return s.chain.BlockByNumber(ctx, n)
	})
	if err != nil {
		return &FetchError{
			Chain: ChainEthereum,
			Query: fmt.Sprintf("eth_getBlockByNumber(%s)", types.HexFromUint64(n)),
			Err:   err,
		}
	}

	for _, hash := range block.TxHashes {
		raw, err := fetch(ctx, s.cfg.retry, func(ctx context.Context) (Transaction, error) {
			return s.chain.TransactionByHash(ctx, hash)
		})
		if err != nil {
			return &FetchError{
				Chain: ChainEthereum,
				Query: fmt.Sprintf("eth_getTransactionByHash(%s)", hash),
				Err:   err,
			}
		}

		res, err := classify.Account(raw.Value, classify.EthThreshold)
		if err != nil {
			return &FetchError{
				Chain: ChainEthereum,
				Query: fmt.Sprintf("eth_getTransactionByHash(%s)", hash),
				Err:   err,
			}
		}

		s.publish(ctx, s.newAccountTx(block.Number, hash, raw, res))
	}

	return nil
}

func (s *AccountScanner) newAccountTx(blockNumber uint64, hash string, raw Transaction, res classify.Result) AccountTx {
	now := s.cfg.now()

	return AccountTx{
		ID:          fmt.Sprintf("%s-%d", hash, now.UnixMilli()),
		TxHash:      hash,
		BlockNumber: blockNumber,
		From:        raw.From,
		To:          raw.To,
		ValueEth:    res.Value,
		IsAlert:     res.IsAlert,
		Rule:        res.Rule,
		CreatedAt:   now.UnixMilli(),
	}
}

// publish records tx and fans it out; alerts go out before the tx event.
func (s *AccountScanner) publish(ctx context.Context, tx AccountTx) {
	events := make([]broadcast.Event, 0, 2)
	if tx.IsAlert {
		events = append(events, broadcast.NewEvent(broadcast.TypeAlert, tx))
	}
	events = append(events, broadcast.NewEvent(broadcast.TypeTx, tx))

	s.emitter.Emit(ctx, func() {
		s.txs.Prepend(tx)
		if tx.IsAlert {
			s.alerts.Prepend(tx)
		}
	}, events...)

	s.inst.published(ctx, tx.IsAlert)
	if tx.IsAlert {
		logger.Info(ctx, "large transfer detected",
			"chain", ChainEthereum,
			"tx.hash", tx.TxHash,
			"block.height", tx.BlockNumber,
			"tx.value", tx.ValueEth,
		)
	}
}
