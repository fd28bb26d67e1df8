package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/classify"
	"github.com/gabapcia/txalert/internal/history"
	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/pkg/types"
)

const mempoolRecentQuery = "GET /mempool/recent"

// UtxoScanner polls a mempool feed and publishes each transaction once.
//
// The seen set holds exactly the txids currently in history: entries
// evicted from history are forgotten in the same step, so the set stays
// bounded by the history capacity.
type UtxoScanner struct {
	source  MempoolSource
	emitter Emitter
	txs     *history.Buffer[UtxoTx]

	seen types.Set[string]
	cfg  config
	inst instruments
}

// NewUtxoScanner returns a scanner publishing to emitter and recording into txs.
func NewUtxoScanner(source MempoolSource, emitter Emitter, txs *history.Buffer[UtxoTx], opts ...Option) *UtxoScanner {
	return &UtxoScanner{
		source:  source,
		emitter: emitter,
		txs:     txs,
		seen:    types.NewSet[string](),
		cfg:     newConfig(DefaultUtxoInterval, opts),
		inst:    newInstruments(ChainBitcoin),
	}
}

// Seen reports whether txid was already published and is still in history.
// It must not be called concurrently with Run.
func (s *UtxoScanner) Seen(txid string) bool {
	return s.seen.Has(txid)
}

// SeenLen returns the size of the seen set. It must not be called
// concurrently with Run.
func (s *UtxoScanner) SeenLen() int {
	return s.seen.Len()
}

// Run ticks until ctx is done. Tick failures are logged and never stop the loop.
func (s *UtxoScanner) Run(ctx context.Context) {
	logger.Info(ctx, "utxo scanner started", "chain", ChainBitcoin, "interval", s.cfg.interval.String())

	runEvery(ctx, s.cfg.interval, func(ctx context.Context) {
		if err := s.Tick(ctx); err != nil {
			logFetchError(ctx, err)
		}
	})

	logger.Info(ctx, "utxo scanner stopped", "chain", ChainBitcoin)
}

// Tick runs a single poll.
func (s *UtxoScanner) Tick(ctx context.Context) (err error) {
	ctx, end := s.inst.startTick(ctx)
	defer func() { end(err) }()

	items, err := fetch(ctx, s.cfg.retry, s.source.RecentTransactions)
	if err != nil {
		return &FetchError{Chain: ChainBitcoin, Query: mempoolRecentQuery, Err: err}
	}

	now := s.cfg.now()
	for _, item := range items {
		if item.Txid == "" || s.seen.Has(item.Txid) {
			continue
		}

		res, err := classify.Utxo(item.Value, item.Fee, classify.BtcThreshold)
		if err != nil {
			logger.Warn(ctx, "skipping malformed mempool entry", "chain", ChainBitcoin, "tx.id", item.Txid, "error", err)
			continue
		}

		s.publish(ctx, newUtxoTx(now, item, res))
	}

	return nil
}

func newUtxoTx(now time.Time, item MempoolTx, res classify.UtxoResult) UtxoTx {
	return UtxoTx{
		ID:        fmt.Sprintf("%s-%d", item.Txid, now.UnixMilli()),
		Txid:      item.Txid,
		ValueBtc:  res.Value,
		FeeBtc:    res.Fee,
		Vsize:     item.Vsize,
		IsAlert:   res.IsAlert,
		Rule:      res.Rule,
		CreatedAt: now.UnixMilli(),
	}
}

func (s *UtxoScanner) publish(ctx context.Context, tx UtxoTx) {
	s.emitter.Emit(ctx, func() {
		s.seen.Add(tx.Txid)
		for _, evicted := range s.txs.Prepend(tx) {
			s.seen.Delete(evicted.Txid)
		}
	}, broadcast.NewEvent(broadcast.TypeBtcTx, tx))

	s.inst.published(ctx, tx.IsAlert)
	if tx.IsAlert {
		logger.Info(ctx, "large transfer detected", "chain", ChainBitcoin, "tx.id", tx.Txid, "tx.value", tx.ValueBtc)
	}
}
