package scanner

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/history"
	"github.com/gabapcia/txalert/internal/pkg/logger"
	retrytest "github.com/gabapcia/txalert/internal/pkg/resilience/retry/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init("error")
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func fixedClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

func newAccountFixture(t *testing.T, opts ...Option) (*AccountScanner, *AccountChainMock, *recordingEmitter) {
	t.Helper()

	chain := NewAccountChainMock(t)
	emitter := &recordingEmitter{}
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	s := NewAccountScanner(chain, emitter, history.New[AccountTx](300), history.New[AccountTx](200), opts...)

	return s, chain, emitter
}

func TestAccountScanner_Tick(t *testing.T) {
	t.Run("first tick adopts the tip without backfill", func(t *testing.T) {
		s, chain, emitter := newAccountFixture(t)

		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(1000), nil).Once()

		require.NoError(t, s.Tick(t.Context()))

		height, ok := s.Cursor()
		assert.True(t, ok)
		assert.Equal(t, uint64(1000), height)
		assert.Empty(t, emitter.events)
		chain.AssertNotCalled(t, "BlockByNumber", mock.Anything, mock.Anything)
	})

	t.Run("no new blocks", func(t *testing.T) {
		s, chain, emitter := newAccountFixture(t)
		s.cursor.Advance(1000)

		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(1000), nil).Once()

		require.NoError(t, s.Tick(t.Context()))

		height, _ := s.Cursor()
		assert.Equal(t, uint64(1000), height)
		assert.Empty(t, emitter.events)
	})

	t.Run("scans range in order and advances cursor", func(t *testing.T) {
		s, chain, emitter := newAccountFixture(t)
		s.cursor.Advance(1000)

		to := "0xbob"
		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(1002), nil).Once()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(1001)).
			Return(Block{Number: 1001, TxHashes: []string{"0xa", "0xb"}}, nil).Once()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(1002)).
			Return(Block{Number: 1002, TxHashes: []string{"0xc"}}, nil).Once()
		chain.EXPECT().TransactionByHash(mock.Anything, "0xa").
			Return(Transaction{Hash: "0xa", From: "0xalice", To: &to, Value: eth(1)}, nil).Once()
		chain.EXPECT().TransactionByHash(mock.Anything, "0xb").
			Return(Transaction{Hash: "0xb", From: "0xalice", To: nil, Value: eth(150)}, nil).Once()
		chain.EXPECT().TransactionByHash(mock.Anything, "0xc").
			Return(Transaction{Hash: "0xc", From: "0xcarol", To: &to, Value: eth(2)}, nil).Once()

		require.NoError(t, s.Tick(t.Context()))

		height, _ := s.Cursor()
		assert.Equal(t, uint64(1002), height)

		assert.Equal(t, []broadcast.EventType{
			broadcast.TypeTx,
			broadcast.TypeAlert,
			broadcast.TypeTx,
			broadcast.TypeTx,
		}, emitter.types())

		txs := s.txs.All()
		require.Len(t, txs, 3)
		assert.Equal(t, "0xc", txs[0].TxHash)
		assert.Equal(t, "0xb", txs[1].TxHash)
		assert.Equal(t, "0xa", txs[2].TxHash)

		alerts := s.alerts.All()
		require.Len(t, alerts, 1)
		assert.Equal(t, "0xb", alerts[0].TxHash)
		assert.Equal(t, "150.0000", alerts[0].ValueEth)
		assert.Equal(t, "large ETH transfer >= 100 ETH", alerts[0].Rule)
		assert.Nil(t, alerts[0].To)
		assert.Equal(t, uint64(1001), alerts[0].BlockNumber)
		assert.Equal(t, "0xb-1700000000000", alerts[0].ID)
		assert.Equal(t, int64(1_700_000_000_000), alerts[0].CreatedAt)

		assert.False(t, txs[0].IsAlert)
		assert.Empty(t, txs[0].Rule)
		assert.Equal(t, "2.0000", txs[0].ValueEth)
	})

	t.Run("empty block", func(t *testing.T) {
		s, chain, emitter := newAccountFixture(t)
		s.cursor.Advance(10)

		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(11), nil).Once()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(11)).Return(Block{Number: 11}, nil).Once()

		require.NoError(t, s.Tick(t.Context()))

		height, _ := s.Cursor()
		assert.Equal(t, uint64(11), height)
		assert.Empty(t, emitter.events)
	})

	t.Run("tip failure leaves cursor unchanged", func(t *testing.T) {
		s, chain, _ := newAccountFixture(t)
		s.cursor.Advance(1000)

		boom := errors.New("connection refused")
		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(0), boom).Once()

		err := s.Tick(t.Context())

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, ChainEthereum, fe.Chain)
		assert.Equal(t, "eth_blockNumber", fe.Query)
		assert.ErrorIs(t, err, boom)

		height, _ := s.Cursor()
		assert.Equal(t, uint64(1000), height)
	})

	t.Run("first tick failure keeps cursor uninitialized", func(t *testing.T) {
		s, chain, _ := newAccountFixture(t)

		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(0), errors.New("timeout")).Once()

		assert.Error(t, s.Tick(t.Context()))

		_, ok := s.Cursor()
		assert.False(t, ok)
	})

	t.Run("mid-range failure aborts tick and next tick rescans", func(t *testing.T) {
		s, chain, emitter := newAccountFixture(t)
		s.cursor.Advance(1000)

		to := "0xbob"
		boom := errors.New("block not found")

		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(1002), nil).Twice()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(1001)).
			Return(Block{Number: 1001, TxHashes: []string{"0xa"}}, nil).Twice()
		chain.EXPECT().TransactionByHash(mock.Anything, "0xa").
			Return(Transaction{Hash: "0xa", From: "0xalice", To: &to, Value: eth(1)}, nil).Twice()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(1002)).
			Return(Block{}, boom).Once()

		err := s.Tick(t.Context())

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "eth_getBlockByNumber(0x3ea)", fe.Query)

		height, _ := s.Cursor()
		assert.Equal(t, uint64(1000), height)
		assert.Len(t, emitter.events, 1)

		chain.EXPECT().BlockByNumber(mock.Anything, uint64(1002)).
			Return(Block{Number: 1002}, nil).Once()

		require.NoError(t, s.Tick(t.Context()))

		height, _ = s.Cursor()
		assert.Equal(t, uint64(1002), height)
		assert.Len(t, emitter.events, 2)
	})

	t.Run("missing transaction aborts tick", func(t *testing.T) {
		s, chain, _ := newAccountFixture(t)
		s.cursor.Advance(5)

		boom := errors.New("transaction not found")
		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(6), nil).Once()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(6)).
			Return(Block{Number: 6, TxHashes: []string{"0xdead"}}, nil).Once()
		chain.EXPECT().TransactionByHash(mock.Anything, "0xdead").Return(Transaction{}, boom).Once()

		err := s.Tick(t.Context())

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "eth_getTransactionByHash(0xdead)", fe.Query)
		assert.ErrorIs(t, err, boom)

		height, _ := s.Cursor()
		assert.Equal(t, uint64(5), height)
	})

	t.Run("negative value is malformed", func(t *testing.T) {
		s, chain, emitter := newAccountFixture(t)
		s.cursor.Advance(5)

		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(6), nil).Once()
		chain.EXPECT().BlockByNumber(mock.Anything, uint64(6)).
			Return(Block{Number: 6, TxHashes: []string{"0xneg"}}, nil).Once()
		chain.EXPECT().TransactionByHash(mock.Anything, "0xneg").
			Return(Transaction{Hash: "0xneg", From: "0xa", Value: big.NewInt(-1)}, nil).Once()

		assert.Error(t, s.Tick(t.Context()))
		assert.Empty(t, emitter.events)

		height, _ := s.Cursor()
		assert.Equal(t, uint64(5), height)
	})

	t.Run("fetches go through retry", func(t *testing.T) {
		r := retrytest.NewRetry(t)
		s, chain, _ := newAccountFixture(t, WithRetry(r))

		r.EXPECT().Execute(mock.Anything, mock.Anything).
			RunAndReturn(func(_ context.Context, op func() error) error { return op() }).Once()
		chain.EXPECT().LatestBlockNumber(mock.Anything).Return(uint64(42), nil).Once()

		require.NoError(t, s.Tick(t.Context()))

		height, _ := s.Cursor()
		assert.Equal(t, uint64(42), height)
	})
}

func TestAccountScanner_Run(t *testing.T) {
	s, chain, _ := newAccountFixture(t, WithInterval(time.Millisecond))

	ticked := make(chan struct{}, 1)
	chain.EXPECT().LatestBlockNumber(mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case ticked <- struct{}{}:
			default:
			}
		}).
		Return(uint64(7), nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	<-ticked
	cancel()
	<-done

	height, ok := s.Cursor()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), height)
}
