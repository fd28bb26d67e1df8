package scanner

import (
	"context"
	"sync"

	"github.com/gabapcia/txalert/internal/broadcast"

	"github.com/stretchr/testify/mock"
)

// AccountChainMock is a mock of AccountChain.
type AccountChainMock struct {
	mock.Mock
}

type AccountChainMock_Expecter struct {
	mock *mock.Mock
}

func (m *AccountChainMock) EXPECT() *AccountChainMock_Expecter {
	return &AccountChainMock_Expecter{mock: &m.Mock}
}

func (m *AccountChainMock) LatestBlockNumber(ctx context.Context) (uint64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(uint64), ret.Error(1)
}

func (e *AccountChainMock_Expecter) LatestBlockNumber(ctx any) *mock.Call {
	return e.mock.On("LatestBlockNumber", ctx)
}

func (m *AccountChainMock) BlockByNumber(ctx context.Context, n uint64) (Block, error) {
	ret := m.Called(ctx, n)
	return ret.Get(0).(Block), ret.Error(1)
}

func (e *AccountChainMock_Expecter) BlockByNumber(ctx, n any) *mock.Call {
	return e.mock.On("BlockByNumber", ctx, n)
}

func (m *AccountChainMock) TransactionByHash(ctx context.Context, hash string) (Transaction, error) {
	ret := m.Called(ctx, hash)
	return ret.Get(0).(Transaction), ret.Error(1)
}

func (e *AccountChainMock_Expecter) TransactionByHash(ctx, hash any) *mock.Call {
	return e.mock.On("TransactionByHash", ctx, hash)
}

func NewAccountChainMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *AccountChainMock {
	m := &AccountChainMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MempoolSourceMock is a mock of MempoolSource.
type MempoolSourceMock struct {
	mock.Mock
}

type MempoolSourceMock_Expecter struct {
	mock *mock.Mock
}

func (m *MempoolSourceMock) EXPECT() *MempoolSourceMock_Expecter {
	return &MempoolSourceMock_Expecter{mock: &m.Mock}
}

func (m *MempoolSourceMock) RecentTransactions(ctx context.Context) ([]MempoolTx, error) {
	ret := m.Called(ctx)

	var items []MempoolTx
	if v := ret.Get(0); v != nil {
		items = v.([]MempoolTx)
	}

	return items, ret.Error(1)
}

func (e *MempoolSourceMock_Expecter) RecentTransactions(ctx any) *mock.Call {
	return e.mock.On("RecentTransactions", ctx)
}

func NewMempoolSourceMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *MempoolSourceMock {
	m := &MempoolSourceMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// recordingEmitter runs commit and keeps every emitted event in order.
type recordingEmitter struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (r *recordingEmitter) Emit(_ context.Context, commit func(), events ...broadcast.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if commit != nil {
		commit()
	}
	r.events = append(r.events, events...)
}

func (r *recordingEmitter) types() []broadcast.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]broadcast.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
