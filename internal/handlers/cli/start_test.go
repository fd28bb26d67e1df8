package cli

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type monitorMock struct {
	mock.Mock
}

func (m *monitorMock) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *monitorMock) Close() {
	m.Called()
}

func newMonitorMock(t *testing.T) *monitorMock {
	m := &monitorMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// fakeServer blocks in Start until Stop is called or fails with startErr.
type fakeServer struct {
	startErr error
	started  chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	stops    int
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{
		startErr: startErr,
		started:  make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (f *fakeServer) Start() error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return nil
}

func (f *fakeServer) Stop(context.Context) error {
	f.stops++
	f.stopOnce.Do(func() { close(f.stopped) })
	return nil
}

func runStart(ctx context.Context, cmd *cli.Command) error {
	app := &cli.Command{
		Commands: []*cli.Command{cmd},
	}
	return app.Run(ctx, []string{"txalert", "start"})
}

func TestStartCommand(t *testing.T) {
	t.Run("metadata", func(t *testing.T) {
		cmd := startCommand(newMonitorMock(t), newFakeServer(nil))

		assert.Equal(t, "start", cmd.Name)
		assert.Len(t, cmd.Flags, 0)
		assert.NotNil(t, cmd.Action)
	})

	t.Run("monitor start failure", func(t *testing.T) {
		mon := newMonitorMock(t)
		srv := newFakeServer(nil)
		boom := errors.New("monitor start error")

		mon.On("Start", mock.Anything).Return(boom).Once()

		err := runStart(t.Context(), startCommand(mon, srv))

		assert.ErrorIs(t, err, boom)
		mon.AssertNotCalled(t, "Close")
		assert.Equal(t, 0, srv.stops)
	})

	t.Run("server failure stops monitor", func(t *testing.T) {
		mon := newMonitorMock(t)
		boom := errors.New("address already in use")
		srv := newFakeServer(boom)

		mon.On("Start", mock.Anything).Return(nil).Once()
		mon.On("Close").Return().Once()

		err := runStart(t.Context(), startCommand(mon, srv))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("context cancellation shuts down", func(t *testing.T) {
		mon := newMonitorMock(t)
		srv := newFakeServer(nil)

		mon.On("Start", mock.Anything).Return(nil).Once()
		mon.On("Close").Return().Once()

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- runStart(ctx, startCommand(mon, srv))
		}()

		<-srv.started
		cancel()

		require.NoError(t, <-done)
		assert.Equal(t, 1, srv.stops)
	})
}

func TestNewApp(t *testing.T) {
	app := newApp(newMonitorMock(t), newFakeServer(nil))

	assert.Equal(t, "txalert", app.Name)
	require.Len(t, app.Commands, 1)
	assert.Equal(t, "start", app.Commands[0].Name)
}
