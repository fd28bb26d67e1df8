package broadcast

import (
	"context"
	"time"

	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/pkg/x/chflow"
)

// relayDrainTimeout bounds how long Close waits for queued relay messages.
const relayDrainTimeout = 5 * time.Second

type encodedEvent struct {
	eventType EventType
	payload   []byte
}

// relayWorker publishes encoded events from its own goroutine so a slow
// relay never holds up Emit.
type relayWorker struct {
	relay        Relay
	queue        chan encodedEvent
	drainTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newRelayWorker(r Relay, queueSize int) *relayWorker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &relayWorker{
		relay:        r,
		queue:        make(chan encodedEvent, queueSize),
		drainTimeout: relayDrainTimeout,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	go w.run()
	return w
}

func (w *relayWorker) run() {
	defer close(w.done)

	for {
		msg, ok := chflow.Receive(w.ctx, w.queue)
		if !ok {
			return
		}

		if err := w.relay.Publish(w.ctx, msg.payload); err != nil {
			logger.Warn(w.ctx, "failed to relay event", "event.type", msg.eventType, "error", err)
		}
	}
}

// enqueue reports false when the queue is full.
func (w *relayWorker) enqueue(msg encodedEvent) bool {
	return chflow.TrySend(w.queue, msg)
}

// stop flushes what is already queued, giving up after drainTimeout.
// enqueue must not be called afterwards.
func (w *relayWorker) stop() {
	close(w.queue)

	timer := time.NewTimer(w.drainTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
	case <-timer.C:
		w.cancel()
		<-w.done
	}
	w.cancel()
}
