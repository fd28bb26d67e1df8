// Package broadcast fans classified transactions out to connected observers.
//
// The broadcaster guarantees that an observer's init snapshot and its live
// tail line up: Connect captures the snapshot and registers the observer
// under the registry write lock, while Emit applies the matching history
// update and enqueues the event under the read lock. An event is therefore
// either already inside a newcomer's snapshot or delivered to it live, never
// both and never neither.
package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/pkg/x/chflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("broadcaster closed")

const (
	defaultQueueSize      = 256
	defaultRelayQueueSize = 1024
)

var (
	consumerObserver = attribute.String("consumer", "observer")
	consumerRelay    = attribute.String("consumer", "relay")
)

// Observer is a connected real-time client.
type Observer interface {
	// Send writes one message. It must return an error once the underlying
	// connection is closed or broken.
	Send(ctx context.Context, msg []byte) error
}

// SnapshotFunc returns the init payload for a newly connected observer.
// It is called while no Emit is in progress.
type SnapshotFunc func() any

// Relay mirrors emitted events to an external channel (e.g. Redis pub/sub).
type Relay interface {
	Publish(ctx context.Context, payload []byte) error
}

// Broadcaster maintains the observer registry.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	closed      bool

	snapshot  SnapshotFunc
	queueSize int
	relay     *relayWorker

	observers metric.Int64UpDownCounter
	dropped   metric.Int64Counter
}

type config struct {
	queueSize      int
	relay          Relay
	relayQueueSize int
}

// Option configures a Broadcaster.
type Option func(*config)

// WithQueueSize bounds the number of pending messages per observer.
// Messages beyond it are dropped for that observer only.
func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithRelay mirrors every emitted event to r. Publishing happens on a
// dedicated goroutine behind a bounded queue; events that do not fit are
// dropped.
func WithRelay(r Relay) Option {
	return func(c *config) {
		c.relay = r
	}
}

// WithRelayQueueSize bounds the number of events waiting to be relayed.
func WithRelayQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.relayQueueSize = n
		}
	}
}

// New returns a Broadcaster whose init messages are built by snapshot.
func New(snapshot SnapshotFunc, opts ...Option) *Broadcaster {
	cfg := config{queueSize: defaultQueueSize, relayQueueSize: defaultRelayQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := otel.Meter("github.com/gabapcia/txalert/internal/broadcast")
	observers, _ := meter.Int64UpDownCounter("txalert.broadcast.observers",
		metric.WithDescription("Currently connected observers"))
	dropped, _ := meter.Int64Counter("txalert.broadcast.dropped",
		metric.WithDescription("Messages dropped because an observer or relay queue was full"))

	b := &Broadcaster{
		subscribers: make(map[*Subscription]struct{}),
		snapshot:    snapshot,
		queueSize:   cfg.queueSize,
		observers:   observers,
		dropped:     dropped,
	}
	if cfg.relay != nil {
		b.relay = newRelayWorker(cfg.relay, cfg.relayQueueSize)
	}

	return b
}

// Connect registers o and queues the init snapshot as its first message.
// Delivery happens on a goroutine owned by the returned Subscription, which
// stops when ctx is done, Close is called or a send fails.
func (b *Broadcaster) Connect(ctx context.Context, o Observer) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	msg, err := NewEvent(TypeInit, b.snapshot()).encode()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		broadcaster: b,
		observer:    o,
		queue:       make(chan []byte, b.queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
	sub.queue <- msg

	b.subscribers[sub] = struct{}{}
	b.observers.Add(ctx, 1)

	go sub.deliver()
	return sub, nil
}

// Emit runs commit and queues events for every connected observer, as one
// step relative to Connect. commit is where the caller updates the history
// buffers the snapshot reads from; it may be nil.
//
// Emit never blocks on observers or the relay and never fails. A full queue
// drops the message for its consumer only.
func (b *Broadcaster) Emit(ctx context.Context, commit func(), events ...Event) {
	payloads := make([]encodedEvent, 0, len(events))
	for _, e := range events {
		msg, err := e.encode()
		if err != nil {
			logger.Error(ctx, "failed to encode event", "event.type", e.Type, "error", err)
			continue
		}
		payloads = append(payloads, encodedEvent{eventType: e.Type, payload: msg})
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if commit != nil {
		commit()
	}
	for sub := range b.subscribers {
		for _, msg := range payloads {
			if !chflow.TrySend(sub.queue, msg.payload) {
				b.dropped.Add(ctx, 1, metric.WithAttributes(consumerObserver))
			}
		}
	}

	if b.relay == nil || b.closed {
		return
	}
	for _, msg := range payloads {
		if !b.relay.enqueue(msg) {
			b.dropped.Add(ctx, 1, metric.WithAttributes(consumerRelay))
			logger.Warn(ctx, "relay queue full, dropping event", "event.type", msg.eventType)
		}
	}
}

// Len returns the number of connected observers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}

// Close detaches every observer, flushes the relay queue and rejects
// further connections. Later Emits still run their commit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	subs := make([]*Subscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	if b.relay != nil {
		b.relay.stop()
	}
}

func (b *Broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		b.observers.Add(context.Background(), -1)
	}
}
