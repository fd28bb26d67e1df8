package broadcast

import (
	"context"
	"sync"

	"github.com/gabapcia/txalert/internal/pkg/x/chflow"
)

// Subscription is one observer's place in the registry plus its outbound queue.
type Subscription struct {
	broadcaster *Broadcaster
	observer    Observer
	queue       chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// deliver drains the queue into the observer until the subscription ends.
// A failed send detaches the observer; nothing is retried.
func (s *Subscription) deliver() {
	defer s.Close()

	for {
		msg, ok := chflow.Receive(s.ctx, s.queue)
		if !ok {
			return
		}

		if err := s.observer.Send(s.ctx, msg); err != nil {
			return
		}
	}
}

// Done is closed once the subscription stopped delivering.
func (s *Subscription) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close detaches the observer. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.broadcaster.remove(s)
		s.cancel()
	})
}
