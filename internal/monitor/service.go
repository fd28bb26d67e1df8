// Package monitor runs the chain scanners for the lifetime of the process
// and owns the state they share with the broadcaster.
package monitor

import (
	"context"
	"errors"
	"sync"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// Scanner is a polling loop that runs until its context is done.
type Scanner interface {
	Run(ctx context.Context)
}

// Service starts and stops every scanner as one unit.
type Service interface {
	// Start launches each scanner on its own goroutine. Scanners are
	// independent: a failing chain never stalls the other.
	//
	// Returns ErrServiceAlreadyStarted if the service is running.
	Start(ctx context.Context) error

	// Close cancels every scanner and waits for them to return.
	// It is safe to call Close even if the service was never started.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	scanners []Scanner
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, sc := range s.scanners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.Run(ctx)
		}()
	}

	s.closeFunc = func() {
		cancel()
		wg.Wait()
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

// New returns a Service running scanners.
func New(scanners ...Scanner) *service {
	return &service{
		scanners: scanners,
	}
}
