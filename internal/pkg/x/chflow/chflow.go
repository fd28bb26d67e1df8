// Package chflow provides context-aware helpers for sending to and
// receiving from channels.
package chflow

import "context"

// Receive waits for a value from ch or for ctx to be canceled.
// The boolean is false when ctx is done or ch is closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send waits to deliver data to ch unless ctx is canceled first.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}

// TrySend delivers data to ch only if it would not block.
// It reports false when the channel buffer is full.
func TrySend[T any](ch chan<- T, data T) bool {
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}
