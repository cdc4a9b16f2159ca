package platform

import (
	"context"
	"errors"
	"sync"
)

// EdgeHandler is invoked once per falling edge. It may run on any goroutine
// and must not block.
type EdgeHandler func()

// EdgeSource delivers falling-edge events of a digital input.
type EdgeSource interface {
	// OnFallingEdge registers the handler. Only one handler is supported.
	OnFallingEdge(ctx context.Context, handler EdgeHandler) error
	// Close stops event delivery.
	Close() error
}

// ErrHandlerRegistered is returned when a second handler is registered.
var ErrHandlerRegistered = errors.New("edge handler already registered")

// ManualEdgeSource lets callers fire edges directly, e.g. from tests or a simulator.
type ManualEdgeSource struct {
	mu      sync.RWMutex
	handler EdgeHandler
	closed  bool
}

// OnFallingEdge registers handler.
func (s *ManualEdgeSource) OnFallingEdge(_ context.Context, handler EdgeHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler != nil {
		return ErrHandlerRegistered
	}

	s.handler = handler

	return nil
}

// Fire delivers n edges to the registered handler. Edges before registration
// or after Close are dropped, as on a pin with the interrupt detached.
func (s *ManualEdgeSource) Fire(n int) {
	s.mu.RLock()
	handler, closed := s.handler, s.closed
	s.mu.RUnlock()

	if handler == nil || closed {
		return
	}

	for range n {
		handler()
	}
}

// Close detaches the handler.
func (s *ManualEdgeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}
