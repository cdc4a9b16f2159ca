package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/oshokin/alarm-trigger/internal/platform"
)

// maxEdgesPerMessage caps how many edges a single batched message may carry.
const maxEdgesPerMessage = 1 << 16

// EdgeSource delivers RF falling edges published by the receiver bridge.
// A message with an empty payload is one edge; a decimal payload N is N edges.
type EdgeSource struct {
	// transport is the broker session.
	transport Transport
	// topic carries edge events.
	topic string

	mu         sync.Mutex
	registered bool
}

// NewEdgeSource creates an edge source on topic.
func NewEdgeSource(transport Transport, topic string) *EdgeSource {
	return &EdgeSource{
		transport: transport,
		topic:     topic,
	}
}

// OnFallingEdge subscribes to the edge topic and calls handler once per edge.
func (s *EdgeSource) OnFallingEdge(_ context.Context, handler platform.EdgeHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registered {
		return platform.ErrHandlerRegistered
	}

	err := s.transport.Subscribe(s.topic, func(_ string, payload []byte) error {
		edges, err := parseEdges(payload)
		if err != nil {
			return err
		}

		for range edges {
			handler()
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.registered = true

	return nil
}

// Close stops edge delivery.
func (s *EdgeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registered {
		return nil
	}

	s.registered = false

	return s.transport.Unsubscribe(s.topic)
}

// parseEdges returns the number of edges carried by payload.
func parseEdges(payload []byte) (int, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return 1, nil
	}

	edges, err := strconv.Atoi(text)
	if err != nil || edges < 0 || edges > maxEdgesPerMessage {
		return 0, fmt.Errorf("%w: %q", errBadPayload, text)
	}

	return edges, nil
}
