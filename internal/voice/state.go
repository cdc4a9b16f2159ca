package voice

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-trigger/internal/domain/alarm"
	"github.com/oshokin/alarm-trigger/internal/logger"
	"github.com/oshokin/alarm-trigger/internal/platform"
)

// State tracks recognizer readiness and the most recent recognition sample.
// It is owned by the sampling loop and not safe for concurrent use.
type State struct {
	// recognizer is the voice-recognition collaborator.
	recognizer Recognizer
	// timeout is passed to every Recognize call.
	timeout uint16
	// referenceIndex is the sound loaded at startup.
	referenceIndex byte
	// buf receives recognition results.
	buf [resultBufferSize]byte

	// ready is set once by Init.
	ready bool
	// sample is overwritten by every Refresh.
	sample alarm.VoiceSample
}

// Option configures a State.
type Option func(*State)

// WithTimeout sets the recognizer timeout passed on each refresh.
func WithTimeout(timeout uint16) Option {
	return func(s *State) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithReferenceIndex sets the reference sound loaded by Init.
func WithReferenceIndex(index byte) Option {
	return func(s *State) {
		s.referenceIndex = index
	}
}

// DefaultTimeout is the recognizer timeout used unless overridden.
const DefaultTimeout = 50

// NewState creates a not-ready state with no recognition yet.
func NewState(recognizer Recognizer, opts ...Option) *State {
	s := &State{
		recognizer: recognizer,
		timeout:    DefaultTimeout,
		sample: alarm.VoiceSample{
			ResultCode: alarm.NotRecognized,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Init opens the recognizer, clears it and loads the reference sound.
// Any failure leaves the state not ready; it is reported but never fatal,
// so the returned error is for logging only.
func (s *State) Init(ctx context.Context, baudRate int) error {
	s.ready = false

	if err := s.recognizer.Begin(ctx, baudRate); err != nil {
		logger.ErrorKV(ctx, "Recognizer init failed", "error", err)

		return fmt.Errorf("begin recognizer: %w", err)
	}

	if status := s.recognizer.Clear(ctx); status != StatusOK {
		logger.ErrorKV(ctx, "Recognizer init failed", "status", status)

		return fmt.Errorf("%w: clear returned %d", ErrInitFailed, status)
	}

	if status := s.recognizer.Load(ctx, s.referenceIndex); status != StatusOK {
		logger.ErrorKV(ctx, "Recognizer reference load failed", "index", s.referenceIndex, "status", status)

		return fmt.Errorf("%w: load %d returned %d", ErrInitFailed, s.referenceIndex, status)
	}

	s.ready = true

	logger.InfoKV(ctx, "Recognizer reference loaded", "index", s.referenceIndex)

	return nil
}

// Refresh samples the recognizer once and stores the result.
// The caller decides when a refresh is due.
func (s *State) Refresh(ctx context.Context, now platform.Millis) {
	clear(s.buf[:])

	if n := s.recognizer.Recognize(ctx, s.buf[:], s.timeout); n > 0 {
		s.sample = alarm.VoiceSample{
			At:         now,
			ResultCode: s.buf[resultOffset],
			Valid:      true,
		}

		logger.DebugKV(ctx, "Voice recognition ok", "result", s.sample.ResultCode)

		return
	}

	s.sample = alarm.VoiceSample{
		At:         now,
		ResultCode: alarm.NotRecognized,
	}

	logger.DebugKV(ctx, "Voice recognition failed")
}

// Snapshot returns the voice state for the decision.
func (s *State) Snapshot() alarm.Voice {
	return alarm.Voice{
		Sample: s.sample,
		Ready:  s.ready,
	}
}

// Ready reports whether the recognizer initialised successfully.
func (s *State) Ready() bool {
	return s.ready
}
