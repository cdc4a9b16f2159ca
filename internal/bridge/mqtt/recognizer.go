package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/alarm-trigger/internal/logger"
	"github.com/oshokin/alarm-trigger/internal/voice"
)

const (
	// StatusPublishFailed is returned by recognizer commands the bridge could not publish.
	StatusPublishFailed = 1

	// recognizeTimeoutUnit is the duration of one recognizer timeout unit.
	recognizeTimeoutUnit = time.Millisecond

	// maxResultCode is the largest result code the bridge may publish.
	maxResultCode = 254
)

// errBadPayload is returned for messages that cannot be decoded.
var errBadPayload = errors.New("malformed payload")

// Recognizer drives a voice-recognition module through a bridge: commands are
// published to the command topic and results arrive as decimal codes on the
// result topic.
type Recognizer struct {
	// transport is the broker session.
	transport Transport
	// resultTopic carries recognition results.
	resultTopic string
	// commandTopic receives recognizer commands.
	commandTopic string
	// results holds the latest unconsumed result.
	results chan byte
}

// NewRecognizer creates a bridge recognizer.
func NewRecognizer(transport Transport, resultTopic, commandTopic string) *Recognizer {
	return &Recognizer{
		transport:    transport,
		resultTopic:  resultTopic,
		commandTopic: commandTopic,
		results:      make(chan byte, 1),
	}
}

var _ voice.Recognizer = (*Recognizer)(nil)

// Begin subscribes to results and asks the bridge to open the module at baudRate.
func (r *Recognizer) Begin(_ context.Context, baudRate int) error {
	if err := r.transport.Subscribe(r.resultTopic, r.onResult); err != nil {
		return err
	}

	return r.transport.Publish(r.commandTopic, []byte("begin "+strconv.Itoa(baudRate)))
}

// Clear asks the bridge to drop every loaded reference sound.
func (r *Recognizer) Clear(ctx context.Context) int {
	return r.command(ctx, "clear")
}

// Load asks the bridge to load the reference sound at index.
func (r *Recognizer) Load(ctx context.Context, index byte) int {
	return r.command(ctx, "load "+strconv.Itoa(int(index)))
}

// Recognize requests one recognition and waits up to timeout for its result.
// Results published before the request are discarded.
func (r *Recognizer) Recognize(ctx context.Context, buf []byte, timeout uint16) int {
	if len(buf) < 2 {
		return 0
	}

	r.drain()

	if status := r.command(ctx, "recognize "+strconv.Itoa(int(timeout))); status != voice.StatusOK {
		return 0
	}

	timer := time.NewTimer(time.Duration(timeout) * recognizeTimeoutUnit)
	defer timer.Stop()

	select {
	case code := <-r.results:
		buf[0] = 1
		buf[1] = code

		return 2
	case <-timer.C:
		return 0
	case <-ctx.Done():
		return 0
	}
}

// Close stops receiving results.
func (r *Recognizer) Close() error {
	return r.transport.Unsubscribe(r.resultTopic)
}

// onResult keeps only the latest result.
func (r *Recognizer) onResult(_ string, payload []byte) error {
	text := strings.TrimSpace(string(payload))

	code, err := strconv.Atoi(text)
	if err != nil || code < 0 || code > maxResultCode {
		return fmt.Errorf("%w: result %q", errBadPayload, text)
	}

	r.drain()

	select {
	case r.results <- byte(code):
	default:
	}

	return nil
}

// drain discards a pending result.
func (r *Recognizer) drain() {
	select {
	case <-r.results:
	default:
	}
}

// command publishes one recognizer command and maps the result to a status.
func (r *Recognizer) command(ctx context.Context, cmd string) int {
	if err := r.transport.Publish(r.commandTopic, []byte(cmd)); err != nil {
		logger.WarnKV(ctx, "Recognizer command failed", "command", cmd, "error", err)

		return StatusPublishFailed
	}

	return voice.StatusOK
}
