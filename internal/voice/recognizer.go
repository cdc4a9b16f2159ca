package voice

import "context"

// StatusOK is the status returned by a successful recognizer command.
const StatusOK = 0

// resultOffset is the position of the recognized index in the result buffer.
const resultOffset = 1

// resultBufferSize is the size of the buffer handed to Recognize.
const resultBufferSize = 64

// Recognizer is the voice-recognition module the controller samples.
// Implementations talk to the hardware, or to a bridge in front of it.
type Recognizer interface {
	// Begin opens the link to the module at the given rate.
	Begin(ctx context.Context, baudRate int) error
	// Clear drops every reference sound loaded into the recognizer.
	Clear(ctx context.Context) int
	// Load loads the reference sound stored at index.
	Load(ctx context.Context, index byte) int
	// Recognize waits up to timeout (recognizer units) for a result. On success
	// it returns a positive length and writes the recognized index at buf[1].
	Recognize(ctx context.Context, buf []byte, timeout uint16) int
}
