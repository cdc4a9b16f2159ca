package voice

import "errors"

// ErrInitFailed is returned by Init when the recognizer rejects a startup command.
var ErrInitFailed = errors.New("recognizer init failed")
