// Package voice keeps the voice-recognition state that gates the alarm.
//
// Init runs once at startup and sets the readiness flag; Refresh overwrites
// the latest sample, storing alarm.NotRecognized when an attempt fails.
package voice
