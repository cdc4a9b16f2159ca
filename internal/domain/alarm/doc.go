// Package alarm contains the core domain types of the trigger controller.
//
// Decide is the pure decision function fusing a drained RF pulse count with
// the latest voice-recognition state; ReportOutcome describes what happened
// when a triggered alarm was reported.
package alarm
