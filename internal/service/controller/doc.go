// Package controller runs the alarm-trigger sampling loop.
//
// Every loop iteration reads the clock once and runs the due tasks in a fixed
// order: refresh the voice state, then drain the RF pulse counter, decide and,
// when triggered, report the alarm. No failure stops the loop.
package controller
