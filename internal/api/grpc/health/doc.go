// Package health exposes the controller state over the standard gRPC health
// checking protocol: the loop as alarm.controller and recognizer readiness as
// alarm.recognizer.
package health
