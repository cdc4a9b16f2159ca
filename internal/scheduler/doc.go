// Package scheduler implements the cooperative fixed-period tick loop.
//
// Every iteration the caller reads the clock once and passes it to Tick; each
// task runs at most once per Tick when now-lastRun >= period (unsigned, so
// wraparound is harmless). There is no catch-up: a slow loop skips periods.
package scheduler
