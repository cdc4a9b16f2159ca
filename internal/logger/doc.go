// Package logger is the controller's debug sink: a small wrapper around zap with
// a global sugared logger, context helpers (ToContext/FromContext/WithName/WithKV)
// and level parsing.
//
// Components never hold a logger themselves; they take a context and log through
// it, so the loop can scope messages (for example with the uptime in ms).
package logger
