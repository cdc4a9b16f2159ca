package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// coreWithLevel overrides the level of a wrapped zapcore.Core.
type coreWithLevel struct {
	zapcore.Core

	// level is the minimum level this core accepts.
	level zapcore.Level
}

// Enabled reports whether l passes the overridden level.
func (c *coreWithLevel) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// Check adds the core to the checked entry when the entry level is enabled.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *coreWithLevel) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// With keeps the overridden level on derived cores.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *coreWithLevel) With(fields []zapcore.Field) zapcore.Core {
	return &coreWithLevel{
		c.Core.With(fields),
		c.level,
	}
}

// WithLevel is an option that pins a derived logger to lvl regardless of the global level.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(
		func(core zapcore.Core) zapcore.Core {
			return &coreWithLevel{core, lvl}
		})
}

// StdLogger adapts the global logger to a *log.Logger for third-party libraries,
// emitting every line at lvl under the given name.
func StdLogger(name string, lvl zapcore.Level) *log.Logger {
	base := global.Desugar().Named(name).WithOptions(WithLevel(lvl))

	std, err := zap.NewStdLogAt(base, lvl)
	if err != nil {
		return zap.NewStdLog(base)
	}

	return std
}
