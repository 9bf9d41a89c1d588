package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface the rest of this module depends on. A bare
// *zap.SugaredLogger does not satisfy it, since it has no CDebugf method;
// NewLogger builds one that does, wrapping a *zap.SugaredLogger backed by
// the Appenders in this package.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	// CDebugf logs at debug level. No values are extracted from ctx; the
	// entry is the same as Debugf would write.
	CDebugf(ctx context.Context, template string, args ...interface{})
}

// appenderCore is a zapcore.Core that fans every accepted entry out to a
// fixed list of Appenders instead of a single zapcore.WriteSyncer.
type appenderCore struct {
	level     zapcore.LevelEnabler
	appenders []Appender
	fields    []zapcore.Field
}

func newAppenderCore(level zapcore.LevelEnabler, appenders []Appender) *appenderCore {
	return &appenderCore{level: level, appenders: appenders}
}

func (c *appenderCore) Enabled(lvl zapcore.Level) bool { return c.level.Enabled(lvl) }

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	return &appenderCore{level: c.level, appenders: c.appenders, fields: append(append([]zapcore.Field(nil), c.fields...), fields...)}
}

func (c *appenderCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *appenderCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field(nil), c.fields...), fields...)
	var firstErr error
	for _, a := range c.appenders {
		if err := a.Write(ent, all); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *appenderCore) Sync() error {
	var firstErr error
	for _, a := range c.appenders {
		if err := a.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// sugaredLogger adapts *zap.SugaredLogger to the Logger interface.
type sugaredLogger struct {
	*zap.SugaredLogger
}

func (s sugaredLogger) CDebugf(_ context.Context, template string, args ...interface{}) {
	s.Debugf(template, args...)
}

// NewLogger builds a Logger that writes to appenders at or above level.
// With no appenders, NewLogger defaults to a single stdout ConsoleAppender.
func NewLogger(level Level, appenders ...Appender) Logger {
	if len(appenders) == 0 {
		appenders = []Appender{NewStdoutAppender()}
	}
	core := newAppenderCore(toZapLevel(level), appenders)
	zl := zap.New(core, zap.AddCaller())
	return sugaredLogger{zl.Sugar()}
}

// NewTestLogger returns a Logger suitable for use in tests: it logs nothing
// below ERROR, so a passing test produces no console noise.
func NewTestLogger() Logger {
	return NewLogger(ERROR)
}
