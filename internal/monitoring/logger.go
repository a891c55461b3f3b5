// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

// Logf is the package-level diagnostic logger. It defaults to a zap sugared
// logger writing at info level but may be replaced by SetLogger. Tests or
// production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = newZapLogger(zapcore.InfoLevel).Sugar().Infof

// debugWriter is non-nil only while the configured level is debug.
var debugWriter io.Writer

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetLevel rebuilds the default zap-backed logger. Recognised levels:
//
//	off    mute Logf and debug tracing
//	info   Logf only
//	debug  Logf plus the writer returned by DebugWriter
func SetLevel(level string) error {
	switch level {
	case "off":
		SetLogger(nil)
		debugWriter = nil
	case "info":
		Logf = newZapLogger(zapcore.InfoLevel).Sugar().Infof
		debugWriter = nil
	case "debug":
		logger := newZapLogger(zapcore.DebugLevel)
		Logf = logger.Sugar().Infof
		debugWriter = &zapio.Writer{Log: logger, Level: zapcore.DebugLevel}
	default:
		return fmt.Errorf("unknown log level %q (want off, info or debug)", level)
	}
	return nil
}

// DebugWriter returns a line writer that emits at zap debug level, or nil
// unless SetLevel("debug") is in effect.
func DebugWriter() io.Writer {
	return debugWriter
}

func newZapLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
