package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of a Logger.
type Config struct {
	Level  string
	Format string // console or json
	Output io.Writer
}

type implLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// New creates a console Logger on stdout at the given level
func New(level string) Logger {
	return NewWithConfig(Config{Level: level})
}

// NewWithConfig creates a Logger backed by zap
func NewWithConfig(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)

	return &implLogger{
		sugar: zap.New(core).Sugar(),
		level: level,
	}
}

// NewNop returns a Logger that discards everything
func NewNop() Logger {
	return &implLogger{
		sugar: zap.NewNop().Sugar(),
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel // default to info
	}
}

func (l *implLogger) shouldLog(level string) bool {
	return l.level.Enabled(parseLevel(level))
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.with(ctx).Debugf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.with(ctx).Infof(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.with(ctx).Warnf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.with(ctx).Errorf(msg, args...)
}

func (l *implLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *implLogger) with(ctx context.Context) *zap.SugaredLogger {
	if fields := fieldsFrom(ctx); len(fields) > 0 {
		return l.sugar.With(fields...)
	}
	return l.sugar
}

type fieldsKey struct{}

// WithFields returns a context whose log lines carry the given key/value pairs
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	prev := fieldsFrom(ctx)
	fields := make([]interface{}, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func fieldsFrom(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]interface{})
	return fields
}
