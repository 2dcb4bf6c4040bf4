// Package log provides the logging interface used across the HLE layer.
//
// The concrete implementation is backed by zap; services receive the
// Logger interface so tests can substitute the null logger.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	sugar *zap.SugaredLogger
}

// New returns a Logger writing structured output to os.Stderr.
func New() Logger {
	return NewWithWriter(os.Stderr, zapcore.InfoLevel)
}

// NewWithWriter returns a Logger writing to w at the given level.
func NewWithWriter(w io.Writer, level zapcore.Level) Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return &logger{sugar: zap.New(core).Sugar()}
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
