// Package logging builds the zap logger used by the command line tools.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps the verbosity setting onto a zap level: 0 keeps warnings and
// errors, 1 adds info, 2 and above add debug.
func Level(verbose int) zapcore.Level {
	switch {
	case verbose <= 0:
		return zapcore.WarnLevel
	case verbose == 1:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// Config returns a console configuration writing to stderr.
func Config(verbose int) zap.Config {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(Level(verbose)),
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     enc,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// New builds a logger for the given verbosity.
func New(verbose int) (*zap.Logger, error) {
	return Config(verbose).Build()
}
