// Package logging builds the zap logger used across crosscritic.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps debug/info/warn/error to a zap level. Unknown values
// fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig(format string, color bool) (zapcore.EncoderConfig, string) {
	if format == "json" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg, "json"
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg, "console"
}

// New builds a logger writing to stderr. format is "console" or "json".
// Logs go to stderr so stdout stays clean for review output.
func New(level, format string) (*zap.Logger, error) {
	encCfg, encoding := encoderConfig(format, true)

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// NewWithWriter builds an uncolored logger writing to w, e.g. the
// progress view's log pane.
func NewWithWriter(level, format string, w io.Writer) *zap.Logger {
	encCfg, encoding := encoderConfig(format, false)

	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return zap.New(core)
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
