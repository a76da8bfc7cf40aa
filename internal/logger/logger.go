// Package logger builds the process zap logger: JSON lines to a rotated
// file and human-readable output on stdout.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing Info and above to path, rotated by size,
// and Debug and above to stdout. In production stdout gets JSON as well.
// An empty path logs to stdout only.
func New(path string, prod bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	consoleEncoder := jsonEncoder
	consoleLevel := zap.DebugLevel
	if !prod {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		consoleLevel = zap.InfoLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
	}

	if path != "" {
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(Rotator(path)), zap.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// Rotator returns the rotating file writer used for path.
func Rotator(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}
