// Package logger wraps zap for structured logging.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
)

// Options controls log level and the optional file sink.
type Options struct {
	Level string // debug, info, warn, error
	File  string // empty disables file logging
}

// InitLogger initializes the Zap logger with structured logging.
// Console output always goes to stdout; a JSON file core is added
// when opts.File is set.
func InitLogger(opts Options) {
	once.Do(func() {
		level := zap.NewAtomicLevelAt(parseLevel(opts.Level))

		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)

		core := consoleCore
		if opts.File != "" {
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err == nil {
				fileCore := zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level)
				core = zapcore.NewTee(consoleCore, fileCore)
			}
		}

		log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	})
}

// GetLogger provides access to the initialized logger.
func GetLogger() *zap.Logger {
	if log == nil {
		InitLogger(Options{Level: "info"})
	}
	return log
}

// Sync ensures buffered logs are written before the application exits.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
