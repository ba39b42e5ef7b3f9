package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tripweave/itinerary-engine/pkg/config"
)

// Logger wraps a zap logger together with the file it may write to
type Logger struct {
	*zap.Logger
	closer io.Closer
}

// New builds a zap logger from configuration
func New(cfg *config.Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(parseZapLevel(cfg.LoggerLevel))

	ws, closer, err := buildWriteSyncer(cfg.LoggerOutputPath)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(buildEncoder(cfg), ws, level)
	zl := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	zl.Info("Logger initialized successfully",
		zap.String("level", strings.ToUpper(cfg.LoggerLevel)),
		zap.String("format", cfg.LoggerFormat),
		zap.String("environment", cfg.Environment),
	)
	return &Logger{Logger: zl, closer: closer}, nil
}

// Sync flushes buffered entries and closes the log file if one was opened
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	if l.Logger != nil {
		_ = l.Logger.Sync()
	}
	if l.closer != nil {
		_ = l.closer.Close()
	}
}

func buildEncoder(cfg *config.Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	isText := cfg.IsDevelopment() || strings.EqualFold(cfg.LoggerFormat, "text")
	if isText {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// MCP stdio owns stdout, so "stdout" is only safe for the CLI
func buildWriteSyncer(path string) (zapcore.WriteSyncer, io.Closer, error) {
	switch {
	case path == "" || strings.EqualFold(path, "stdout"):
		return zapcore.AddSync(os.Stdout), nil, nil
	case strings.EqualFold(path, "stderr"):
		return zapcore.AddSync(os.Stderr), nil, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return zapcore.AddSync(file), file, nil
}

func parseZapLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
