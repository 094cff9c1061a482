package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger: human-readable console output plus
// a rotated JSON file under logDir.
func NewLogger(logDir string) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "uptime.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.TimeKey = "ts"
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), fileSink, zap.DebugLevel)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleCfg),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore)), nil
}
