package loggers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// NewFileLogger returns a JSON logger writing to a rotated file under <appDir>/log
func NewFileLogger(name string, appDir string) (*zap.Logger, error) {
	logPath := filepath.Join(appDir, "log")
	if _, err := os.Stat(logPath); err != nil {
		rootStat, err := os.Stat(appDir)
		if err != nil {
			return nil, fmt.Errorf("failed to find app path '%s': %w", appDir, err)
		}

		if err = os.MkdirAll(logPath, rootStat.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("failed to create log path '%s': %w", logPath, err)
		}
	}

	logFilePath := filepath.Join(logPath, FormatTimestampedLogFileName(name))

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     60, // days
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		w,
		zap.DebugLevel,
	)

	return zap.New(core), nil
}

func FormatTimestampedLogFileName(name string) string {
	return fmt.Sprintf("%s-%s.log", name, time.Now().UTC().Format("20060102T150405Z"))
}
