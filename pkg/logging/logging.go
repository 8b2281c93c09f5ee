// Package logging builds the logrus loggers used by the binaries.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 50
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// ConsoleLogger writes text logs to stderr.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// FileLogger writes JSON logs to a rotated file at path and mirrors them to
// stdout. The returned closer releases the file.
func FileLogger(level logrus.Level, path string) (io.Closer, *logrus.Logger, error) {
	if path == "" {
		return nil, nil, errors.New("logging: empty log path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create log dir")
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	log := logrus.New()
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})
	return rotator, log, nil
}
