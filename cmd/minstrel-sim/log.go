package main

import (
	"io"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/logger"

	"github.com/sirupsen/logrus"
)

// logrusLogger forwards the station's log calls to logrus.
type logrusLogger struct {
	*logrus.Logger
}

var _ logger.Logger = (*logrusLogger)(nil)

func newLogger(output io.Writer, level string) (*logrusLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, E.Cause(err, "parse log level")
	}
	l := logrus.New()
	l.SetOutput(output)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &logrusLogger{l}, nil
}

func (l *logrusLogger) Trace(args ...any) { l.Logger.Trace(args...) }
func (l *logrusLogger) Debug(args ...any) { l.Logger.Debug(args...) }
func (l *logrusLogger) Info(args ...any) { l.Logger.Info(args...) }
func (l *logrusLogger) Warn(args ...any) { l.Logger.Warn(args...) }
func (l *logrusLogger) Error(args ...any) { l.Logger.Error(args...) }
func (l *logrusLogger) Fatal(args ...any) { l.Logger.Fatal(args...) }
func (l *logrusLogger) Panic(args ...any) { l.Logger.Panic(args...) }
