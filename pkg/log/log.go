package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatal(str string)
}

// Level controls which messages are emitted by New.
type Level = logrus.Level

const (
	ErrorLevel = logrus.ErrorLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

type logger struct {
	*logrus.Logger
}

// New returns a Logger writing to stderr at InfoLevel.
func New() Logger {
	return NewWithLevel(os.Stderr, InfoLevel)
}

// NewWithLevel returns a Logger writing to w that discards messages
// below level.
func NewWithLevel(w io.Writer, level Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return &logger{Logger: l}
}

// Fatal logs str and exits the process.
func (l *logger) Fatal(str string) {
	l.Logger.Fatal(str)
}
