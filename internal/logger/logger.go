package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const DefaultLevel = "warn"

// Logger writes one JSON object per entry with service, action, hostname
// and request_id fields.
type Logger struct {
	entry *logrus.Entry
}

func New(service string, out io.Writer, level string) *Logger {
	if out == nil {
		out = os.Stderr
	}
	base := logrus.New()
	base.SetOutput(out)
	base.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	base.SetLevel(ParseLevel(level))

	hostname, _ := os.Hostname()
	return &Logger{entry: base.WithFields(logrus.Fields{
		"service":  service,
		"hostname": hostname,
	})}
}

// Nop discards everything; used by tests and library defaults.
func Nop() *Logger {
	return New("nop", io.Discard, "panic")
}

func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl, _ = logrus.ParseLevel(DefaultLevel)
	}
	return lvl
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{entry: l.entry.WithField("request_id", requestID)}
}

func (l *Logger) Debug(action, message string) {
	l.entry.WithField("action", action).Debug(message)
}

func (l *Logger) Info(action, message string) {
	l.entry.WithField("action", action).Info(message)
}

func (l *Logger) Warn(action, message string) {
	l.entry.WithField("action", action).Warn(message)
}

func (l *Logger) Error(action, message string, err error) {
	e := l.entry.WithField("action", action)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(message)
}

// OrNop lets optional logger fields stay nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}
