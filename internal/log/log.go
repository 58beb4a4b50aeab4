package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Package-level logger facade. Callers write structured key-value pairs
// directly:
//
//	log.Info("event created", "id", id, "summary", summary)
//	log.Error("fetch failed", err, "date", date)
//
// which keeps call sites free of logrus field plumbing.

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel adjusts the minimum log level. Unknown names keep the current
// level.
func SetLevel(name string) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		logger.WithField("level", name).Warn("unknown log level, keeping current")
		return
	}
	logger.SetLevel(lvl)
}

func Debug(msg string, kv ...any) {
	logger.WithFields(fields(kv...)).Debug(msg)
}

func Info(msg string, kv ...any) {
	logger.WithFields(fields(kv...)).Info(msg)
}

func Warn(msg string, kv ...any) {
	logger.WithFields(fields(kv...)).Warn(msg)
}

// Error logs msg with err attached as a dedicated field.
func Error(msg string, err error, kv ...any) {
	logger.WithError(err).WithFields(fields(kv...)).Error(msg)
}

// fields converts a flat key, value, key, value list into logrus fields.
// Non-string keys are skipped; an odd trailing value is ignored.
func fields(kv ...any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}
