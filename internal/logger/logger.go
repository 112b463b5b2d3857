// internal/logger/logger.go

package logger

import (
	"github.com/sirupsen/logrus"
)

// New creates the application logger. The level string follows logrus
// conventions; unknown levels fall back to info.
func New(levelStr string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
