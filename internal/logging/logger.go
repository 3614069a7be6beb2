package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the bot logger. Output goes to stdout and, when a path is
// given, is mirrored to a log file (the file keeps parse failures around
// for later review).
func New(logFile string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(logrus.InfoLevel)

	if logFile == "" {
		return log
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warnf("could not open log file %s: %v", logFile, err)
		return log
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return log
}
