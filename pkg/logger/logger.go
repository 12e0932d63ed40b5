package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *logrus.Logger

func init() {
	// usable before InitLogger, e.g. in tests
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// InitLogger configures the JSON logger. When file is non-empty output is
// also written to a rotating log file.
func InitLogger(level, file string) {
	Log = logrus.New()

	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		})
	}
	Log.Out = out

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// repositories and services log through the package-level logger
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(lvl)
}
