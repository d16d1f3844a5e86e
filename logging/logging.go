// Package logging holds the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Components add context with WithFields.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Configure sets the level and format. An unknown level keeps info.
func Configure(level string, jsonFormat bool) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)
	if jsonFormat {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetOutput redirects the logger, e.g. away from stdout in stdio MCP mode
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// Session returns an entry tagged with a session ID
func Session(id string) *logrus.Entry {
	return Log.WithField("session_id", id)
}
