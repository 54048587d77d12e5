// Package logutils configures the process-wide logrus logger.
package logutils

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

// SetLoggerLevel sets the standard logger level. Unknown levels fall back
// to info.
func SetLoggerLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// SetOutput redirects the standard logger. The MCP server owns stdout, so
// it logs to stderr.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetJSON switches the standard logger to JSON lines.
func SetJSON(enabled bool) {
	if enabled {
		log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{})
}
