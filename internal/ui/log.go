package ui

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns the diagnostic logger handed to library packages.
// It logs at info level, or debug when debug is set.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "agent-library",
		ReportTimestamp: debug,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
