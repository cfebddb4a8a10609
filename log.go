package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// setupLog configures the default logger. Logs go to the file named by
// EDUCAST_LOGFILE, or to stderr when stderr is a terminal, and are discarded
// otherwise so piped output stays clean. The returned closer must be called
// before exit.
func setupLog() (func() error, error) {
	if os.Getenv("EDUCAST_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	if logFile := os.Getenv("EDUCAST_LOGFILE"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetReportTimestamp(true)
		return f.Close, nil
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}
	return func() error { return nil }, nil
}
