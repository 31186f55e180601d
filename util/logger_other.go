//go:build !linux
// +build !linux

package util

import (
	"io"
	"log"
	"os"
)

var logWriter io.Writer = os.Stderr

// GetLogWriter returns the current log writer (for use by other packages)
func GetLogWriter() io.Writer {
	return logWriter
}

// SetupLogging writes to logFile. Journald is not available on this
// operating system.
func SetupLogging(withJournald bool, logFile string) (io.Closer, error) {
	if withJournald {
		log.Println("Warning: Journald logging is not supported on this operating system")
	}
	return setupFileLogging(logFile)
}
