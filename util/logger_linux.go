//go:build linux
// +build linux

package util

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/coreos/go-systemd/v22/journal"
)

// journaldWriter implements io.Writer for journald logging
type journaldWriter struct{}

func (w *journaldWriter) Write(p []byte) (n int, err error) {
	// journald adds its own newline
	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}

	err = journal.Send(msg, journal.PriInfo, map[string]string{
		"SYSLOG_IDENTIFIER": Name,
	})
	if err != nil {
		return fmt.Fprintf(os.Stderr, "%s", p)
	}
	return len(p), nil
}

var logWriter io.Writer = os.Stderr

// GetLogWriter returns the current log writer (for use by other packages)
func GetLogWriter() io.Writer {
	return logWriter
}

// SetupLogging routes the standard logger to journald when requested and
// available, and otherwise to logFile so the terminal stays free for the
// UI. The returned closer is nil when nothing needs closing.
func SetupLogging(withJournald bool, logFile string) (io.Closer, error) {
	if withJournald {
		if journal.Enabled() {
			writer := &journaldWriter{}
			logWriter = writer
			log.SetOutput(writer)
			log.SetFlags(0) // journald adds its own timestamps
			log.Println("Logging initialized with journald support")
			return nil, nil
		}
		log.Println("Warning: Journald not available on this system; using log file")
	}
	return setupFileLogging(logFile)
}
