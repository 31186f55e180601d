package util

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// setupFileLogging sends the standard logger to path. An empty path keeps
// stderr.
func setupFileLogging(path string) (io.Closer, error) {
	if path == "" {
		return nil, nil
	}
	f, err := tea.LogToFile(path, Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logWriter = f
	log.Printf("Logging to %s", path)
	return f, nil
}
