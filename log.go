package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// closeLog releases the log file opened by setupLog.
var closeLog = func() error { return nil }

func defaultLogPath() (string, error) {
	dir, err := gap.NewScope(gap.User, appName).CacheDir()
	if err != nil {
		return "", fmt.Errorf("could not find cache directory: %w", err)
	}
	return filepath.Join(dir, appName+".log"), nil
}

// setupLog points the default logger at --log-file, at a file in the cache
// dir when the TUI owns the screen, or at stderr otherwise.
func setupLog(tui bool) error {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	path := logFile
	if path == "" && tui {
		p, err := defaultLogPath()
		if err != nil {
			return err
		}
		path = p
	}
	if path == "" {
		log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{Level: level}))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetDefault(log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}))
	closeLog = f.Close
	return nil
}
