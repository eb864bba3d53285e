// Package iologger sets up the default slog logger from LogConfig.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gnames/gntaxon/pkg/config"
)

// LogFileName is the name of the log file in the log directory.
const LogFileName = "gntaxon.log"

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init replaces the default slog logger. With the "file" destination the
// log goes to LogFileName in logDir, which is truncated unless keep is
// true. A log file opened by an earlier Init is closed.
func Init(logDir string, cfg config.LogConfig, keep bool) error {
	mu.Lock()
	defer mu.Unlock()

	w, f, err := output(logDir, cfg.Destination, keep)
	if err != nil {
		return err
	}

	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "tint":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h).With("app", config.AppName))

	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	return nil
}

// output returns the writer for a destination and the file behind it, if
// any.
func output(logDir, dest string, keep bool) (io.Writer, *os.File, error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return os.Stdout, nil, nil
	case "file":
	default:
		return os.Stderr, nil, nil
	}

	path := filepath.Join(logDir, LogFileName)
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if keep {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, nil, CreateLogFileError(path, err)
	}
	return f, f, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
