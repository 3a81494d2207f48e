// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/unitcache/internal/core/ports"
	"gopkg.in/natefinch/lumberjack.v2"
)

// messager is implemented by zerr errors to report their own message without the chain.
type messager interface {
	Message() string
}

// Debug log rotation.
const (
	debugMaxSizeMB  = 5
	debugMaxBackups = 3
	debugMaxAgeDays = 14
)

// Logger implements ports.Logger using log/slog.
// Console output is pretty or JSON; an optional debug file receives every
// record, including debug ones, as JSON.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	jsonMode bool
	output   io.Writer
	debug    *lumberjack.Logger
}

// New creates a new Logger writing to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput updates the console destination. A nil writer means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches the console between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// SetDebugFile mirrors every record, including debug ones, into a rotating
// file at path. An empty path disables the mirror.
func (l *Logger) SetDebugFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.debug != nil {
		err = l.debug.Close()
		l.debug = nil
	}
	if path != "" {
		l.debug = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    debugMaxSizeMB,
			MaxBackups: debugMaxBackups,
			MaxAge:     debugMaxAgeDays,
		}
	}
	l.rebuild()
	return err
}

// Close releases the debug file, if any.
func (l *Logger) Close() error {
	return l.SetDebugFile("")
}

// rebuild replaces the slog logger. l.mu must be held.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var console slog.Handler
	if l.jsonMode {
		console = slog.NewJSONHandler(l.output, opts)
	} else {
		console = NewPrettyHandler(l.output, opts)
	}

	if l.debug == nil {
		l.logger = slog.New(console)
		return
	}
	file := slog.NewJSONHandler(l.debug, &slog.HandlerOptions{Level: slog.LevelDebug})
	l.logger = slog.New(fanout{console, file})
}

// Debug logs a message that only reaches the debug file.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error. In pretty mode the zerr chain is printed one cause per line.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(FormatError(err))
}

// FormatError renders err as a headline followed by its causes:
//
//	Error: failed to load unit
//
//	  Caused by:
//	    → source path not found
func FormatError(err error) string {
	messages := collectMessages(err)

	var lines []string
	for i, msg := range messages {
		parts := strings.Split(msg, "\n")
		switch i {
		case 0:
			lines = append(lines, "Error: "+parts[0])
			for _, line := range parts[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		case 1:
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+parts[0])
		for _, line := range parts[1:] {
			lines = append(lines, "      "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// collectMessages walks zerr wrappers, skipping metadata-only ones. The first
// non-zerr error ends the walk with its full message.
func collectMessages(err error) []string {
	var messages []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		if msg := m.Message(); msg != "" {
			messages = append(messages, msg)
		}
		current = errors.Unwrap(current)
	}
	return messages
}
