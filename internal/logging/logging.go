// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects where and how much the logger writes.
type Options struct {
	Level  string
	File   string // used unless Stderr is set; empty discards output
	Stderr bool
}

// New returns a JSON logger and a cleanup func that closes the log file.
// The TUI owns the terminal, so entries go to a file unless Stderr is set.
func New(opts Options) (*logrus.Logger, func(), error) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.AddHook(redactHook{})

	level := logrus.InfoLevel
	if opts.Level != "" {
		lv, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging.New: %w", err)
		}
		level = lv
	}
	l.SetLevel(level)

	cleanup := func() {}
	switch {
	case opts.Stderr:
		l.SetOutput(os.Stderr)
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("logging.New: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging.New: %w", err)
		}
		l.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	default:
		l.SetOutput(io.Discard)
	}
	return l, cleanup, nil
}

var sensitiveKeys = []string{"token", "password", "authorization", "secret"}

const mask = "******"

// redactHook masks fields whose names look like credentials.
type redactHook struct{}

func (redactHook) Levels() []logrus.Level { return logrus.AllLevels }

func (redactHook) Fire(e *logrus.Entry) error {
	for k, v := range e.Data {
		if s, ok := v.(string); ok && s != "" && sensitive(k) {
			e.Data[k] = mask
		}
	}
	return nil
}

func sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
