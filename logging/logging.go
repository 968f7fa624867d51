// Package logging configures slog for the runtime. Library packages log
// through Logger(), which discards everything until an application installs
// a real logger with SetLogger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Levels beyond the four slog provides.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l for every package of the runtime. nil restores the
// silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the active runtime logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Options for the console logger. File, when set, receives a copy of every
// record written to the console.
type Options struct {
	Level     slog.Level
	File      string
	AddSource bool
	Console   io.Writer
}

// New builds a text logger from opts. The returned closer releases the log
// file, if any, and must be called on shutdown.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	if opts.Console != nil {
		out = opts.Console
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open log file %q", opts.File)
		}
		out = io.MultiWriter(out, file)
		closer = file
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		AddSource:   opts.AddSource,
		Level:       opts.Level,
		ReplaceAttr: replaceLevel,
	})
	return slog.New(handler), closer, nil
}

// ParseLevel accepts trace, debug, info, warn, error and fatal.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "fatal":
		return LevelFatal, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Wrapf(err, "log level %q", s)
	}
	return l, nil
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case level <= LevelTrace:
		a.Value = slog.StringValue("TRACE")
	case level >= LevelFatal:
		a.Value = slog.StringValue("FATAL")
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
