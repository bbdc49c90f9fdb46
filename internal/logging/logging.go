// Package logging builds the process logger and bridges it into whatsmeow.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// New returns a slog logger writing text or JSON records at level.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

type waLogger struct {
	base   *slog.Logger
	log    *slog.Logger
	module string
}

// WhatsApp adapts log for whatsmeow. Sub-loggers nest module names with "/".
func WhatsApp(log *slog.Logger, module string) waLog.Logger {
	return &waLogger{base: log, log: log.With("module", module), module: module}
}

func (w *waLogger) Errorf(msg string, args ...interface{}) { w.log.Error(fmt.Sprintf(msg, args...)) }
func (w *waLogger) Warnf(msg string, args ...interface{})  { w.log.Warn(fmt.Sprintf(msg, args...)) }
func (w *waLogger) Infof(msg string, args ...interface{})  { w.log.Info(fmt.Sprintf(msg, args...)) }
func (w *waLogger) Debugf(msg string, args ...interface{}) { w.log.Debug(fmt.Sprintf(msg, args...)) }

func (w *waLogger) Sub(module string) waLog.Logger {
	name := w.module + "/" + module
	return &waLogger{base: w.base, log: w.base.With("module", name), module: name}
}
