package vidgfx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/vidgfx/render"
)

// SetLogger configures the logger for vidgfx and all its backends.
// By default, vidgfx produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
//
// Log levels used by vidgfx:
//   - [slog.LevelDebug]: resource lifecycle, target resizes
//   - [slog.LevelInfo]: context initialization (LogNotice)
//   - [slog.LevelWarn]: capability mismatches, failed copies (LogWarning)
//   - [slog.LevelError]: unsupported pixel formats, device failures (LogCritical)
//
// Records emitted by a Context carry a "cat" attribute naming the subsystem.
//
// The logger is stored once, in the render package, so the Context and the
// backends always share it.
func SetLogger(l *slog.Logger) {
	render.SetLogger(l)
}

// Logger returns the current logger used by vidgfx.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return render.Logger()
}

// LogCategory is the "cat" attribute value of records emitted by a Context.
const LogCategory = "vidgfx"

// LogLevel is the severity of a log notification.
type LogLevel int

const (
	LogNotice LogLevel = iota
	LogWarning
	LogCritical
)

// String returns the level name.
func (l LogLevel) String() string {
	switch l {
	case LogNotice:
		return "notice"
	case LogWarning:
		return "warning"
	case LogCritical:
		return "critical"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// SlogLevel returns the slog level a notification is logged at.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogWarning:
		return slog.LevelWarn
	case LogCritical:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logLevelOf maps a slog level onto the three notification levels.
func logLevelOf(l slog.Level) LogLevel {
	switch {
	case l >= slog.LevelError:
		return LogCritical
	case l >= slog.LevelWarn:
		return LogWarning
	default:
		return LogNotice
	}
}

// LogCallback receives log notifications.
type LogCallback func(cat, msg string, lvl LogLevel)

// callbackHandler adapts a LogCallback to slog.Handler.
type callbackHandler struct {
	fn     LogCallback
	cat    string
	attrs  []slog.Attr
	prefix string
}

// NewLogCallbackHandler returns a slog.Handler that forwards records at
// slog.LevelInfo and above to fn. The category is taken from the record's
// "cat" attribute; other attributes are appended to the message as
// key=value pairs.
//
//	vidgfx.SetLogger(slog.New(vidgfx.NewLogCallbackHandler(
//	    func(cat, msg string, lvl vidgfx.LogLevel) {
//	        appLog.Printf("[%s] %s: %s", lvl, cat, msg)
//	    })))
func NewLogCallbackHandler(fn LogCallback) slog.Handler {
	return &callbackHandler{fn: fn, cat: LogCategory}
}

func (h *callbackHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.fn != nil && l >= slog.LevelInfo
}

func (h *callbackHandler) Handle(_ context.Context, r slog.Record) error {
	cat := h.cat
	var sb strings.Builder
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "cat" && h.prefix == "" {
			cat = a.Value.String()
		} else {
			fmt.Fprintf(&sb, " %s%s=%v", h.prefix, a.Key, a.Value)
		}
		return true
	})
	h.fn(cat, sb.String(), logLevelOf(r.Level))
	return nil
}

// WithAttrs qualifies attrs with the current group so later groups do not
// apply to them.
func (h *callbackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == "cat" && h.prefix == "" {
			n.cat = a.Value.String()
			continue
		}
		n.attrs = append(n.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &n
}

func (h *callbackHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.prefix = h.prefix + name + "."
	return &n
}
