package notify

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"sync"
)

var Logger = logger.GetLogger("notify")

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Kind classifies a user notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	default:
		return false
	}
}

// INotifier surfaces messages to the user (a toast, a terminal line, a log entry).
// Notify is fire-and-forget: it never fails and callers never wait on the user.
type INotifier interface {
	Notify(kind Kind, message string)
}

// NotifierFunc adapts a function to the INotifier interface
type NotifierFunc func(kind Kind, message string)

func (f NotifierFunc) Notify(kind Kind, message string) {
	f(kind, message)
}

// --------------------------------------------------------------------------
// Log Notifier
// --------------------------------------------------------------------------

type logNotifier struct {
	logger logger.ILogger
}

// NewLogNotifier writes notifications to a logger, picking the log level from the kind.
// A nil logger uses the package logger.
func NewLogNotifier(l logger.ILogger) INotifier {
	if l == nil {
		l = Logger
	}
	return &logNotifier{logger: l}
}

func (n *logNotifier) Notify(kind Kind, message string) {
	switch kind {
	case KindError:
		n.logger.Errorf("%s", message)
	case KindWarning:
		n.logger.Warningf("%s", message)
	default:
		n.logger.Infof("[%s] %s", kind, message)
	}
}

// --------------------------------------------------------------------------
// Console Notifier
// --------------------------------------------------------------------------

type consoleNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	colors map[Kind]*color.Color
}

// NewConsoleNotifier prints one colored line per notification to w.
// Colors are disabled automatically when w is not a terminal (see color.NoColor).
func NewConsoleNotifier(w io.Writer) INotifier {
	return &consoleNotifier{
		w: w,
		colors: map[Kind]*color.Color{
			KindSuccess: color.New(color.FgGreen, color.Bold),
			KindError:   color.New(color.FgRed, color.Bold),
			KindWarning: color.New(color.FgYellow, color.Bold),
			KindInfo:    color.New(color.FgCyan, color.Bold),
		},
	}
}

func (n *consoleNotifier) Notify(kind Kind, message string) {
	c, ok := n.colors[kind]
	if !ok {
		c = color.New(color.Reset)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = c.Fprintf(n.w, "%-7s", kind)
	_, _ = fmt.Fprintf(n.w, " %s\n", message)
}

// --------------------------------------------------------------------------
// Noop Notifier
// --------------------------------------------------------------------------

type noopNotifier struct{}

// NewNoopNotifier discards all notifications. Useful for tests and library users
// without a user facing surface.
func NewNoopNotifier() INotifier {
	return noopNotifier{}
}

func (noopNotifier) Notify(Kind, string) {}
