// Package notify carries toast-style notifications from the ledger to the
// user surface. Toasts are fire-and-forget with a fixed auto-dismiss hint;
// routine failures never block.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level classifies a toast.
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

// DefaultDismiss is the auto-dismiss hint attached to every toast.
const DefaultDismiss = 4 * time.Second

// Toast is one user-facing notification.
type Toast struct {
	Level   Level
	Message string
	Dismiss time.Duration
}

// Notifier receives toasts. Implementations must not block.
type Notifier interface {
	Notify(t Toast)
}

// Successf emits a success toast.
func Successf(n Notifier, format string, args ...interface{}) {
	n.Notify(Toast{Level: Success, Message: fmt.Sprintf(format, args...), Dismiss: DefaultDismiss})
}

// Infof emits an info toast.
func Infof(n Notifier, format string, args ...interface{}) {
	n.Notify(Toast{Level: Info, Message: fmt.Sprintf(format, args...), Dismiss: DefaultDismiss})
}

// Errorf emits an error toast.
func Errorf(n Notifier, format string, args ...interface{}) {
	n.Notify(Toast{Level: Error, Message: fmt.Sprintf(format, args...), Dismiss: DefaultDismiss})
}

// Writer prints toasts to an io.Writer. Used by the CLI with stderr.
type Writer struct {
	W io.Writer
}

func (w *Writer) Notify(t Toast) {
	fmt.Fprintf(w.W, "[%s] %s\n", t.Level, t.Message)
}

// Memory collects toasts for inspection. Used in tests.
type Memory struct {
	mu     sync.Mutex
	toasts []Toast
}

func (m *Memory) Notify(t Toast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, t)
}

// Toasts returns a copy of everything notified so far.
func (m *Memory) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Discard drops every toast.
type Discard struct{}

func (Discard) Notify(Toast) {}
