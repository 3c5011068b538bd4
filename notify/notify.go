// Package notify carries short user-facing messages from the controllers to
// whichever front end is showing them.
package notify

import (
	"fmt"
	"sync"
)

// Severity ranks a notification
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warn    Severity = "warn"
	Error   Severity = "error"
)

// Notification is one transient message
type Notification struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
	Detail   string   `json:"detail,omitempty"`
}

func (n Notification) String() string {
	if n.Detail == "" {
		return fmt.Sprintf("[%s] %s", n.Severity, n.Summary)
	}
	return fmt.Sprintf("[%s] %s: %s", n.Severity, n.Summary, n.Detail)
}

// Notifier receives notifications
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to Notifier
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification
var Discard Notifier = Func(func(Notification) {})

// Queue buffers notifications until a front end drains them. It is safe
// for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n to the queue
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns the queued notifications in arrival order and empties the
// queue
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued notifications
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Helpers building the common notifications

func Successf(summary, format string, args ...any) Notification {
	return Notification{Severity: Success, Summary: summary, Detail: fmt.Sprintf(format, args...)}
}

func Errorf(summary, format string, args ...any) Notification {
	return Notification{Severity: Error, Summary: summary, Detail: fmt.Sprintf(format, args...)}
}
