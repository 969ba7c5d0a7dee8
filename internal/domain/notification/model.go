package notification

import (
	"sync"
	"time"
)

// Severities
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Color presets used by the toast styles.
const (
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorOrange = "orange"
	ColorRed    = "red"
)

// SeverityColor maps each severity to its toast color.
var SeverityColor = map[string]string{
	SeverityInfo:    ColorBlue,
	SeveritySuccess: ColorGreen,
	SeverityWarning: ColorOrange,
	SeverityError:   ColorRed,
}

// Toast timeline
const (
	EnterDelay   = 10 * time.Millisecond
	VisibleFor   = 3 * time.Second
	FadeDuration = 300 * time.Millisecond
)

// Phases of a toast on screen.
const (
	PhaseEntering = "entering"
	PhaseVisible  = "visible"
	PhaseLeaving  = "leaving"
)

// Notification is a transient, auto-dismissing message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	EnterAt   time.Time `json:"enter_at"`
	LeaveAt   time.Time `json:"leave_at"`
	RemoveAt  time.Time `json:"remove_at"`
}

// Phase returns where the toast is on its timeline at now.
func (n *Notification) Phase(now time.Time) string {
	switch {
	case now.Before(n.EnterAt):
		return PhaseEntering
	case now.Before(n.LeaveAt):
		return PhaseVisible
	default:
		return PhaseLeaving
	}
}

// Remaining returns how long the toast stays on screen after now.
func (n *Notification) Remaining(now time.Time) time.Duration {
	if d := n.RemoveAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// NormalizeSeverity returns severity if known, else SeverityInfo.
func NormalizeSeverity(severity string) string {
	if _, ok := SeverityColor[severity]; ok {
		return severity
	}
	return SeverityInfo
}

// Timer is the handle returned by a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc satisfies it via AfterFunc.
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc schedules with the runtime timer.
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Center keeps the stack of live toasts. Each toast removes itself when its
// timer fires; toasts never replace each other.
// Safe for concurrent use: timer callbacks run on their own goroutines.
type Center struct {
	mu         sync.Mutex
	items      []Notification
	timers     map[string]Timer
	now        func() time.Time
	generateID func() string
	schedule   Scheduler
}

// NewCenter creates a notification center.
// PRE: now, generateID and schedule are non-nil
// POST: Returns an empty center
func NewCenter(now func() time.Time, generateID func() string, schedule Scheduler) *Center {
	return &Center{
		timers:     make(map[string]Timer),
		now:        now,
		generateID: generateID,
		schedule:   schedule,
	}
}

// Notify pushes a toast and schedules its removal.
// PRE: message is non-empty
// POST: Toast is on the stack until RemoveAt
func (c *Center) Notify(message, severity string) Notification {
	severity = NormalizeSeverity(severity)
	created := c.now()
	n := Notification{
		ID:        c.generateID(),
		Message:   message,
		Severity:  severity,
		Color:     SeverityColor[severity],
		CreatedAt: created,
		EnterAt:   created.Add(EnterDelay),
		LeaveAt:   created.Add(VisibleFor),
		RemoveAt:  created.Add(VisibleFor + FadeDuration),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	id := n.ID
	t := c.schedule(VisibleFor+FadeDuration, func() { c.remove(id) })

	c.mu.Lock()
	// The timer may already have fired with a zero-delay scheduler.
	if c.indexOf(id) >= 0 {
		c.timers[id] = t
	}
	c.mu.Unlock()
	return n
}

// Active returns the toasts still on screen at now, oldest first.
func (c *Center) Active(now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if now.Before(n.RemoveAt) {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of toasts not yet removed by their timers.
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops all pending removal timers.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

func (c *Center) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	delete(c.timers, id)
}

func (c *Center) indexOf(id string) int {
	for i, n := range c.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
