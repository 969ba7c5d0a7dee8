package confirmation

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoPending is returned when the id does not match the confirmation on screen.
var ErrNoPending = errors.New("no matching confirmation is pending")

// Confirmation is a yes/no question guarding a destructive action.
// Message is Markdown.
type Confirmation struct {
	ID       string
	Message  string
	OpenedAt time.Time
}

// Gate holds at most one pending confirmation. Opening a new one replaces the
// old one, whose action is then never run.
type Gate struct {
	mu         sync.Mutex
	pending    *Confirmation
	onAccept   func(ctx context.Context) error
	now        func() time.Time
	generateID func() string
}

// NewGate creates an empty gate.
func NewGate(now func() time.Time, generateID func() string) *Gate {
	return &Gate{now: now, generateID: generateID}
}

// Open shows a confirmation, replacing any pending one.
// PRE: onAccept is non-nil
// POST: Pending() returns the new confirmation
func (g *Gate) Open(message string, onAccept func(ctx context.Context) error) Confirmation {
	c := Confirmation{
		ID:       g.generateID(),
		Message:  message,
		OpenedAt: g.now(),
	}
	g.mu.Lock()
	g.pending = &c
	g.onAccept = onAccept
	g.mu.Unlock()
	return c
}

// Pending returns the confirmation on screen, if any.
func (g *Gate) Pending() (Confirmation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Confirmation{}, false
	}
	return *g.pending, true
}

// Accept closes the confirmation and runs its action.
// PRE: id identifies the pending confirmation
// POST: Gate is empty; the action ran exactly once. Stale ids return ErrNoPending
// and run nothing.
func (g *Gate) Accept(ctx context.Context, id string) error {
	g.mu.Lock()
	if g.pending == nil || g.pending.ID != id {
		g.mu.Unlock()
		return ErrNoPending
	}
	action := g.onAccept
	g.pending = nil
	g.onAccept = nil
	g.mu.Unlock()
	return action(ctx)
}

// Decline closes the confirmation without running its action.
func (g *Gate) Decline(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil || g.pending.ID != id {
		return ErrNoPending
	}
	g.pending = nil
	g.onAccept = nil
	return nil
}

// Dismiss is a backdrop click; it behaves like Decline.
func (g *Gate) Dismiss(id string) error {
	return g.Decline(id)
}

// Cancel drops whatever is pending.
func (g *Gate) Cancel() {
	g.mu.Lock()
	g.pending = nil
	g.onAccept = nil
	g.mu.Unlock()
}
