package notification_test

import (
	"fmt"
	"testing"
	"time"

	"tracker/internal/domain/notification"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeScheduler records callbacks instead of arming real timers.
type fakeScheduler struct {
	delays    []time.Duration
	callbacks []func()
	stopped   int
}

type fakeTimer struct{ s *fakeScheduler }

// Stop implements notification.Timer.
func (t fakeTimer) Stop() bool {
	t.s.stopped++
	return true
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) notification.Timer {
	s.delays = append(s.delays, d)
	s.callbacks = append(s.callbacks, f)
	return fakeTimer{s: s}
}

func newTestCenter() (*notification.Center, *fakeScheduler) {
	s := &fakeScheduler{}
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("toast-%d", n)
	}
	return notification.NewCenter(func() time.Time { return fixedTime }, gen, s.schedule), s
}

// TestCenter_Notify tests toast creation and its timeline.
func TestCenter_Notify(t *testing.T) {
	c, s := newTestCenter()
	n := c.Notify("Data saved successfully!", notification.SeveritySuccess)

	if n.Color != notification.ColorGreen {
		t.Errorf("expected green, got %s", n.Color)
	}
	if !n.LeaveAt.Equal(fixedTime.Add(3 * time.Second)) {
		t.Errorf("expected LeaveAt 3s after creation, got %v", n.LeaveAt)
	}
	if len(s.delays) != 1 || s.delays[0] != notification.VisibleFor+notification.FadeDuration {
		t.Errorf("expected one removal timer at visible+fade, got %v", s.delays)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 toast, got %d", c.Len())
	}
}

// TestCenter_SeverityColors tests the severity to color mapping.
func TestCenter_SeverityColors(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{notification.SeverityInfo, notification.ColorBlue},
		{notification.SeveritySuccess, notification.ColorGreen},
		{notification.SeverityWarning, notification.ColorOrange},
		{notification.SeverityError, notification.ColorRed},
		{"shouting", notification.ColorBlue},
	}
	c, _ := newTestCenter()
	for _, tt := range tests {
		if got := c.Notify("x", tt.severity).Color; got != tt.want {
			t.Errorf("severity %q: expected %s, got %s", tt.severity, tt.want, got)
		}
	}
}

// TestCenter_Stacks tests that toasts stack and each removes only itself.
func TestCenter_Stacks(t *testing.T) {
	c, s := newTestCenter()
	c.Notify("first", notification.SeverityInfo)
	c.Notify("second", notification.SeverityWarning)
	c.Notify("third", notification.SeverityError)

	active := c.Active(fixedTime)
	if len(active) != 3 {
		t.Fatalf("expected 3 stacked toasts, got %d", len(active))
	}
	if active[0].Message != "first" || active[2].Message != "third" {
		t.Errorf("expected creation order, got %v", active)
	}

	// Fire the second toast's timer only.
	s.callbacks[1]()
	active = c.Active(fixedTime)
	if len(active) != 2 {
		t.Fatalf("expected 2 toasts after one timer, got %d", len(active))
	}
	if active[0].Message != "first" || active[1].Message != "third" {
		t.Errorf("expected second toast removed, got %v", active)
	}

	// Firing twice is harmless.
	s.callbacks[1]()
	if c.Len() != 2 {
		t.Errorf("expected 2 toasts, got %d", c.Len())
	}
}

// TestCenter_ActiveExpires tests that Active hides toasts past RemoveAt even before the timer fires.
func TestCenter_ActiveExpires(t *testing.T) {
	c, _ := newTestCenter()
	c.Notify("soon gone", notification.SeverityInfo)
	later := fixedTime.Add(notification.VisibleFor + notification.FadeDuration)
	if got := c.Active(later); len(got) != 0 {
		t.Errorf("expected no active toasts at RemoveAt, got %d", len(got))
	}
}

// TestNotification_Phase tests the entering/visible/leaving timeline.
func TestNotification_Phase(t *testing.T) {
	c, _ := newTestCenter()
	n := c.Notify("hello", notification.SeverityInfo)
	tests := []struct {
		at   time.Time
		want string
	}{
		{fixedTime, notification.PhaseEntering},
		{fixedTime.Add(notification.EnterDelay), notification.PhaseVisible},
		{fixedTime.Add(2 * time.Second), notification.PhaseVisible},
		{fixedTime.Add(notification.VisibleFor), notification.PhaseLeaving},
	}
	for _, tt := range tests {
		if got := n.Phase(tt.at); got != tt.want {
			t.Errorf("Phase(%v) = %s, want %s", tt.at.Sub(fixedTime), got, tt.want)
		}
	}
	if got := n.Remaining(fixedTime.Add(time.Second)); got != 2300*time.Millisecond {
		t.Errorf("expected 2.3s remaining, got %v", got)
	}
	if got := n.Remaining(fixedTime.Add(time.Hour)); got != 0 {
		t.Errorf("expected 0 remaining, got %v", got)
	}
}

// TestCenter_Close tests that pending timers are stopped.
func TestCenter_Close(t *testing.T) {
	c, s := newTestCenter()
	c.Notify("a", notification.SeverityInfo)
	c.Notify("b", notification.SeverityInfo)
	c.Close()
	if s.stopped != 2 {
		t.Errorf("expected 2 timers stopped, got %d", s.stopped)
	}
}

// TestCenter_RealTimer tests removal through the runtime timer.
func TestCenter_RealTimer(t *testing.T) {
	done := make(chan struct{})
	c := notification.NewCenter(time.Now, func() string { return "real" },
		func(d time.Duration, f func()) notification.Timer {
			return time.AfterFunc(time.Millisecond, func() {
				f()
				close(done)
			})
		})
	c.Notify("tick", notification.SeverityInfo)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	if c.Len() != 0 {
		t.Errorf("expected toast removed by timer, got %d", c.Len())
	}
}
