package engine

import (
	"testing"
	"time"
)

func TestClock_FiresInOrder(t *testing.T) {
	c := NewClock()
	var fired []string
	var at []time.Duration

	c.After(300*time.Millisecond, func() { fired = append(fired, "c"); at = append(at, c.Now()) })
	c.After(100*time.Millisecond, func() { fired = append(fired, "a"); at = append(at, c.Now()) })
	c.After(100*time.Millisecond, func() { fired = append(fired, "b"); at = append(at, c.Now()) })

	c.Advance(50 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("Expected nothing fired yet, got %v", fired)
	}

	c.Advance(time.Second)
	if got := len(fired); got != 3 {
		t.Fatalf("Expected 3 timers fired, got %d", got)
	}
	if fired[0] != "a" || fired[1] != "b" || fired[2] != "c" {
		t.Errorf("Unexpected firing order: %v", fired)
	}
	if at[0] != 100*time.Millisecond || at[2] != 300*time.Millisecond {
		t.Errorf("Expected Now() to read the due time, got %v", at)
	}
	if c.Now() != 1050*time.Millisecond {
		t.Errorf("Expected clock at 1.05s, got %v", c.Now())
	}
}

func TestClock_Stop(t *testing.T) {
	c := NewClock()
	fired := false
	timer := c.After(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Expected Stop to report a pending timer")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Error("Expected stopped timer not to fire")
	}
	if timer.Stop() {
		t.Error("Expected second Stop to report false")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", c.Pending())
	}
}

func TestClock_NestedScheduling(t *testing.T) {
	c := NewClock()
	count := 0
	c.After(100*time.Millisecond, func() {
		count++
		c.After(100*time.Millisecond, func() { count++ })
		c.After(time.Hour, func() { count++ })
	})

	c.Advance(250 * time.Millisecond)
	if count != 2 {
		t.Errorf("Expected 2 callbacks, got %d", count)
	}
	if c.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", c.Pending())
	}

	c.Advance(-time.Second)
	if c.Now() != 250*time.Millisecond {
		t.Errorf("Expected negative advance to be ignored, got %v", c.Now())
	}
}
