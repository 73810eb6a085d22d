package relay

import (
	"errors"
	"testing"
	"time"
)

func TestConnSendAfterClose(t *testing.T) {
	c := NewConn("a", "", 4)

	if err := c.Send([]byte("one")); err != nil {
		t.Fatalf("Expected send to succeed, got %v", err)
	}
	if !c.Close() {
		t.Fatal("Expected first Close to report true")
	}
	if c.Close() {
		t.Error("Expected second Close to report false")
	}
	if err := c.Send([]byte("two")); !errors.Is(err, ErrConnClosed) {
		t.Errorf("Expected ErrConnClosed, got %v", err)
	}

	// Frames queued before Close are still readable.
	frames := pending(c)
	if len(frames) != 1 || string(frames[0]) != "one" {
		t.Errorf("Expected the queued frame to survive Close, got %q", frames)
	}
}

func TestConnQueueFull(t *testing.T) {
	c := NewConn("a", "", 1)
	if err := c.Send([]byte("x")); err != nil {
		t.Fatalf("Expected send to succeed, got %v", err)
	}
	if err := c.Send([]byte("y")); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestConnRoleAssignedOnce(t *testing.T) {
	c := NewConn("a", "", 1)
	if c.Role() != RoleUnregistered {
		t.Fatalf("Expected new connection to be unregistered, got %s", c.Role())
	}
	if !c.assignRole(RoleViewer) {
		t.Fatal("Expected first role assignment to succeed")
	}
	if c.assignRole(RoleCamera) {
		t.Error("Expected second role assignment to fail")
	}
	if c.Role() != RoleViewer {
		t.Errorf("Expected role viewer, got %s", c.Role())
	}
}

func TestConnPingCoalesces(t *testing.T) {
	c := NewConn("a", "", 1)
	c.Ping()
	c.Ping()
	if len(c.Pings()) != 1 {
		t.Errorf("Expected a single pending ping, got %d", len(c.Pings()))
	}
	c.Close()
	if c.Ping() {
		t.Error("Expected ping on closed connection to report false")
	}
}

func TestConnTouch(t *testing.T) {
	c := NewConn("a", "", 1)
	later := c.LastSeen().Add(time.Minute)
	c.Touch(later)
	if !c.LastSeen().Equal(later) {
		t.Errorf("Expected last seen %v, got %v", later, c.LastSeen())
	}
}
