package memcache

import (
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New(0)
	if err := c.Set("a", 1, ""); err != nil {
		t.Fatal(err)
	}
	if got := c.Get("a"); got != 1 {
		t.Fatalf("got %v", got)
	}
	if !c.Has("a") {
		t.Fatal("expected Has to report true")
	}
}

func TestGetMissingKey(t *testing.T) {
	c := New(0)
	if got := c.Get("missing"); got != nil {
		t.Fatalf("got %v", got)
	}
	if c.Has("missing") {
		t.Fatal("expected Has to report false")
	}
}

func TestDelete(t *testing.T) {
	c := New(0)
	_ = c.Set("a", 1, "")
	if err := c.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if c.Has("a") {
		t.Fatal("expected key to be gone")
	}
}

func TestExpirationIsHonoredLazily(t *testing.T) {
	c := New(0)
	if err := c.Set("a", 1, "1ms"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if c.Has("a") {
		t.Fatal("expected the entry to have expired")
	}
	if got := c.Get("a"); got != nil {
		t.Fatalf("got %v", got)
	}
}

func TestInvalidTTLIsRejected(t *testing.T) {
	c := New(0)
	if err := c.Set("a", 1, "not-a-duration"); err == nil {
		t.Fatal("expected an error for an invalid ttl")
	}
}

func TestBackgroundSweepRemovesExpiredEntries(t *testing.T) {
	c := New(2 * time.Millisecond)
	defer c.Stop()
	if err := c.Set("a", 1, "1ms"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	c.mu.RLock()
	_, present := c.items["a"]
	c.mu.RUnlock()
	if present {
		t.Fatal("expected the background sweep to have removed the expired entry")
	}
}
