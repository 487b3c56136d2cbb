package alerts

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCheckCooldownSuppresses(t *testing.T) {
	n := NewNotifier(1 * time.Second)

	// First call should not suppress
	if n.checkCooldown("test-key") {
		t.Error("first call should not be suppressed")
	}

	// Immediate second call should suppress
	if !n.checkCooldown("test-key") {
		t.Error("second call within cooldown should be suppressed")
	}
}

func TestCheckCooldownExpires(t *testing.T) {
	n := NewNotifier(10 * time.Millisecond)

	if n.checkCooldown("test-key") {
		t.Error("first call should not be suppressed")
	}

	time.Sleep(15 * time.Millisecond)

	if n.checkCooldown("test-key") {
		t.Error("call after cooldown should not be suppressed")
	}
}

func TestCheckCooldownDifferentKeys(t *testing.T) {
	n := NewNotifier(1 * time.Second)

	if n.checkCooldown("key-a") {
		t.Error("first call for key-a should not be suppressed")
	}

	// Different key should not be suppressed
	if n.checkCooldown("key-b") {
		t.Error("first call for key-b should not be suppressed")
	}

	// Same key should be suppressed
	if !n.checkCooldown("key-a") {
		t.Error("second call for key-a should be suppressed")
	}
}

func TestMalformedOddsCountsRepeats(t *testing.T) {
	n := NewNotifier(1 * time.Hour)

	n.MalformedOdds("feed", "abc")
	n.MalformedOdds("feed", "abc")
	n.MalformedOdds("feed", "abc")

	key := `malformed-feed-"abc"`
	if got := n.takeSuppressed(key); got != 2 {
		t.Errorf("suppressed repeats = %d, want 2", got)
	}
	if got := n.takeSuppressed(key); got != 0 {
		t.Errorf("suppressed repeats after take = %d, want 0", got)
	}

	// Different source is a separate alert
	n.MalformedOdds("request", "abc")
	if got := n.Tracked(); got != 2 {
		t.Errorf("Tracked() = %d, want 2", got)
	}
}

func TestLogErrorDoesNotPanic(t *testing.T) {
	n := NewNotifier(time.Second)
	n.LogError("feed", errors.New("timeout"))
}

func TestCleanupOldAlerts(t *testing.T) {
	n := NewNotifier(1 * time.Hour)

	// Manually insert an old alert
	n.mu.Lock()
	n.lastAlerts["old-key"] = time.Now().Add(-2 * time.Hour)
	n.suppressed["old-key"] = 4
	n.lastAlerts["fresh-key"] = time.Now()
	n.mu.Unlock()

	n.CleanupOldAlerts()

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.lastAlerts["old-key"]; ok {
		t.Error("old alert should have been cleaned up")
	}
	if _, ok := n.suppressed["old-key"]; ok {
		t.Error("old repeat count should have been cleaned up")
	}
	if _, ok := n.lastAlerts["fresh-key"]; !ok {
		t.Error("fresh alert should not have been cleaned up")
	}
}

func TestMalformedOddsBoundsLongValues(t *testing.T) {
	n := NewNotifier(1 * time.Hour)

	// Distinct values that share a long prefix collapse to one record
	prefix := strings.Repeat("x", 200)
	for i := 0; i < 50; i++ {
		n.MalformedOdds("request", prefix+strings.Repeat("y", i))
	}
	if got := n.Tracked(); got != 1 {
		t.Errorf("Tracked() = %d, want 1", got)
	}

	n.mu.Lock()
	for key := range n.lastAlerts {
		if len(key) > len(`malformed-request-""`)+MaxRawKeyBytes {
			t.Errorf("key length %d exceeds bound", len(key))
		}
	}
	n.mu.Unlock()
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"", 3, ""},
		{"ab\u00e9cd", 3, "ab"}, // é is two bytes; never split it
		{"ab\u00e9cd", 4, "ab\u00e9"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.expected)
		}
	}
}
