package alerts

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"
)

// MaxRawKeyBytes caps how much of a malformed value is kept for dedupe and logging.
const MaxRawKeyBytes = 64

// Notifier reports unusable upstream odds without flooding the log
type Notifier struct {
	mu         sync.Mutex
	lastAlerts map[string]time.Time // Dedupe alerts
	cooldown   time.Duration        // Minimum time between same alerts
	suppressed map[string]int       // Repeats swallowed since the last alert
}

// NewNotifier creates a new notifier
func NewNotifier(cooldown time.Duration) *Notifier {
	return &Notifier{
		lastAlerts: make(map[string]time.Time),
		cooldown:   cooldown,
		suppressed: make(map[string]int),
	}
}

// checkCooldown records key and reports whether it fired within the cooldown.
// Returns true when the alert should be suppressed.
func (n *Notifier) checkCooldown(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if lastTime, ok := n.lastAlerts[key]; ok {
		if time.Since(lastTime) < n.cooldown {
			n.suppressed[key]++
			return true
		}
	}
	n.lastAlerts[key] = time.Now()
	return false
}

// takeSuppressed returns and resets the repeat count for key.
func (n *Notifier) takeSuppressed(key string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := n.suppressed[key]
	delete(n.suppressed, key)
	return count
}

// MalformedOdds reports a raw odds value that resolved to the 1.0 placeholder.
// source identifies where it came from (request, feed match id, ...).
func (n *Notifier) MalformedOdds(source, raw string) {
	raw = truncate(raw, MaxRawKeyBytes)
	key := fmt.Sprintf("malformed-%s-%q", source, raw)
	if n.checkCooldown(key) {
		return
	}

	slog.Warn("Malformed odds replaced with placeholder",
		"source", source,
		"raw", raw,
		"repeats", n.takeSuppressed(key),
	)
}

// LogError logs an error
func (n *Notifier) LogError(context string, err error) {
	slog.Error("Request failed", "context", context, "error", err)
}

// CleanupOldAlerts removes stale alert records
func (n *Notifier) CleanupOldAlerts() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := time.Now().Add(-1 * time.Hour)
	if n.cooldown > time.Hour {
		cutoff = time.Now().Add(-n.cooldown)
	}
	for key, t := range n.lastAlerts {
		if t.Before(cutoff) {
			delete(n.lastAlerts, key)
			delete(n.suppressed, key)
		}
	}
}

// Tracked returns how many distinct alerts are currently remembered.
func (n *Notifier) Tracked() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.lastAlerts)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
