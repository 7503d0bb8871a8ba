package settings

import (
	"sync"
	"time"
)

// CooldownKind names a sensitive operation with its own cooldown window.
type CooldownKind string

const (
	CooldownEmailChange      CooldownKind = "email-change"
	CooldownVerificationSend CooldownKind = "verification-send"
)

// CooldownGate rejects repeated sensitive operations inside a fixed window,
// tracked per admin identity and operation kind. Entries are never swept;
// the admin population is small enough that the map stays bounded.
type CooldownGate struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewCooldownGate creates a gate with the given window.
func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Remaining reports how much of the window is left for the identity and
// kind; zero means the operation may proceed.
func (g *CooldownGate) Remaining(adminID string, kind CooldownKind) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, exists := g.last[g.key(adminID, kind)]
	if !exists {
		return 0
	}
	elapsed := time.Since(last)
	if elapsed >= g.window {
		return 0
	}
	return g.window - elapsed
}

// Stamp records a successful invocation, starting the window.
func (g *CooldownGate) Stamp(adminID string, kind CooldownKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[g.key(adminID, kind)] = time.Now()
}

func (g *CooldownGate) key(adminID string, kind CooldownKind) string {
	return adminID + ":" + string(kind)
}
