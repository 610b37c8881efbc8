package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Policy defines one rate limit: at most MaxRequests within a trailing
// Window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultPublicDocumentPolicy is the limit applied to unauthenticated
// public document downloads.
func DefaultPublicDocumentPolicy() Policy {
	return Policy{
		MaxRequests: 20,
		Window:      60 * time.Second,
	}
}

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until a slot frees up. Zero when allowed.
	RetryAfter time.Duration
}

type window struct {
	mu     sync.Mutex
	stamps []time.Time
}

// Limiter is a sliding-window limiter keyed by identifier (an IP address or
// principal ID). Windows are created lazily on first use and old timestamps
// are evicted lazily on each check; StartCleanup bounds memory for
// identifiers that went quiet.
type Limiter struct {
	policy Policy
	now    func() time.Time

	mu      sync.RWMutex
	windows map[string]*window
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithNowFunc overrides the limiter's clock.
func WithNowFunc(now func() time.Time) LimiterOption {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter for the given policy.
func NewLimiter(policy Policy, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		policy:  policy,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndRecord evicts expired timestamps for the identifier, then either
// records the request and allows it, or denies it with the time until the
// oldest in-window request expires. Each identifier's window is read,
// modified and written under its own lock, so two concurrent requests
// racing for the last slot cannot both win.
func (l *Limiter) CheckAndRecord(identifier string) Result {
	w := l.window(identifier)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.policy.Window)

	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= l.policy.MaxRequests {
		oldest := w.stamps[0]
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: oldest.Add(l.policy.Window).Sub(now),
		}
	}

	w.stamps = append(w.stamps, now)
	return Result{
		Allowed:   true,
		Remaining: l.policy.MaxRequests - len(w.stamps),
	}
}

func (l *Limiter) window(identifier string) *window {
	l.mu.RLock()
	w, ok := l.windows[identifier]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[identifier]; ok {
		return w
	}
	w = &window{}
	l.windows[identifier] = w
	return w
}

// Cleanup drops identifiers whose every timestamp has left the window.
func (l *Limiter) Cleanup() {
	cutoff := l.now().Add(-l.policy.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, w := range l.windows {
		w.mu.Lock()
		stale := len(w.stamps) == 0 || !w.stamps[len(w.stamps)-1].After(cutoff)
		w.mu.Unlock()
		if stale {
			delete(l.windows, id)
		}
	}
}

// StartCleanup runs Cleanup on a ticker until the context is canceled.
func (l *Limiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.policy.Window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
