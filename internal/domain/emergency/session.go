// Package emergency tracks per-actor break-glass sessions. A session is a
// server-side lease: activation records the start instant on the server
// clock, and every later access check compares against that clock, so a
// client with a skewed or frozen clock cannot stretch the window.
package emergency

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrSessionInactive is returned when an actor attempts override access
	// without an active session.
	ErrSessionInactive = errors.New("emergency session not active")
	// ErrSessionExpired is returned when the lease has lapsed. The session
	// is deactivated as a side effect.
	ErrSessionExpired = errors.New("emergency session expired")
)

// Session is the lease state reported to callers.
type Session struct {
	ActorID   string    `json:"actorId"`
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type lease struct {
	startedAt time.Time
	expiresAt time.Time
}

// Controller holds the in-memory lease table. Sessions are deliberately not
// persisted: a restart revokes all emergency access, which is the safe
// failure mode.
type Controller struct {
	mu     sync.Mutex
	leases map[string]lease
	window time.Duration
	nowFn  func() time.Time
}

func NewController(window time.Duration) *Controller {
	return &Controller{
		leases: make(map[string]lease),
		window: window,
		nowFn:  time.Now,
	}
}

// SetNowFunc overrides the clock source, for tests.
func (c *Controller) SetNowFunc(fn func() time.Time) {
	c.mu.Lock()
	c.nowFn = fn
	c.mu.Unlock()
}

// Toggle flips the actor's session. Activating always starts a fresh lease,
// even right after an expiry or an explicit deactivation.
func (c *Controller) Toggle(actorID string) Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFn()
	if l, ok := c.leases[actorID]; ok && now.Before(l.expiresAt) {
		delete(c.leases, actorID)
		return Session{ActorID: actorID, Active: false}
	}

	l := lease{startedAt: now, expiresAt: now.Add(c.window)}
	c.leases[actorID] = l
	return Session{ActorID: actorID, Active: true, StartedAt: l.startedAt, ExpiresAt: l.expiresAt}
}

// Status reports the actor's current session, sweeping an expired lease.
func (c *Controller) Status(actorID string) Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.leases[actorID]
	if !ok {
		return Session{ActorID: actorID, Active: false}
	}
	if !c.nowFn().Before(l.expiresAt) {
		delete(c.leases, actorID)
		return Session{ActorID: actorID, Active: false}
	}
	return Session{ActorID: actorID, Active: true, StartedAt: l.startedAt, ExpiresAt: l.expiresAt}
}

// Remaining returns the time left on the actor's lease, zero when inactive
// or expired.
func (c *Controller) Remaining(actorID string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.leases[actorID]
	if !ok {
		return 0
	}
	rem := l.expiresAt.Sub(c.nowFn())
	if rem < 0 {
		return 0
	}
	return rem
}

// Check gates an override access. Inactive sessions fail with
// ErrSessionInactive; lapsed leases are deactivated and fail with
// ErrSessionExpired.
func (c *Controller) Check(actorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.leases[actorID]
	if !ok {
		return ErrSessionInactive
	}
	if !c.nowFn().Before(l.expiresAt) {
		delete(c.leases, actorID)
		return ErrSessionExpired
	}
	return nil
}
