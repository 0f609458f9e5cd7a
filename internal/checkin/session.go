package checkin

import (
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = internal.NewNotFoundError("Check-in session not found or expired", internal.ErrCodeSessionNotFound)
	ErrSessionLocked   = internal.NewForbiddenError("Too many failed attempts. Please log in again.", internal.ErrCodeSessionLocked)
)

// Session is one camera opening. Each new session starts with a full set of attempts.
type Session struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"-"`
	AttemptsLeft int       `json:"attempts_left"`
	Locked       bool      `json:"locked"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Governor tracks verification attempts per session in memory.
type Governor struct {
	clock       clock.Clock
	maxAttempts int
	ttl         time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewGovernor(c clock.Clock, maxAttempts int, ttl time.Duration) *Governor {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Governor{
		clock:       c,
		maxAttempts: maxAttempts,
		ttl:         ttl,
		sessions:    make(map[string]*Session),
	}
}

func (g *Governor) Open(userID int64) Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.pruneLocked(now)

	s := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		AttemptsLeft: g.maxAttempts,
		CreatedAt:    now,
		ExpiresAt:    now.Add(g.ttl),
	}
	g.sessions[s.ID] = s
	return *s
}

// Get returns a copy of the caller's live session.
func (g *Governor) Get(id string, userID int64) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.lookupLocked(id, userID)
	if err != nil {
		return Session{}, err
	}
	return *s, nil
}

// Fail burns one attempt and locks the session when none are left.
func (g *Governor) Fail(id string, userID int64) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.lookupLocked(id, userID)
	if err != nil {
		return Session{}, err
	}
	if s.AttemptsLeft > 0 {
		s.AttemptsLeft--
	}
	if s.AttemptsLeft == 0 {
		s.Locked = true
	}
	return *s, nil
}

// Close ends a session after a successful check-in.
func (g *Governor) Close(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, id)
}

func (g *Governor) lookupLocked(id string, userID int64) (*Session, error) {
	s, ok := g.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if !g.clock.Now().Before(s.ExpiresAt) {
		delete(g.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (g *Governor) pruneLocked(now time.Time) {
	for id, s := range g.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(g.sessions, id)
		}
	}
}
