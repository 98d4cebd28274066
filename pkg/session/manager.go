// Package session owns per-conversation state. Operations on the same
// session id are serialized through a keyed lock; distinct sessions proceed
// fully in parallel.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"hr-assistant-be/internal/repository/memory"
	"hr-assistant-be/pkg/leave"
	"hr-assistant-be/pkg/store"
)

// ErrSessionNotFound is returned when a turn targets a swept session. The
// caller should start a new session, not treat this as fatal.
var ErrSessionNotFound = errors.New("session not found or expired")

type Manager struct {
	repo *memory.SessionRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(repo *memory.SessionRepository) *Manager {
	return &Manager{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

// WithLock runs fn inside the session's critical section. All turn
// processing for one session goes through here so interleaved turns cannot
// corrupt the slot-filling state.
func (m *Manager) WithLock(sessionID string, fn func() error) error {
	lock := m.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// GetOrCreate returns the live session, creating a fresh one if the id is
// unknown or was swept.
func (m *Manager) GetOrCreate(sessionID string) *store.Session {
	if sess, found := m.repo.Get(sessionID); found {
		return sess
	}
	now := time.Now()
	sess := &store.Session{
		ID:           sessionID,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	m.repo.Save(sess)
	return sess
}

// AppendTurn records the full (query, result) pair and refreshes the
// session TTL. Nothing is written when ctx is already cancelled, so a
// cancelled turn leaves the history untouched.
func (m *Manager) AppendTurn(ctx context.Context, sessionID string, query store.Query, result store.TurnResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, found := m.repo.Get(sessionID)
	if !found {
		return ErrSessionNotFound
	}
	sess.Turns = append(sess.Turns, store.Turn{Query: query, Result: result})
	sess.LastActiveAt = time.Now()
	m.repo.Save(sess)
	return nil
}

// SetPending stores (or clears, with empty flow) the slot-filling state.
func (m *Manager) SetPending(sessionID string, flow string, partial *leave.PartialRequest) error {
	sess, found := m.repo.Get(sessionID)
	if !found {
		return ErrSessionNotFound
	}
	sess.PendingFlow = flow
	sess.PendingLeave = partial
	if flow == "" {
		sess.PendingLeave = nil
	}
	sess.LastActiveAt = time.Now()
	m.repo.Save(sess)
	return nil
}

// Get returns the session without creating one.
func (m *Manager) Get(sessionID string) (*store.Session, bool) {
	return m.repo.Get(sessionID)
}

// Delete drops a session immediately.
func (m *Manager) Delete(sessionID string) {
	m.repo.Delete(sessionID)
}

// SweepExpired removes sessions idle past their TTL. This is the only
// deletion path besides an explicit Delete.
func (m *Manager) SweepExpired() {
	m.repo.DeleteExpired()
}

func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}
