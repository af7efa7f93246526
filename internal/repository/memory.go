package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory with the same
// expiry rules as the redis repository. Sessions are lost on restart.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return newMemorySessionRepository(ttl, time.Now)
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *memorySession {
	return &memorySession{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      now,
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	entry := memoryEntry{session: copySession(session)}
	if that.ttl > 0 {
		entry.expiresAt = that.now().Add(that.ttl)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = entry

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	entry, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok || that.isExpired(entry) {
		return nil, ErrSessionNotFound
	}

	session := copySession(&entry.session)

	return &session, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	delete(that.sessions, id)

	if that.isExpired(entry) {
		return ErrSessionNotFound
	}

	return nil
}

// UpdateByID holds the write lock from the read to the save.
func (that *memorySession) UpdateByID(_ context.Context, id string, update UpdateFunc) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.sessions[id]
	if !ok || that.isExpired(entry) {
		return nil, ErrSessionNotFound
	}

	session := copySession(&entry.session)

	changed, err := update(&session)
	if err != nil {
		return nil, err
	}

	if changed {
		entry.session = copySession(&session)
		if that.ttl > 0 {
			entry.expiresAt = that.now().Add(that.ttl)
		}

		that.sessions[id] = entry
	}

	return &session, nil
}

func (that *memorySession) isExpired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !that.now().Before(entry.expiresAt)
}

// copySession detaches the stored value from the caller's pointers.
func copySession(session *entity.Session) entity.Session {
	clone := *session
	if session.State.WinLine != nil {
		line := *session.State.WinLine
		clone.State.WinLine = &line
	}

	return clone
}
