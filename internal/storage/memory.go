package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiakia/loanbot-backend/internal/models"
)

// MemoryStore keeps all sessions in process memory. Good enough for tests
// and small deployments; production uses the database store behind the same
// interface.
type MemoryStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

func newSession(phone, whatsappNumber string) *models.Session {
	now := time.Now()
	return &models.Session{
		SessionID: uuid.NewString(),
		Phone:     phone,
		State:     models.StateInitial,
		Data: models.ApplicationData{
			WhatsAppNumber: whatsappNumber,
		},
		Step:         0,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (m *MemoryStore) GetSession(phone string) (*models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[phone]
	if !exists {
		return nil, false
	}
	return session.Clone(), true
}

func (m *MemoryStore) CreateSession(phone, whatsappNumber string) *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := newSession(phone, whatsappNumber)
	m.sessions[phone] = session
	return session.Clone()
}

func (m *MemoryStore) GetOrCreateSession(phone, whatsappNumber string) *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, exists := m.sessions[phone]; exists {
		// Backfill a missing WhatsApp number without resetting anything else.
		if whatsappNumber != "" && session.Data.WhatsAppNumber == "" {
			session.Data.WhatsAppNumber = whatsappNumber
		}
		return session.Clone()
	}

	session := newSession(phone, whatsappNumber)
	m.sessions[phone] = session
	return session.Clone()
}

func (m *MemoryStore) UpdateSession(phone string, session *models.Session) (*models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[phone]; !exists {
		return nil, false
	}

	updated := session.Clone()
	updated.Phone = phone
	updated.LastActivity = time.Now()
	m.sessions[phone] = updated
	return updated.Clone(), true
}

func (m *MemoryStore) DeleteSession(phone string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[phone]; !exists {
		return false
	}
	delete(m.sessions, phone)
	return true
}

func (m *MemoryStore) GetAllSessions() []*models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session.Clone())
	}
	return sessions
}

func (m *MemoryStore) GetStats() *models.SessionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.SessionStats{
		Total:   len(m.sessions),
		ByState: make(map[string]int),
	}

	for _, session := range m.sessions {
		stats.ByState[string(session.State)]++
		if session.State == models.StateCompleted {
			stats.Completed++
		}
	}
	return stats
}

func (m *MemoryStore) ClearAllSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*models.Session)
}
