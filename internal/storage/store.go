package storage

import (
	"sync"

	"github.com/kiakia/loanbot-backend/internal/models"
)

var (
	storeInstance Store
	storeMu       sync.RWMutex
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return storeInstance
}

// Store owns every conversation session. Absence is always signalled through
// return values, never through errors, and implementations must be safe for
// concurrent use by multiple in-flight event handlers.
type Store interface {
	// GetSession returns a copy of the session for the phone, if any.
	GetSession(phone string) (*models.Session, bool)

	// CreateSession replaces any existing session for the phone with a fresh
	// one in the initial state and returns it.
	CreateSession(phone, whatsappNumber string) *models.Session

	// GetOrCreateSession returns the existing session verbatim, backfilling a
	// missing WhatsApp number without touching any other field, or creates a
	// new one.
	GetOrCreateSession(phone, whatsappNumber string) *models.Session

	// UpdateSession writes the provided session back if one is stored for the
	// phone. The false return means the session vanished and the caller's
	// update is lost; callers must not assume success.
	UpdateSession(phone string, session *models.Session) (*models.Session, bool)

	// DeleteSession removes the session and reports whether one existed.
	DeleteSession(phone string) bool

	// GetAllSessions returns a snapshot of every live session. Order carries
	// no meaning.
	GetAllSessions() []*models.Session

	// GetStats aggregates session counts for operational visibility.
	GetStats() *models.SessionStats

	// ClearAllSessions wipes everything. Destructive; callers gate access.
	ClearAllSessions()
}
