package storage

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiakia/loanbot-backend/internal/models"
)

// DatabaseStore persists sessions in PostgreSQL via GORM. Same semantics as
// the memory store; concurrency safety comes from the database itself.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed session store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func recordFromSession(session *models.Session) (*models.SessionRecord, error) {
	data, err := json.Marshal(session.Data)
	if err != nil {
		return nil, err
	}
	return &models.SessionRecord{
		SessionID:    session.SessionID,
		Phone:        session.Phone,
		State:        string(session.State),
		Data:         string(data),
		Step:         session.Step,
		LastActivity: session.LastActivity,
	}, nil
}

func sessionFromRecord(record *models.SessionRecord) *models.Session {
	session := &models.Session{
		SessionID:    record.SessionID,
		Phone:        record.Phone,
		State:        models.UserState(record.State),
		Step:         record.Step,
		CreatedAt:    record.CreatedAt,
		LastActivity: record.LastActivity,
	}
	if err := json.Unmarshal([]byte(record.Data), &session.Data); err != nil {
		log.Printf("⚠️  Corrupt session data for %s: %v", record.Phone, err)
	}
	return session
}

func (d *DatabaseStore) GetSession(phone string) (*models.Session, bool) {
	var record models.SessionRecord
	err := d.db.Where("phone = ?", phone).First(&record).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("❌ Failed to load session for %s: %v", phone, err)
		}
		return nil, false
	}
	return sessionFromRecord(&record), true
}

func (d *DatabaseStore) CreateSession(phone, whatsappNumber string) *models.Session {
	now := time.Now()
	session := &models.Session{
		SessionID: uuid.NewString(),
		Phone:     phone,
		State:     models.StateInitial,
		Data: models.ApplicationData{
			WhatsAppNumber: whatsappNumber,
		},
		CreatedAt:    now,
		LastActivity: now,
	}

	record, err := recordFromSession(session)
	if err != nil {
		log.Printf("❌ Failed to serialize session for %s: %v", phone, err)
		return session
	}

	// Always overwrite: a create resets any previous application.
	d.db.Where("phone = ?", phone).Delete(&models.SessionRecord{})
	if err := d.db.Create(record).Error; err != nil {
		log.Printf("❌ Failed to persist session for %s: %v", phone, err)
	}
	return session
}

func (d *DatabaseStore) GetOrCreateSession(phone, whatsappNumber string) *models.Session {
	if session, ok := d.GetSession(phone); ok {
		if whatsappNumber != "" && session.Data.WhatsAppNumber == "" {
			session.Data.WhatsAppNumber = whatsappNumber
			if updated, ok := d.UpdateSession(phone, session); ok {
				return updated
			}
		}
		return session
	}
	return d.CreateSession(phone, whatsappNumber)
}

func (d *DatabaseStore) UpdateSession(phone string, session *models.Session) (*models.Session, bool) {
	var record models.SessionRecord
	if err := d.db.Where("phone = ?", phone).First(&record).Error; err != nil {
		return nil, false
	}

	data, err := json.Marshal(session.Data)
	if err != nil {
		log.Printf("❌ Failed to serialize session for %s: %v", phone, err)
		return nil, false
	}

	record.SessionID = session.SessionID
	record.State = string(session.State)
	record.Data = string(data)
	record.Step = session.Step
	record.LastActivity = time.Now()

	if err := d.db.Save(&record).Error; err != nil {
		log.Printf("❌ Failed to update session for %s: %v", phone, err)
		return nil, false
	}
	return sessionFromRecord(&record), true
}

func (d *DatabaseStore) DeleteSession(phone string) bool {
	result := d.db.Where("phone = ?", phone).Delete(&models.SessionRecord{})
	if result.Error != nil {
		log.Printf("❌ Failed to delete session for %s: %v", phone, result.Error)
		return false
	}
	return result.RowsAffected > 0
}

func (d *DatabaseStore) GetAllSessions() []*models.Session {
	var records []models.SessionRecord
	if err := d.db.Find(&records).Error; err != nil {
		log.Printf("❌ Failed to list sessions: %v", err)
		return nil
	}

	sessions := make([]*models.Session, 0, len(records))
	for i := range records {
		sessions = append(sessions, sessionFromRecord(&records[i]))
	}
	return sessions
}

func (d *DatabaseStore) GetStats() *models.SessionStats {
	stats := &models.SessionStats{ByState: make(map[string]int)}
	for _, session := range d.GetAllSessions() {
		stats.Total++
		stats.ByState[string(session.State)]++
		if session.State == models.StateCompleted {
			stats.Completed++
		}
	}
	return stats
}

func (d *DatabaseStore) ClearAllSessions() {
	if err := d.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SessionRecord{}).Error; err != nil {
		log.Printf("❌ Failed to clear sessions: %v", err)
	}
}
