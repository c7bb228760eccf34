package jobs

import (
	"log"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/storage"
)

// SessionJob runs the periodic session maintenance: hourly stats logging for
// operational visibility, and an optional reaper for sessions abandoned
// mid-application. Reaping is off unless SESSION_IDLE_TTL_HOURS is set; the
// reference behaviour is to keep sessions until cancel/restart.
type SessionJob struct {
	store     storage.Store
	isRunning atomic.Bool
}

// NewSessionJob creates a new session maintenance job
func NewSessionJob(store storage.Store) *SessionJob {
	return &SessionJob{store: store}
}

// Start begins the scheduled session jobs
func (j *SessionJob) Start() {
	if !j.isRunning.CompareAndSwap(false, true) {
		log.Println("Session jobs already running")
		return
	}
	log.Println("Starting session maintenance jobs...")

	go j.scheduleStatsLog()

	if ttl := idleTTL(); ttl > 0 {
		log.Printf("Idle session reaper enabled (TTL %v)", ttl)
		go j.scheduleIdleReaper(ttl)
	}
}

// Stop halts the scheduled jobs
func (j *SessionJob) Stop() {
	j.isRunning.Store(false)
	log.Println("Stopping session maintenance jobs...")
}

func idleTTL() time.Duration {
	raw := os.Getenv("SESSION_IDLE_TTL_HOURS")
	if raw == "" {
		return 0
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		log.Printf("⚠️  Invalid SESSION_IDLE_TTL_HOURS %q - reaper disabled", raw)
		return 0
	}
	return time.Duration(hours) * time.Hour
}

func (j *SessionJob) scheduleStatsLog() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if !j.isRunning.Load() {
			return
		}
		stats := j.store.GetStats()
		log.Printf("📊 Sessions: %d total, %d completed", stats.Total, stats.Completed)
	}
}

func (j *SessionJob) scheduleIdleReaper(ttl time.Duration) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if !j.isRunning.Load() {
			return
		}
		j.reapIdleSessions(ttl)
	}
}

// reapIdleSessions deletes sessions abandoned longer than the TTL. Completed
// applications are kept; their state lives in the backend anyway.
func (j *SessionJob) reapIdleSessions(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	for _, session := range j.store.GetAllSessions() {
		if session.State == models.StateCompleted {
			continue
		}
		if session.LastActivity.Before(cutoff) {
			if j.store.DeleteSession(session.Phone) {
				log.Printf("🧹 Reaped idle session for %s (state %s)", session.Phone, session.State)
			}
		}
	}
}
