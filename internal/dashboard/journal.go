package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"debate-dashboard/internal/db"

	"gorm.io/datatypes"
)

// RecordEvent journals one received push notification. Journaling is
// best-effort: without a database it is a no-op, and write failures never
// interrupt reconciliation.
func (s *Server) RecordEvent(eventType string, debateID *int, payload json.RawMessage) {
	if s.db == nil {
		return
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	record := db.Event{
		DebateID:  debateID,
		Type:      eventType,
		Payload:   datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("journal event failed type=%s error=%v", eventType, err)
	}
}
