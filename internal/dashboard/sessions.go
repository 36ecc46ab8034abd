package dashboard

import (
	"net/http"
	"strings"
	"sync"

	"debate-dashboard/internal/db"
	"debate-dashboard/internal/web"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sessionCookie = "dd_session"

// sessionStore maps browser sessions to viewer identities. Sessions are
// persisted when a database is configured and kept in memory otherwise.
type sessionStore struct {
	db      *gorm.DB
	mu      sync.Mutex
	viewers map[string]web.Viewer
}

func newSessionStore(conn *gorm.DB) *sessionStore {
	return &sessionStore{
		db:      conn,
		viewers: make(map[string]web.Viewer),
	}
}

func (s *sessionStore) SetViewer(w http.ResponseWriter, r *http.Request, viewer web.Viewer) {
	if viewer.ID == 0 || strings.TrimSpace(viewer.Name) == "" {
		return
	}
	id := s.ensureSessionID(w, r)
	if s.db == nil {
		s.mu.Lock()
		s.viewers[id] = viewer
		s.mu.Unlock()
		return
	}
	record := db.Session{
		ID:            id,
		ViewerID:      viewer.ID,
		ViewerName:    viewer.Name,
		PreferJudging: viewer.PreferJudging,
		JudgeSkill:    viewer.JudgeSkill,
	}
	_ = s.db.Save(&record).Error
}

func (s *sessionStore) GetViewer(w http.ResponseWriter, r *http.Request) (web.Viewer, bool) {
	id := s.ensureSessionID(w, r)
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		viewer, ok := s.viewers[id]
		return viewer, ok && viewer.ID != 0
	}
	var record db.Session
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		return web.Viewer{}, false
	}
	if record.ViewerID == 0 {
		return web.Viewer{}, false
	}
	return web.Viewer{
		ID:            record.ViewerID,
		Name:          record.ViewerName,
		PreferJudging: record.PreferJudging,
		JudgeSkill:    record.JudgeSkill,
	}, true
}

func (s *sessionStore) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
