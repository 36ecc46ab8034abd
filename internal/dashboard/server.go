package dashboard

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"debate-dashboard/internal/backend"
	"debate-dashboard/internal/config"

	"github.com/a-h/templ"
	"gorm.io/gorm"
)

// Server owns the dashboard's view state and pushes re-rendered fragments
// to connected browsers. The tournament backend remains the source of
// truth; nothing here survives beyond the last-rendered snapshot and the
// event journal.
type Server struct {
	backend  *backend.Client
	db       *gorm.DB
	cfg      config.Config
	sessions *sessionStore
	hub      *viewerHub
	state    *viewState
}

func New(client *backend.Client, conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		backend:  client,
		db:       conn,
		cfg:      cfg,
		sessions: newSessionStore(conn),
		hub:      newViewerHub(),
		state:    &viewState{},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("POST /api/session", s.handleSession)
	mux.HandleFunc("POST /api/debate/{id}/vote", s.handleCastVote)
	mux.HandleFunc("GET /ws/dashboard", s.handleWebsocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}

func (s *Server) fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

func renderHTML(component templ.Component) string {
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		return ""
	}
	return buf.String()
}
