package dashboard

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"debate-dashboard/internal/web"

	"github.com/gorilla/websocket"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, signedIn := s.sessions.GetViewer(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = web.Dashboard(viewer, signedIn).Render(r.Context(), w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        int    `json:"user_id"`
		Name          string `json:"name"`
		PreferJudging bool   `json:"prefer_judging"`
		JudgeSkill    string `json:"judge_skill"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}
	s.sessions.SetViewer(w, r, web.Viewer{
		ID:            req.UserID,
		Name:          strings.TrimSpace(req.Name),
		PreferJudging: req.PreferJudging,
		JudgeSkill:    req.JudgeSkill,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": req.UserID,
		"name":    strings.TrimSpace(req.Name),
	})
}

// handleCastVote submits the vote and then rebuilds the voter's ballot
// and the shared progress bar from authoritative state. The vote box is
// re-rendered even when the write fails, so the browser always converges
// on what the backend accepted.
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.sessions.GetViewer(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	debateID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || debateID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid debate id")
		return
	}
	var req struct {
		TopicID int `json:"topic_id"`
	}
	if err := readJSON(r.Body, &req); err != nil || req.TopicID <= 0 {
		writeError(w, http.StatusBadRequest, "topic_id is required")
		return
	}

	castErr := s.backend.CastVote(r.Context(), debateID, viewer.ID, req.TopicID)
	if castErr != nil {
		log.Printf("cast vote failed debate_id=%d viewer_id=%d error=%v", debateID, viewer.ID, castErr)
	}

	ctx, cancel := s.fetchContext()
	defer cancel()
	snap := s.state.snapshot()
	if snap.DebateID == debateID && snap.VotingOpen {
		s.hub.ForEach(func(conn *websocket.Conn, connViewer web.Viewer) {
			if connViewer.ID == viewer.ID {
				s.sendVoteBox(ctx, conn, connViewer, snap)
			}
		})
	}
	s.reconcileProgress(ctx)

	if castErr != nil {
		writeError(w, http.StatusBadGateway, "vote was not accepted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
