package dashboard

import (
	"debate-dashboard/internal/backend"
	"debate-dashboard/internal/web"

	"github.com/gorilla/websocket"
)

// Push handlers, invoked by the notification listener. Each one is
// idempotent and tolerates stale or out-of-order events: pushes for a
// debate other than the current one are dropped, and every render that
// does fetch rebuilds its fragment from a fresh, self-consistent read.

// HandleVoteUpdate applies a vote_update push. The tally travels in the
// payload, so the progress bar updates without a backend read.
func (s *Server) HandleVoteUpdate(debateID int, tally backend.VoteTally) {
	snap := s.state.snapshot()
	if debateID == 0 || debateID != snap.DebateID {
		return
	}
	s.publishProgress(tally, snap.VotingOpen)
}

// HandleDebateStatus applies a debate_status push. Closing the vote hides
// the ballot and the progress bar without a fetch; opening it triggers a
// fetch-and-render of both.
func (s *Server) HandleDebateStatus(debateID int, votingOpen bool) {
	if !s.state.setVotingOpen(debateID, votingOpen) {
		return
	}
	if !votingOpen {
		hiddenBox := renderHTML(web.VoteBox(web.VoteBoxView{}))
		hiddenProgress := renderHTML(web.VoteProgress(web.ProgressView{}))
		s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
			s.hub.Send(conn, web.FragmentVoteBox, hiddenBox)
			s.hub.Send(conn, web.FragmentVoteProgress, hiddenProgress)
		})
		return
	}
	ctx, cancel := s.fetchContext()
	defer cancel()
	s.reconcileVoteBox(ctx)
	s.reconcileProgress(ctx)
}

// HandleAssignmentsReady applies an assignments_ready push.
func (s *Server) HandleAssignmentsReady(debateID int) {
	if !s.state.setAssignmentsComplete(debateID) {
		return
	}
	ctx, cancel := s.fetchContext()
	defer cancel()
	s.reconcileAssignments(ctx)
	s.reconcileCurrentDebate(ctx)
}

// HandleDebateListUpdate applies a debate_list_update push; the event
// carries no payload and always forces a full list refetch.
func (s *Server) HandleDebateListUpdate() {
	ctx, cancel := s.fetchContext()
	defer cancel()
	s.reconcileDebates(ctx)
}
