package dashboard

import (
	"context"
	"log"

	"debate-dashboard/internal/backend"
	"debate-dashboard/internal/web"

	"github.com/gorilla/websocket"
)

// Refresh rebuilds every fragment from fresh backend state. Used for the
// initial render pass and as the poll fallback; failures leave the last
// published fragments in place.
func (s *Server) Refresh() {
	ctx, cancel := s.fetchContext()
	defer cancel()
	s.reconcileDebates(ctx)
	s.reconcileProgress(ctx)
	s.reconcileVoteBox(ctx)
	s.reconcileAssignments(ctx)
}

// reconcileDebates re-derives the current debate and the three list
// panels. A change of the current debate identity re-runs the dependent
// reconcilers.
func (s *Server) reconcileDebates(ctx context.Context) {
	debates, err := s.backend.Debates(ctx, 0)
	if err != nil {
		log.Printf("reconcile debates failed error=%v", err)
		return
	}
	current, present := web.CurrentDebate(debates)
	changed := s.state.setCurrent(current, present)

	listsHTML := renderHTML(web.DebateLists(web.PartitionDebates(debates)))
	s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
		s.hub.Send(conn, web.FragmentDebateLists, listsHTML)
	})
	s.reconcileCurrentDebate(ctx)
	if changed {
		s.reconcileProgress(ctx)
		s.reconcileVoteBox(ctx)
		s.reconcileAssignments(ctx)
	}
}

// reconcileCurrentDebate renders the summary card per viewer; role flags
// on the card are personal, so each viewer gets its own backend read.
func (s *Server) reconcileCurrentDebate(ctx context.Context) {
	snap := s.state.snapshot()
	if snap.DebateID == 0 {
		emptyHTML := renderHTML(web.CurrentDebateCard(web.CurrentDebateView{}))
		s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
			s.hub.Send(conn, web.FragmentCurrentDebate, emptyHTML)
		})
		return
	}
	assignments := s.currentAssignments(ctx, snap)
	s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
		s.sendCurrentDebate(ctx, conn, viewer, snap, assignments)
	})
}

func (s *Server) sendCurrentDebate(ctx context.Context, conn *websocket.Conn, viewer web.Viewer, snap stateSnapshot, assignments []backend.Assignment) {
	debates, err := s.backend.Debates(ctx, viewer.ID)
	if err != nil {
		log.Printf("reconcile current debate failed viewer_id=%d error=%v", viewer.ID, err)
		return
	}
	var current backend.DebateSummary
	found := false
	for _, debate := range debates {
		if debate.ID == snap.DebateID {
			current = debate
			found = true
			break
		}
	}
	if !found || !s.state.stillCurrent(snap) {
		return
	}
	_, hasSeat := web.ViewerSeat(assignments, viewer.ID)
	// Before assignments land every judge seat counts as open; joining
	// happens ahead of the draw.
	judgeSeatOpen := !snap.AssignmentsComplete || web.JudgeSeatOpen(assignments)
	view := web.BuildCurrentDebate(current, viewer, hasSeat, judgeSeatOpen)
	s.hub.Send(conn, web.FragmentCurrentDebate, renderHTML(web.CurrentDebateCard(view)))
}

// reconcileProgress refetches the tally and republishes the progress bar.
// With voting closed the bar is hidden without any backend read.
func (s *Server) reconcileProgress(ctx context.Context) {
	snap := s.state.snapshot()
	if snap.DebateID == 0 || !snap.VotingOpen {
		s.publishProgress(backend.VoteTally{}, false)
		return
	}
	tally, err := s.backend.VoteStats(ctx, snap.DebateID)
	if err != nil {
		log.Printf("reconcile progress failed debate_id=%d error=%v", snap.DebateID, err)
		return
	}
	if !s.state.stillCurrent(snap) {
		return
	}
	s.publishProgress(tally, true)
}

// publishProgress renders the tally directly; vote_update pushes carry
// the tally in their payload, so no fetch is needed on that path.
func (s *Server) publishProgress(tally backend.VoteTally, visible bool) {
	html := renderHTML(web.VoteProgress(web.BuildProgress(tally, visible)))
	s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
		s.hub.Send(conn, web.FragmentVoteProgress, html)
	})
}

// reconcileVoteBox rebuilds the ballot per viewer. With voting closed the
// box is hidden without any backend read.
func (s *Server) reconcileVoteBox(ctx context.Context) {
	snap := s.state.snapshot()
	if snap.DebateID == 0 || !snap.VotingOpen {
		hiddenHTML := renderHTML(web.VoteBox(web.VoteBoxView{}))
		s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
			s.hub.Send(conn, web.FragmentVoteBox, hiddenHTML)
		})
		return
	}
	s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
		s.sendVoteBox(ctx, conn, viewer, snap)
	})
}

func (s *Server) sendVoteBox(ctx context.Context, conn *websocket.Conn, viewer web.Viewer, snap stateSnapshot) {
	ballot, err := s.backend.Ballot(ctx, snap.DebateID, viewer.ID)
	if err != nil {
		log.Printf("reconcile vote box failed debate_id=%d viewer_id=%d error=%v", snap.DebateID, viewer.ID, err)
		return
	}
	if !s.state.stillCurrent(snap) {
		return
	}
	// The backend owns the vote budget; the knob caps runaway values.
	if ballot.Status.VotesLeft > s.cfg.VotesPerDebate {
		ballot.Status.VotesLeft = s.cfg.VotesPerDebate
	}
	view := web.BuildVoteBox(snap.DebateID, ballot, true)
	s.hub.Send(conn, web.FragmentVoteBox, renderHTML(web.VoteBox(view)))
}

// reconcileAssignments rebuilds the room diagram per viewer. The diagram
// only renders for seated viewers once assignments are complete.
func (s *Server) reconcileAssignments(ctx context.Context) {
	snap := s.state.snapshot()
	if snap.DebateID == 0 || !snap.AssignmentsComplete {
		hiddenHTML := renderHTML(web.RoomDiagram(web.RoomDiagramView{}))
		s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
			s.hub.Send(conn, web.FragmentRoomDiagram, hiddenHTML)
		})
		return
	}
	assignments, err := s.backend.Assignments(ctx, snap.DebateID)
	if err != nil {
		log.Printf("reconcile assignments failed debate_id=%d error=%v", snap.DebateID, err)
		return
	}
	if !s.state.stillCurrent(snap) {
		return
	}
	s.hub.ForEach(func(conn *websocket.Conn, viewer web.Viewer) {
		view := web.BuildRoomDiagram(snap.Style, assignments, viewer, true)
		s.hub.Send(conn, web.FragmentRoomDiagram, renderHTML(web.RoomDiagram(view)))
	})
}

func (s *Server) currentAssignments(ctx context.Context, snap stateSnapshot) []backend.Assignment {
	if !snap.AssignmentsComplete {
		return nil
	}
	assignments, err := s.backend.Assignments(ctx, snap.DebateID)
	if err != nil {
		log.Printf("fetch assignments failed debate_id=%d error=%v", snap.DebateID, err)
		return nil
	}
	return assignments
}

// sendSnapshot gives a newly connected browser the full fragment set.
func (s *Server) sendSnapshot(conn *websocket.Conn, viewer web.Viewer) {
	ctx, cancel := s.fetchContext()
	defer cancel()

	debates, err := s.backend.Debates(ctx, 0)
	if err != nil {
		log.Printf("snapshot failed viewer_id=%d error=%v", viewer.ID, err)
		return
	}
	current, present := web.CurrentDebate(debates)
	changed := s.state.setCurrent(current, present)
	snap := s.state.snapshot()

	listsHTML := renderHTML(web.DebateLists(web.PartitionDebates(debates)))
	s.hub.Send(conn, web.FragmentDebateLists, listsHTML)

	if snap.DebateID == 0 {
		s.hub.Send(conn, web.FragmentCurrentDebate, renderHTML(web.CurrentDebateCard(web.CurrentDebateView{})))
		s.hub.Send(conn, web.FragmentVoteProgress, renderHTML(web.VoteProgress(web.ProgressView{})))
		s.hub.Send(conn, web.FragmentVoteBox, renderHTML(web.VoteBox(web.VoteBoxView{})))
		s.hub.Send(conn, web.FragmentRoomDiagram, renderHTML(web.RoomDiagram(web.RoomDiagramView{})))
	} else {
		assignments := s.currentAssignments(ctx, snap)
		s.sendCurrentDebate(ctx, conn, viewer, snap, assignments)

		if snap.VotingOpen {
			if tally, err := s.backend.VoteStats(ctx, snap.DebateID); err == nil {
				s.hub.Send(conn, web.FragmentVoteProgress, renderHTML(web.VoteProgress(web.BuildProgress(tally, true))))
			} else {
				log.Printf("snapshot vote stats failed debate_id=%d error=%v", snap.DebateID, err)
			}
			s.sendVoteBox(ctx, conn, viewer, snap)
		} else {
			s.hub.Send(conn, web.FragmentVoteProgress, renderHTML(web.VoteProgress(web.ProgressView{})))
			s.hub.Send(conn, web.FragmentVoteBox, renderHTML(web.VoteBox(web.VoteBoxView{})))
		}

		view := web.BuildRoomDiagram(snap.Style, assignments, viewer, snap.AssignmentsComplete)
		s.hub.Send(conn, web.FragmentRoomDiagram, renderHTML(web.RoomDiagram(view)))
	}

	// A fresh connection can observe a debate switch before any push or
	// poll tick does; everyone already connected must follow.
	if changed && s.hub.Count() > 1 {
		s.hub.ForEach(func(other *websocket.Conn, otherViewer web.Viewer) {
			if other != conn {
				s.hub.Send(other, web.FragmentDebateLists, listsHTML)
			}
		})
		s.reconcileCurrentDebate(ctx)
		s.reconcileProgress(ctx)
		s.reconcileVoteBox(ctx)
		s.reconcileAssignments(ctx)
	}
}
