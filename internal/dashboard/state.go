package dashboard

import (
	"sync"

	"debate-dashboard/internal/backend"
)

// viewState is the single owner of the "current debate" derivation. The
// version bumps whenever the current debate changes; async render passes
// capture it at dispatch time and drop their result when it has moved on.
type viewState struct {
	mu                  sync.Mutex
	debateID            int
	style               string
	votingOpen          bool
	assignmentsComplete bool
	version             uint64
}

type stateSnapshot struct {
	DebateID            int
	Style               string
	VotingOpen          bool
	AssignmentsComplete bool
	Version             uint64
}

func (v *viewState) snapshot() stateSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return stateSnapshot{
		DebateID:            v.debateID,
		Style:               v.style,
		VotingOpen:          v.votingOpen,
		AssignmentsComplete: v.assignmentsComplete,
		Version:             v.version,
	}
}

// setCurrent replaces the derived current debate atomically. It reports
// whether the debate identity changed, which obliges the caller to
// re-run the vote-box and room-diagram reconcilers.
func (v *viewState) setCurrent(debate backend.DebateSummary, present bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	newID := 0
	if present {
		newID = debate.ID
	}
	changed := newID != v.debateID
	v.debateID = newID
	v.style = debate.Style
	v.votingOpen = present && debate.VotingOpen
	v.assignmentsComplete = present && debate.AssignmentComplete
	if changed {
		v.version++
	}
	return changed
}

// setVotingOpen applies a debate_status push. Pushes for a debate other
// than the current one are ignored.
func (v *viewState) setVotingOpen(debateID int, open bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if debateID == 0 || debateID != v.debateID {
		return false
	}
	v.votingOpen = open
	return true
}

func (v *viewState) setAssignmentsComplete(debateID int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if debateID == 0 || debateID != v.debateID {
		return false
	}
	v.assignmentsComplete = true
	return true
}

// stillCurrent reports whether a render pass started at the given
// snapshot may still publish its result.
func (v *viewState) stillCurrent(snap stateSnapshot) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.debateID == snap.DebateID && v.version == snap.Version
}
