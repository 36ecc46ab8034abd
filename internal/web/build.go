package web

import (
	"math"
	"strconv"
	"strings"

	"debate-dashboard/internal/backend"
)

// Percent returns the whole-number share of users who voted. A tally with
// no eligible users renders as 0, never as an error.
func Percent(voted, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(voted) / float64(total) * 100))
}

// VotesLeftLabel renders the remaining-votes counter, singular only for
// exactly one remaining vote.
func VotesLeftLabel(votesLeft int) string {
	if votesLeft == 1 {
		return "1 vote left"
	}
	return strconv.Itoa(votesLeft) + " votes left"
}

// IconForRole picks the badge icon for a seat.
func IconForRole(role string) string {
	switch {
	case strings.HasPrefix(role, "Judge"):
		return "bi-hammer"
	case strings.HasPrefix(role, "Free"):
		return "bi-star-fill"
	case role == "Gov" || role == "OG" || role == "CG":
		return "bi-megaphone-fill"
	default:
		return "bi-question-circle"
	}
}

// BuildVoteBox derives the ballot fragment. Each topic shows exactly one
// of: a voted marker, a vote button, or nothing.
func BuildVoteBox(debateID int, ballot backend.BallotContext, votingOpen bool) VoteBoxView {
	view := VoteBoxView{
		DebateID:       debateID,
		Visible:        votingOpen,
		VotesLeft:      ballot.Status.VotesLeft,
		VotesLeftLabel: VotesLeftLabel(ballot.Status.VotesLeft),
	}
	for _, topic := range ballot.Topics {
		row := TopicRow{ID: topic.ID, Text: topic.Text}
		if ballot.Status.Voted(topic.ID) {
			row.Voted = true
		} else if ballot.Status.VotesLeft > 0 {
			row.CanVote = true
		}
		view.Topics = append(view.Topics, row)
	}
	return view
}

// BuildProgress derives the vote-progress fragment from a tally. The bar
// is only shown while voting is open.
func BuildProgress(tally backend.VoteTally, votingOpen bool) ProgressView {
	percent := Percent(tally.VotedUsers, tally.TotalUsers)
	return ProgressView{
		Visible:    votingOpen,
		Percent:    percent,
		VotedUsers: tally.VotedUsers,
		TotalUsers: tally.TotalUsers,
		Label:      strconv.Itoa(tally.VotedUsers) + "/" + strconv.Itoa(tally.TotalUsers) + " have voted",
	}
}

// ViewerSeat scans the assignment list for the viewer's own slot. The
// assignment list is the single source of truth for "has a seat"; role
// flags on the debate summary are display data only.
func ViewerSeat(assignments []backend.Assignment, viewerID int) (backend.Assignment, bool) {
	for _, assignment := range assignments {
		if assignment.UserID == viewerID {
			return assignment, true
		}
	}
	return backend.Assignment{}, false
}

// BuildRoomDiagram derives the seating diagram for the viewer's own room.
// The fragment stays hidden unless assignments are complete and the viewer
// holds a seat.
func BuildRoomDiagram(style string, assignments []backend.Assignment, viewer Viewer, assignmentsComplete bool) RoomDiagramView {
	seat, hasSeat := ViewerSeat(assignments, viewer.ID)
	if !assignmentsComplete || !hasSeat {
		return RoomDiagramView{}
	}
	var room []backend.Assignment
	for _, assignment := range assignments {
		if assignment.Room == seat.Room {
			room = append(room, assignment)
		}
	}
	view := RoomDiagramView{
		Visible: true,
		Room:    seat.Room,
		Style:   style,
		Judges: Bench{
			Title:       "Judges",
			Seats:       benchSeats(room, "Judge", viewer.ID),
			Placeholder: "No Judges Assigned",
		},
	}
	if style == backend.StyleOPD {
		view.Benches = []Bench{
			{Title: "Government", Seats: benchSeats(room, "Gov", viewer.ID), Placeholder: "Empty"},
			{Title: "Free Speakers", Seats: benchSeats(room, "Free", viewer.ID), Placeholder: "No Free Speaker"},
			{Title: "Opposition", Seats: benchSeats(room, "Opp", viewer.ID), Placeholder: "Empty"},
		}
		return view
	}
	view.Benches = []Bench{
		{Title: "Opening Government", Seats: benchSeats(room, "OG", viewer.ID), Placeholder: "Empty"},
		{Title: "Opening Opposition", Seats: benchSeats(room, "OO", viewer.ID), Placeholder: "Empty"},
		{Title: "Closing Government", Seats: benchSeats(room, "CG", viewer.ID), Placeholder: "Empty"},
		{Title: "Closing Opposition", Seats: benchSeats(room, "CO", viewer.ID), Placeholder: "Empty"},
	}
	return view
}

func benchSeats(room []backend.Assignment, rolePrefix string, viewerID int) []SeatBadge {
	var seats []SeatBadge
	for _, assignment := range room {
		if !strings.HasPrefix(assignment.Role, rolePrefix) {
			continue
		}
		// Unfilled slots fall back to the zone placeholder.
		if assignment.UserID == 0 {
			continue
		}
		seats = append(seats, SeatBadge{
			Role:     assignment.Role,
			Name:     assignment.Username,
			Icon:     IconForRole(assignment.Role),
			IsViewer: assignment.UserID == viewerID,
		})
	}
	return seats
}

// PartitionDebates splits the flat debate list into the three dashboard
// panels. The partitions are mutually exclusive and cover every debate.
func PartitionDebates(debates []backend.DebateSummary) DebateListView {
	var view DebateListView
	for _, debate := range debates {
		card := DebateCard{
			ID:                 debate.ID,
			Title:              debate.Title,
			Style:              debate.Style,
			Active:             debate.Active,
			VotingOpen:         debate.VotingOpen,
			AssignmentComplete: debate.AssignmentComplete,
		}
		switch {
		case debate.Active:
			view.Active = append(view.Active, card)
		case debate.AssignmentComplete:
			view.Past = append(view.Past, card)
		default:
			view.Upcoming = append(view.Upcoming, card)
		}
	}
	return view
}

// CurrentDebate auto-selects a debate only when exactly one is active.
func CurrentDebate(debates []backend.DebateSummary) (backend.DebateSummary, bool) {
	var current backend.DebateSummary
	count := 0
	for _, debate := range debates {
		if debate.Active {
			current = debate
			count++
		}
	}
	if count != 1 {
		return backend.DebateSummary{}, false
	}
	return current, true
}

// JudgeSeatOpen reports whether any judge slot is still unfilled.
func JudgeSeatOpen(assignments []backend.Assignment) bool {
	for _, assignment := range assignments {
		if strings.HasPrefix(assignment.Role, "Judge") && assignment.UserID == 0 {
			return true
		}
	}
	return false
}

// JoinLabel picks the join-button caption for a viewer without a seat.
// "Join as Judge" needs a judging preference and an open judge slot.
func JoinLabel(hasSeat, preferJudging, judgeSeatOpen bool) string {
	if !hasSeat && preferJudging && judgeSeatOpen {
		return "Join as Judge"
	}
	return "Join Debate"
}

// BuildCurrentDebate derives the summary card for the auto-selected debate.
func BuildCurrentDebate(debate backend.DebateSummary, viewer Viewer, hasSeat, judgeSeatOpen bool) CurrentDebateView {
	view := CurrentDebateView{
		Present:   true,
		ID:        debate.ID,
		Title:     debate.Title,
		Style:     debate.Style,
		JoinLabel: JoinLabel(hasSeat, viewer.PreferJudging, judgeSeatOpen),
	}
	if debate.UserRole != "" {
		view.RoleBanner = "You are " + debate.UserRole
	}
	if debate.Active && debate.IsJudgeChair {
		view.JudgingEnabled = true
		view.JudgingURL = "/debate/" + strconv.Itoa(debate.ID) + "/judging"
	}
	return view
}
