package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Fragment ids shared with the page bootstrap script; browsers swap
// innerHTML of the element carrying the matching id.
const (
	FragmentVoteBox       = "voteBox"
	FragmentVoteProgress  = "voteProgress"
	FragmentRoomDiagram   = "roomDiagram"
	FragmentCurrentDebate = "currentDebate"
	FragmentDebateLists   = "debateLists"
)

func component(render func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		render(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// VoteBox renders the topic ballot. Every topic row carries exactly one
// of a voted marker, a vote button, or nothing.
func VoteBox(view VoteBoxView) templ.Component {
	return component(func(b *strings.Builder) {
		if !view.Visible {
			b.WriteString(`<div class="vote-box" data-role="vote-box" hidden></div>`)
			return
		}
		b.WriteString(`<div class="vote-box" data-role="vote-box">`)
		b.WriteString(`<span class="badge text-bg-secondary" data-role="votes-left">`)
		b.WriteString(esc(view.VotesLeftLabel))
		b.WriteString(`</span><ul class="list-group vote-topics">`)
		for _, topic := range view.Topics {
			b.WriteString(`<li class="list-group-item d-flex justify-content-between" data-topic-id="`)
			b.WriteString(itoa(topic.ID))
			b.WriteString(`"><span>`)
			b.WriteString(esc(topic.Text))
			b.WriteString(`</span>`)
			if topic.Voted {
				b.WriteString(`<span class="badge text-bg-success" data-role="voted-marker">Voted</span>`)
			} else if topic.CanVote {
				b.WriteString(`<button class="btn btn-sm btn-primary vote-btn" data-role="vote-button" data-debate-id="`)
				b.WriteString(itoa(view.DebateID))
				b.WriteString(`" data-topic-id="`)
				b.WriteString(itoa(topic.ID))
				b.WriteString(`">Vote</button>`)
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul></div>`)
	})
}

// VoteProgress renders the tally bar, hidden while voting is closed.
// Elements carry stable data-role attributes so updates never rely on
// matching rendered text.
func VoteProgress(view ProgressView) templ.Component {
	return component(func(b *strings.Builder) {
		if !view.Visible {
			b.WriteString(`<div class="vote-progress" data-role="vote-progress" hidden></div>`)
			return
		}
		b.WriteString(`<div class="vote-progress" data-role="vote-progress">`)
		b.WriteString(`<div class="progress"><div class="progress-bar" role="progressbar" aria-valuenow="`)
		b.WriteString(itoa(view.Percent))
		b.WriteString(`" aria-valuemin="0" aria-valuemax="100" style="width: `)
		b.WriteString(itoa(view.Percent))
		b.WriteString(`%">`)
		b.WriteString(itoa(view.VotedUsers))
		b.WriteString(`/`)
		b.WriteString(itoa(view.TotalUsers))
		b.WriteString(`</div></div>`)
		b.WriteString(`<small class="text-muted" data-role="voted-label">`)
		b.WriteString(esc(view.Label))
		b.WriteString(`</small> <small class="text-muted" data-role="percent-label">`)
		b.WriteString(itoa(view.Percent))
		b.WriteString(`%</small></div>`)
	})
}

func writeSeat(b *strings.Builder, seat SeatBadge) {
	b.WriteString(`<span class="badge seat-badge`)
	if seat.IsViewer {
		b.WriteString(` seat-you`)
	}
	b.WriteString(`"><i class="bi `)
	b.WriteString(esc(seat.Icon))
	b.WriteString(`"></i> `)
	b.WriteString(esc(seat.Role))
	b.WriteString(` &middot; `)
	b.WriteString(esc(seat.Name))
	if seat.IsViewer {
		b.WriteString(` (You)`)
	}
	b.WriteString(`</span>`)
}

func writeBench(b *strings.Builder, bench Bench) {
	b.WriteString(`<div class="card bench"><div class="card-header">`)
	b.WriteString(esc(bench.Title))
	b.WriteString(`</div><div class="card-body">`)
	if len(bench.Seats) == 0 {
		b.WriteString(`<span class="text-muted bench-placeholder">`)
		b.WriteString(esc(bench.Placeholder))
		b.WriteString(`</span>`)
	}
	for _, seat := range bench.Seats {
		writeSeat(b, seat)
	}
	b.WriteString(`</div></div>`)
}

// RoomDiagram renders the viewer's room. Hidden entirely when the viewer
// holds no seat or assignments are not complete yet.
func RoomDiagram(view RoomDiagramView) templ.Component {
	return component(func(b *strings.Builder) {
		if !view.Visible {
			b.WriteString(`<div class="room-diagram" data-role="room-diagram" hidden></div>`)
			return
		}
		b.WriteString(`<div class="room-diagram" data-role="room-diagram"><h5>Room `)
		b.WriteString(itoa(view.Room))
		b.WriteString(`</h5><div class="benches benches-`)
		b.WriteString(esc(strings.ToLower(view.Style)))
		b.WriteString(`">`)
		for _, bench := range view.Benches {
			writeBench(b, bench)
		}
		b.WriteString(`</div><div class="judges-row">`)
		writeBench(b, view.Judges)
		b.WriteString(`</div></div>`)
	})
}

func writeCardList(b *strings.Builder, title, role string, cards []DebateCard) {
	b.WriteString(`<div class="debate-panel" data-role="`)
	b.WriteString(role)
	b.WriteString(`"><h6>`)
	b.WriteString(esc(title))
	b.WriteString(`</h6>`)
	if len(cards) == 0 {
		b.WriteString(`<p class="text-muted">None</p>`)
	}
	for _, card := range cards {
		b.WriteString(`<div class="card debate-card" data-debate-id="`)
		b.WriteString(itoa(card.ID))
		b.WriteString(`"><div class="card-body"><span>`)
		b.WriteString(esc(card.Title))
		b.WriteString(`</span> <span class="badge text-bg-info">`)
		b.WriteString(esc(card.Style))
		b.WriteString(`</span></div></div>`)
	}
	b.WriteString(`</div>`)
}

// DebateLists renders the three dashboard panels.
func DebateLists(view DebateListView) templ.Component {
	return component(func(b *strings.Builder) {
		b.WriteString(`<div class="debate-lists" data-role="debate-lists">`)
		writeCardList(b, "Active Debates", "active-debates", view.Active)
		writeCardList(b, "Upcoming Debates", "upcoming-debates", view.Upcoming)
		writeCardList(b, "Past Debates", "past-debates", view.Past)
		b.WriteString(`</div>`)
	})
}

// CurrentDebateCard renders the auto-selected debate's summary card.
func CurrentDebateCard(view CurrentDebateView) templ.Component {
	return component(func(b *strings.Builder) {
		if !view.Present {
			b.WriteString(`<div class="current-debate" data-role="current-debate"><p class="text-muted">No debate in progress.</p></div>`)
			return
		}
		b.WriteString(`<div class="current-debate" data-role="current-debate" data-debate-id="`)
		b.WriteString(itoa(view.ID))
		b.WriteString(`"><h4>`)
		b.WriteString(esc(view.Title))
		b.WriteString(` <span class="badge text-bg-info" data-role="style-badge">`)
		b.WriteString(esc(view.Style))
		b.WriteString(`</span></h4>`)
		if view.RoleBanner != "" {
			b.WriteString(`<div class="alert alert-secondary" data-role="role-banner">`)
			b.WriteString(esc(view.RoleBanner))
			b.WriteString(`</div>`)
		}
		if view.JudgingEnabled {
			b.WriteString(`<a class="btn btn-warning" data-role="judging-link" href="`)
			b.WriteString(esc(view.JudgingURL))
			b.WriteString(`">Go to Judging</a>`)
		} else {
			b.WriteString(`<button class="btn btn-warning" data-role="judging-link" disabled>Go to Judging</button>`)
		}
		b.WriteString(` <button class="btn btn-outline-primary" data-role="join-button">`)
		b.WriteString(esc(view.JoinLabel))
		b.WriteString(`</button></div>`)
	})
}
