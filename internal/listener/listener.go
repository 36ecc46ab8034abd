package listener

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"debate-dashboard/internal/backend"

	"github.com/gorilla/websocket"
)

// Event names emitted by the tournament backend's push channel.
const (
	EventVoteUpdate       = "vote_update"
	EventDebateStatus     = "debate_status"
	EventAssignmentsReady = "assignments_ready"
	EventDebateListUpdate = "debate_list_update"
)

// Handlers are the reconciliation entry points the listener dispatches
// to. Every handler must be idempotent; the channel gives no ordering
// guarantee between events.
type Handlers struct {
	VoteUpdate       func(debateID int, tally backend.VoteTally)
	DebateStatus     func(debateID int, votingOpen bool)
	AssignmentsReady func(debateID int)
	DebateListUpdate func()
	// Record observes every recognized event before dispatch, for
	// journaling. Optional.
	Record func(event string, debateID *int, payload json.RawMessage)
}

// Listener keeps one long-lived websocket connection to the backend's
// event channel and dispatches each named event to exactly one handler.
type Listener struct {
	url        string
	handlers   Handlers
	maxBackoff time.Duration
}

func New(url string, handlers Handlers, maxBackoff time.Duration) *Listener {
	if maxBackoff <= 0 {
		maxBackoff = time.Minute
	}
	return &Listener{
		url:        url,
		handlers:   handlers,
		maxBackoff: maxBackoff,
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type debateEvent struct {
	DebateID int `json:"debate_id"`
}

type voteUpdateEvent struct {
	DebateID int               `json:"debate_id"`
	VoteData backend.VoteTally `json:"vote_data"`
}

type debateStatusEvent struct {
	DebateID   int  `json:"debate_id"`
	VotingOpen bool `json:"voting_open"`
}

// Run connects and reads until ctx is cancelled, reconnecting with a
// doubling, capped backoff across consecutive dial failures.
func (l *Listener) Run(ctx context.Context) {
	var backoff time.Duration
	for {
		if ctx.Err() != nil {
			return
		}
		connected, err := l.readLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		backoff = nextBackoff(backoff, l.maxBackoff, connected)
		log.Printf("event channel disconnected url=%s retry_in=%s error=%v", l.url, backoff, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// nextBackoff doubles the delay across consecutive failed dials and
// drops back to one second once a connection was established.
func nextBackoff(current, max time.Duration, connected bool) time.Duration {
	if connected || current == 0 {
		return time.Second
	}
	current *= 2
	if current > max {
		return max
	}
	return current
}

// readLoop reports whether the dial succeeded so Run can reset its
// backoff after a healthy connection drops.
func (l *Listener) readLoop(ctx context.Context) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	log.Printf("event channel connected url=%s", l.url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		l.dispatch(data)
	}
}

// dispatch decodes one raw channel message and routes it. Malformed
// messages are logged and dropped; they never tear down the connection.
func (l *Listener) dispatch(data []byte) {
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("event decode failed error=%v", err)
		return
	}
	switch msg.Event {
	case EventVoteUpdate:
		var event voteUpdateEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("event decode failed event=%s error=%v", msg.Event, err)
			return
		}
		l.record(msg.Event, &event.DebateID, msg.Data)
		if l.handlers.VoteUpdate != nil {
			l.handlers.VoteUpdate(event.DebateID, event.VoteData)
		}
	case EventDebateStatus:
		var event debateStatusEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("event decode failed event=%s error=%v", msg.Event, err)
			return
		}
		l.record(msg.Event, &event.DebateID, msg.Data)
		if l.handlers.DebateStatus != nil {
			l.handlers.DebateStatus(event.DebateID, event.VotingOpen)
		}
	case EventAssignmentsReady:
		var event debateEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("event decode failed event=%s error=%v", msg.Event, err)
			return
		}
		l.record(msg.Event, &event.DebateID, msg.Data)
		if l.handlers.AssignmentsReady != nil {
			l.handlers.AssignmentsReady(event.DebateID)
		}
	case EventDebateListUpdate:
		l.record(msg.Event, nil, msg.Data)
		if l.handlers.DebateListUpdate != nil {
			l.handlers.DebateListUpdate()
		}
	default:
		log.Printf("ignoring unknown event event=%s", msg.Event)
	}
}

func (l *Listener) record(event string, debateID *int, payload json.RawMessage) {
	if l.handlers.Record != nil {
		l.handlers.Record(event, debateID, payload)
	}
}
