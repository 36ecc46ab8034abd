package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"debate-dashboard/internal/backend"
	"debate-dashboard/internal/config"

	"github.com/gorilla/websocket"
)

// fakeBackend stands in for the tournament backend, serving the read
// endpoints and accepting votes.
type fakeBackend struct {
	mu          sync.Mutex
	debates     []backend.DebateSummary
	topics      []backend.Topic
	status      backend.VoteStatus
	tally       backend.VoteTally
	assignments []backend.Assignment
	requests    map[string]int
	votesCast   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		requests: make(map[string]int),
	}
}

func (f *fakeBackend) count(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[path]++
}

func (f *fakeBackend) requestCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeBackend) votes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.votesCast
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /debates_json", func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"debates": f.debates})
	})
	mux.HandleFunc("GET /debate/{id}/vote_stats", func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.tally)
	})
	mux.HandleFunc("GET /debate/{id}/topics_json", func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"topics": f.topics})
	})
	mux.HandleFunc("GET /debate/{id}/vote_status", func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.status)
	})
	mux.HandleFunc("GET /debate/{id}/assignments_json", func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"assignments": f.assignments})
	})
	mux.HandleFunc("POST /debate/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.votesCast++
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func openRound() *fakeBackend {
	fake := newFakeBackend()
	fake.debates = []backend.DebateSummary{
		{ID: 1, Title: "Round 1", Style: backend.StyleOPD, Active: true, VotingOpen: true, AssignmentComplete: true},
		{ID: 2, Title: "Round 0", Style: backend.StyleBP, AssignmentComplete: true},
	}
	fake.topics = []backend.Topic{
		{ID: 11, Text: "Motion A"},
		{ID: 12, Text: "Motion B"},
	}
	fake.status = backend.VoteStatus{UserVotes: []int{11}, VotesLeft: 1}
	fake.tally = backend.VoteTally{TotalUsers: 4, VotedUsers: 3}
	fake.assignments = []backend.Assignment{
		{UserID: 3, Username: "Ada", Role: "Gov", Room: 1},
		{UserID: 4, Username: "Ben", Role: "Opp", Room: 1},
		{UserID: 5, Username: "Cam", Role: "Judge-Chair", Room: 1},
	}
	return fake
}

func newTestDashboard(t *testing.T, fake *fakeBackend) (*Server, *httptest.Server) {
	t.Helper()
	backendTS := httptest.NewServer(fake.handler())
	t.Cleanup(backendTS.Close)

	srv := New(backend.NewClient(backendTS.URL), nil, config.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func claimSession(t *testing.T, ts *httptest.Server, userID int, name string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"user_id": userID, "name": name})
	resp, err := http.Post(ts.URL+"/api/session", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("claim session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim session status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie {
			return cookie.Name + "=" + cookie.Value
		}
	}
	t.Fatal("no session cookie issued")
	return ""
}

func dialDashboard(t *testing.T, ts *httptest.Server, cookie string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/dashboard"
	header := http.Header{}
	header.Set("Cookie", cookie)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFragments(t *testing.T, conn *websocket.Conn, want ...string) map[string]string {
	t.Helper()
	got := make(map[string]string)
	for {
		missing := false
		for _, name := range want {
			if _, ok := got[name]; !ok {
				missing = true
			}
		}
		if !missing {
			return got
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for fragments %v, have %v: %v", want, keys(got), err)
		}
		var msg fragmentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad fragment message: %v", err)
		}
		got[msg.Fragment] = msg.HTML
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDashboardPage(t *testing.T) {
	_, ts := newTestDashboard(t, openRound())
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestWebsocketRequiresSession(t *testing.T) {
	_, ts := newTestDashboard(t, openRound())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/dashboard"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("expected dial to fail without a session")
	}
}

func TestSnapshotRendersAllFragments(t *testing.T) {
	_, ts := newTestDashboard(t, openRound())
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)

	fragments := readFragments(t, conn,
		"debateLists", "currentDebate", "voteProgress", "voteBox", "roomDiagram")

	if !strings.Contains(fragments["debateLists"], "Round 1") {
		t.Fatalf("debate lists missing active debate: %q", fragments["debateLists"])
	}
	if !strings.Contains(fragments["currentDebate"], "Round 1") {
		t.Fatalf("current debate card missing title: %q", fragments["currentDebate"])
	}
	if !strings.Contains(fragments["voteProgress"], "3/4 have voted") {
		t.Fatalf("unexpected progress fragment: %q", fragments["voteProgress"])
	}
	if !strings.Contains(fragments["voteBox"], "1 vote left") {
		t.Fatalf("unexpected vote box fragment: %q", fragments["voteBox"])
	}
	if !strings.Contains(fragments["roomDiagram"], "(You)") {
		t.Fatalf("room diagram missing viewer marker: %q", fragments["roomDiagram"])
	}
}

func TestVoteUpdatePushSkipsFetch(t *testing.T) {
	fake := openRound()
	srv, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)
	readFragments(t, conn, "voteProgress")

	before := fake.requestCount("/debate/1/vote_stats")
	srv.HandleVoteUpdate(1, backend.VoteTally{TotalUsers: 4, VotedUsers: 4})

	fragments := readFragments(t, conn, "voteProgress")
	if !strings.Contains(fragments["voteProgress"], "4/4 have voted") {
		t.Fatalf("unexpected progress fragment: %q", fragments["voteProgress"])
	}
	if !strings.Contains(fragments["voteProgress"], "100%") {
		t.Fatalf("expected 100%% in %q", fragments["voteProgress"])
	}
	if after := fake.requestCount("/debate/1/vote_stats"); after != before {
		t.Fatalf("vote_update push must not refetch the tally: %d -> %d", before, after)
	}
}

func TestVoteUpdateIgnoredForOtherDebate(t *testing.T) {
	fake := openRound()
	srv, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)
	readFragments(t, conn,
		"debateLists", "currentDebate", "voteProgress", "voteBox", "roomDiagram")

	srv.HandleVoteUpdate(99, backend.VoteTally{TotalUsers: 1, VotedUsers: 1})

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected no fragment for a non-current debate")
	}
}

func TestDebateStatusCloseHidesVoteBoxWithoutFetch(t *testing.T) {
	fake := openRound()
	srv, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)
	readFragments(t, conn, "voteBox")

	topicsBefore := fake.requestCount("/debate/1/topics_json")
	srv.HandleDebateStatus(1, false)

	fragments := readFragments(t, conn, "voteBox")
	if !strings.Contains(fragments["voteBox"], "hidden") {
		t.Fatalf("expected hidden vote box, got %q", fragments["voteBox"])
	}
	if after := fake.requestCount("/debate/1/topics_json"); after != topicsBefore {
		t.Fatalf("closing the vote must not fetch topics: %d -> %d", topicsBefore, after)
	}

	srv.HandleDebateStatus(1, true)
	fragments = readFragments(t, conn, "voteBox")
	if strings.Contains(fragments["voteBox"], "hidden") {
		t.Fatalf("expected visible vote box, got %q", fragments["voteBox"])
	}
	if after := fake.requestCount("/debate/1/topics_json"); after <= topicsBefore {
		t.Fatal("reopening the vote must fetch-and-render")
	}
}

func TestDebateStatusCloseHidesProgressWithoutFetch(t *testing.T) {
	fake := openRound()
	srv, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)
	readFragments(t, conn,
		"debateLists", "currentDebate", "voteProgress", "voteBox", "roomDiagram")

	statsBefore := fake.requestCount("/debate/1/vote_stats")
	srv.HandleDebateStatus(1, false)

	fragments := readFragments(t, conn, "voteProgress")
	if !strings.Contains(fragments["voteProgress"], "hidden") {
		t.Fatalf("expected hidden progress bar, got %q", fragments["voteProgress"])
	}
	if after := fake.requestCount("/debate/1/vote_stats"); after != statsBefore {
		t.Fatalf("closing the vote must not fetch the tally: %d -> %d", statsBefore, after)
	}

	srv.HandleDebateStatus(1, true)
	fragments = readFragments(t, conn, "voteProgress")
	if strings.Contains(fragments["voteProgress"], "hidden") {
		t.Fatalf("expected visible progress bar, got %q", fragments["voteProgress"])
	}
	if !strings.Contains(fragments["voteProgress"], "3/4 have voted") {
		t.Fatalf("expected refetched tally, got %q", fragments["voteProgress"])
	}
}

func TestVoteBoxClampsVotesLeftToBudget(t *testing.T) {
	fake := openRound()
	fake.status = backend.VoteStatus{VotesLeft: 7}
	_, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)

	fragments := readFragments(t, conn, "voteBox")
	if !strings.Contains(fragments["voteBox"], "2 votes left") {
		t.Fatalf("expected votes left capped at the configured budget, got %q", fragments["voteBox"])
	}
}

func TestCastVoteRefreshesBallotAndProgress(t *testing.T) {
	fake := openRound()
	_, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)
	readFragments(t, conn, "voteBox", "voteProgress")

	fake.mu.Lock()
	fake.status = backend.VoteStatus{UserVotes: []int{11, 12}, VotesLeft: 0}
	fake.tally = backend.VoteTally{TotalUsers: 4, VotedUsers: 4}
	fake.mu.Unlock()

	body, _ := json.Marshal(map[string]int{"topic_id": 12})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/debate/1/vote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cast vote status %d", resp.StatusCode)
	}
	if fake.votes() != 1 {
		t.Fatalf("expected one vote forwarded, got %d", fake.votes())
	}

	fragments := readFragments(t, conn, "voteBox", "voteProgress")
	if !strings.Contains(fragments["voteBox"], "0 votes left") {
		t.Fatalf("expected refreshed ballot, got %q", fragments["voteBox"])
	}
	if strings.Contains(fragments["voteBox"], "vote-button") {
		t.Fatalf("no buttons expected with zero votes left: %q", fragments["voteBox"])
	}
	if !strings.Contains(fragments["voteProgress"], "4/4 have voted") {
		t.Fatalf("expected refreshed progress, got %q", fragments["voteProgress"])
	}
}

func TestAssignmentsReadyRendersDiagram(t *testing.T) {
	fake := openRound()
	fake.debates[0].AssignmentComplete = false
	srv, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)

	fragments := readFragments(t, conn, "roomDiagram")
	if !strings.Contains(fragments["roomDiagram"], "hidden") {
		t.Fatalf("expected hidden diagram before assignments complete: %q", fragments["roomDiagram"])
	}

	srv.HandleAssignmentsReady(1)
	fragments = readFragments(t, conn, "roomDiagram")
	if !strings.Contains(fragments["roomDiagram"], "Room 1") {
		t.Fatalf("expected rendered diagram, got %q", fragments["roomDiagram"])
	}
	if !strings.Contains(fragments["roomDiagram"], "(You)") {
		t.Fatalf("expected viewer marker, got %q", fragments["roomDiagram"])
	}
}

func TestDebateListUpdateSwitchesCurrentDebate(t *testing.T) {
	fake := openRound()
	srv, ts := newTestDashboard(t, fake)
	cookie := claimSession(t, ts, 3, "Ada")
	conn := dialDashboard(t, ts, cookie)
	readFragments(t, conn,
		"debateLists", "currentDebate", "voteProgress", "voteBox", "roomDiagram")

	fake.mu.Lock()
	fake.debates[0].Active = false
	fake.debates[1].Active = true
	fake.debates[1].VotingOpen = false
	fake.mu.Unlock()

	srv.HandleDebateListUpdate()

	fragments := readFragments(t, conn, "currentDebate", "voteBox")
	if !strings.Contains(fragments["currentDebate"], "Round 0") {
		t.Fatalf("expected new current debate, got %q", fragments["currentDebate"])
	}
	if !strings.Contains(fragments["voteBox"], "hidden") {
		t.Fatalf("expected hidden vote box for closed voting, got %q", fragments["voteBox"])
	}
}

func TestSnapshotDebateSwitchUpdatesOtherViewers(t *testing.T) {
	fake := openRound()
	_, ts := newTestDashboard(t, fake)
	cookieA := claimSession(t, ts, 3, "Ada")
	connA := dialDashboard(t, ts, cookieA)
	readFragments(t, connA,
		"debateLists", "currentDebate", "voteProgress", "voteBox", "roomDiagram")

	fake.mu.Lock()
	fake.debates[0].Active = false
	fake.debates[1].Active = true
	fake.mu.Unlock()

	cookieB := claimSession(t, ts, 4, "Ben")
	dialDashboard(t, ts, cookieB)

	fragments := readFragments(t, connA, "currentDebate", "voteBox")
	if !strings.Contains(fragments["currentDebate"], "Round 0") {
		t.Fatalf("expected connected viewers to follow the switch, got %q", fragments["currentDebate"])
	}
	if !strings.Contains(fragments["voteBox"], "hidden") {
		t.Fatalf("expected hidden vote box for closed voting, got %q", fragments["voteBox"])
	}
}
