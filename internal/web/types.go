package web

// Viewer identifies the user a dashboard render is built for.
type Viewer struct {
	ID            int
	Name          string
	PreferJudging bool
	JudgeSkill    string
}

type TopicRow struct {
	ID      int
	Text    string
	Voted   bool
	CanVote bool
}

type VoteBoxView struct {
	DebateID       int
	Visible        bool
	VotesLeft      int
	VotesLeftLabel string
	Topics         []TopicRow
}

type ProgressView struct {
	Visible    bool
	Percent    int
	VotedUsers int
	TotalUsers int
	Label      string
}

// SeatBadge is one occupied slot in the room diagram.
type SeatBadge struct {
	Role     string
	Name     string
	Icon     string
	IsViewer bool
}

// Bench is one zone of the room diagram with its empty placeholder.
type Bench struct {
	Title       string
	Seats       []SeatBadge
	Placeholder string
}

type RoomDiagramView struct {
	Visible bool
	Room    int
	Style   string
	Benches []Bench
	Judges  Bench
}

type DebateCard struct {
	ID                 int
	Title              string
	Style              string
	Active             bool
	VotingOpen         bool
	AssignmentComplete bool
}

type DebateListView struct {
	Active   []DebateCard
	Past     []DebateCard
	Upcoming []DebateCard
}

type CurrentDebateView struct {
	Present        bool
	ID             int
	Title          string
	Style          string
	RoleBanner     string
	JudgingEnabled bool
	JudgingURL     string
	JoinLabel      string
}
