package backend

import "errors"

// Debate styles used by the tournament backend.
const (
	StyleOPD = "OPD"
	StyleBP  = "BP"
)

var errMissingField = errors.New("payload is missing a required field")

// DebateSummary mirrors one entry of the backend's debate list.
type DebateSummary struct {
	ID                 int    `json:"id"`
	Title              string `json:"title"`
	Style              string `json:"style"`
	Active             bool   `json:"active"`
	VotingOpen         bool   `json:"voting_open"`
	AssignmentComplete bool   `json:"assignment_complete"`
	UserRole           string `json:"user_role"`
	IsJudgeChair       bool   `json:"is_judge_chair"`
}

type Topic struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// VoteTally is the aggregate vote count for one debate.
type VoteTally struct {
	TotalUsers int `json:"total_users"`
	VotedUsers int `json:"voted_users"`
}

// VoteStatus is the viewing user's ballot state for one debate.
type VoteStatus struct {
	UserVotes []int `json:"user_votes"`
	VotesLeft int   `json:"votes_left"`
}

// Assignment is one (user, role, room) slot of a debate. A zero UserID
// marks a slot that has not been filled yet.
type Assignment struct {
	UserID     int    `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Room       int    `json:"room"`
	JudgeSkill string `json:"judge_skill,omitempty"`
}

// Voted reports whether the user already voted for the given topic.
func (s VoteStatus) Voted(topicID int) bool {
	for _, id := range s.UserVotes {
		if id == topicID {
			return true
		}
	}
	return false
}

func (t VoteTally) validate() error {
	if t.TotalUsers < 0 || t.VotedUsers < 0 || t.VotedUsers > t.TotalUsers {
		return errors.New("vote tally out of range")
	}
	return nil
}

func (s VoteStatus) validate() error {
	if s.VotesLeft < 0 {
		return errors.New("votes_left is negative")
	}
	return nil
}

func (d DebateSummary) validate() error {
	if d.ID == 0 || d.Title == "" {
		return errMissingField
	}
	return nil
}

func (a Assignment) validate() error {
	if a.Role == "" {
		return errMissingField
	}
	return nil
}
