package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client reads derived tournament state from the backend and submits votes.
// The backend owns all real state; every call returns a fresh snapshot.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("backend response %s: %w", path, err)
	}
	return nil
}

// VoteStats returns the aggregate tally for a debate.
func (c *Client) VoteStats(ctx context.Context, debateID int) (VoteTally, error) {
	var tally VoteTally
	if err := c.getJSON(ctx, "/debate/"+strconv.Itoa(debateID)+"/vote_stats", &tally); err != nil {
		return VoteTally{}, err
	}
	if err := tally.validate(); err != nil {
		return VoteTally{}, err
	}
	return tally, nil
}

// Topics returns the open motions for a debate's topic vote.
func (c *Client) Topics(ctx context.Context, debateID int) ([]Topic, error) {
	var payload struct {
		Topics []Topic `json:"topics"`
	}
	if err := c.getJSON(ctx, "/debate/"+strconv.Itoa(debateID)+"/topics_json", &payload); err != nil {
		return nil, err
	}
	return payload.Topics, nil
}

// VoteStatus returns the given user's ballot state for a debate.
func (c *Client) VoteStatus(ctx context.Context, debateID, userID int) (VoteStatus, error) {
	path := "/debate/" + strconv.Itoa(debateID) + "/vote_status?user_id=" + strconv.Itoa(userID)
	var status VoteStatus
	if err := c.getJSON(ctx, path, &status); err != nil {
		return VoteStatus{}, err
	}
	if err := status.validate(); err != nil {
		return VoteStatus{}, err
	}
	return status, nil
}

// Assignments returns all room assignments for a debate.
func (c *Client) Assignments(ctx context.Context, debateID int) ([]Assignment, error) {
	var payload struct {
		Assignments []Assignment `json:"assignments"`
	}
	if err := c.getJSON(ctx, "/debate/"+strconv.Itoa(debateID)+"/assignments_json", &payload); err != nil {
		return nil, err
	}
	for _, assignment := range payload.Assignments {
		if err := assignment.validate(); err != nil {
			return nil, err
		}
	}
	return payload.Assignments, nil
}

// Debates returns every known debate, flags resolved for the given user.
func (c *Client) Debates(ctx context.Context, userID int) ([]DebateSummary, error) {
	var payload struct {
		Debates []DebateSummary `json:"debates"`
	}
	if err := c.getJSON(ctx, "/debates_json?user_id="+strconv.Itoa(userID), &payload); err != nil {
		return nil, err
	}
	for _, debate := range payload.Debates {
		if err := debate.validate(); err != nil {
			return nil, err
		}
	}
	return payload.Debates, nil
}

// CastVote submits a topic selection for the given user. The caller is
// expected to re-render from authoritative state afterwards regardless
// of the outcome.
func (c *Client) CastVote(ctx context.Context, debateID, userID, topicID int) error {
	form := url.Values{}
	form.Set("topic_id", strconv.Itoa(topicID))
	form.Set("user_id", strconv.Itoa(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/debate/"+strconv.Itoa(debateID), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cast vote: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("cast vote: status %d", resp.StatusCode)
	}
	return nil
}

// BallotContext is the pair of fetches the vote box needs for one render.
type BallotContext struct {
	Topics []Topic
	Status VoteStatus
}

// Ballot fetches topics and the user's vote status in parallel and joins
// the results, so the vote box never renders from half-updated data.
func (c *Client) Ballot(ctx context.Context, debateID, userID int) (BallotContext, error) {
	var (
		topics    []Topic
		status    VoteStatus
		topicErr  error
		statusErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		status, statusErr = c.VoteStatus(ctx, debateID, userID)
	}()
	topics, topicErr = c.Topics(ctx, debateID)
	<-done
	if topicErr != nil {
		return BallotContext{}, topicErr
	}
	if statusErr != nil {
		return BallotContext{}, statusErr
	}
	return BallotContext{Topics: topics, Status: status}, nil
}
