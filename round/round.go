// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package round

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/trend-off/models"
)

// DefaultQuota is the number of votes in one judging round.
const DefaultQuota = 3

type State int

const (
	Idle State = iota
	AwaitingPair
	PresentingPair
	AwaitingVoteResult
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPair:
		return "awaiting_pair"
	case PresentingPair:
		return "presenting_pair"
	case AwaitingVoteResult:
		return "awaiting_vote_result"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var ErrWrongState = errors.New("operation not allowed in current state")

// Backend is what a round needs from the server.
type Backend interface {
	NextPair(ctx context.Context, excludeIDs []string) ([]models.Submission, error)
	Vote(ctx context.Context, winnerID, loserID string) (models.VoteResult, error)
}

// Controller runs one judging round for a single session. It is not safe
// for concurrent use; a session drives it from one goroutine.
type Controller struct {
	backend   Backend
	quota     int
	state     State
	exclude   []string
	pair      []models.Submission
	judged    int
	exhausted bool
	results   []models.VoteResult
}

func NewController(backend Backend, quota int) *Controller {
	if quota < 1 {
		quota = DefaultQuota
	}
	return &Controller{backend: backend, quota: quota}
}

func (c *Controller) State() State { return c.state }

// Pair returns the two submissions being presented, or nil.
func (c *Controller) Pair() []models.Submission {
	if c.state != PresentingPair {
		return nil
	}
	return c.pair
}

// Judged is the number of successful votes so far.
func (c *Controller) Judged() int { return c.judged }

func (c *Controller) Quota() int { return c.quota }

// Exhausted reports whether the round ended because no unseen pair remained.
func (c *Controller) Exhausted() bool { return c.exhausted }

// Excluded returns the ids already shown in this session.
func (c *Controller) Excluded() []string {
	return append([]string(nil), c.exclude...)
}

// Results returns the outcome of every vote cast in this round.
func (c *Controller) Results() []models.VoteResult {
	return append([]models.VoteResult(nil), c.results...)
}

// Start loads the first pair.
func (c *Controller) Start(ctx context.Context) error {
	if c.state != Idle {
		return fmt.Errorf("%w: start from %s", ErrWrongState, c.state)
	}
	c.state = AwaitingPair
	return c.fetch(ctx)
}

// Retry repeats the pair fetch after a failed one.
func (c *Controller) Retry(ctx context.Context) error {
	if c.state != AwaitingPair {
		return fmt.Errorf("%w: retry from %s", ErrWrongState, c.state)
	}
	return c.fetch(ctx)
}

// Choose votes for pair[winner] over the other item. On failure the pair
// stays presented and Choose may be called again.
func (c *Controller) Choose(ctx context.Context, winner int) error {
	if c.state != PresentingPair {
		return fmt.Errorf("%w: choose from %s", ErrWrongState, c.state)
	}
	if winner != 0 && winner != 1 {
		return fmt.Errorf("%w: winner index must be 0 or 1", models.ErrInvalidRequest)
	}

	w, l := c.pair[winner], c.pair[1-winner]

	c.state = AwaitingVoteResult
	result, err := c.backend.Vote(ctx, w.ID, l.ID)
	if err != nil {
		c.state = PresentingPair
		return fmt.Errorf("vote: %w", err)
	}

	c.exclude = append(c.exclude, w.ID, l.ID)
	c.results = append(c.results, result)
	c.judged++

	if c.judged >= c.quota {
		c.finish(false)
		return nil
	}

	c.state = AwaitingPair
	return c.fetch(ctx)
}

// Skip passes on a pair that is too tough to call. Both items are excluded
// and no rating changes.
func (c *Controller) Skip(ctx context.Context) error {
	if c.state != PresentingPair {
		return fmt.Errorf("%w: skip from %s", ErrWrongState, c.state)
	}

	c.exclude = append(c.exclude, c.pair[0].ID, c.pair[1].ID)
	c.state = AwaitingPair
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) error {
	pair, err := c.backend.NextPair(ctx, c.Excluded())
	if err != nil {
		return fmt.Errorf("fetch pair: %w", err)
	}

	if len(pair) < models.DefaultPairSize {
		c.finish(true)
		return nil
	}

	c.pair = pair[:models.DefaultPairSize]
	c.state = PresentingPair
	return nil
}

func (c *Controller) finish(exhausted bool) {
	c.pair = nil
	c.exhausted = exhausted
	c.state = Complete
}
