package economy

import (
	"context"
	"sync"

	"github.com/sdvdiscord/sideshow/internal/rules"
)

type ReviewState int

const (
	ReviewPending ReviewState = iota
	ReviewApproved
	ReviewRejected
)

func (s ReviewState) String() string {
	switch s {
	case ReviewApproved:
		return "approved"
	case ReviewRejected:
		return "rejected"
	}
	return "pending"
}

// Review tracks the staff decision on one submitted message.
type Review struct {
	MessageID  string
	AuthorID   string
	ScopeID    string
	State      ReviewState
	Amount     int64
	ResolvedBy string
}

// Decision is a staff click on a review control.
type Decision struct {
	MessageID string
	AuthorID  string
	ScopeID   string
	ActorID   string
	// Label is the text of the chosen tier control; ignored when rejecting.
	Label   string
	Approve bool
}

type reviewBoard struct {
	mu      sync.Mutex
	reviews map[string]*Review
}

func newReviewBoard() *reviewBoard {
	return &reviewBoard{reviews: make(map[string]*Review)}
}

// OpenReview registers a pending review for a message. Opening an existing review
// returns it unchanged.
func (s *Service) OpenReview(messageID, authorID, scopeID string) Review {
	b := s.reviews
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.reviews[messageID]; ok {
		return *r
	}
	r := &Review{MessageID: messageID, AuthorID: authorID, ScopeID: scopeID}
	b.reviews[messageID] = r
	return *r
}

// ReviewStatus returns the review for a message.
func (s *Service) ReviewStatus(messageID string) (Review, bool) {
	b := s.reviews
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[messageID]
	if !ok {
		return Review{}, false
	}
	return *r, true
}

// ResolveReview moves a pending review to its terminal state. The first decision wins;
// later ones get ErrReviewClosed. Controls from before a restart carry the author, so an
// unknown review is opened on the spot. A failed award puts the review back to pending.
func (s *Service) ResolveReview(ctx context.Context, d Decision) (Review, Result, error) {
	b := s.reviews
	b.mu.Lock()
	r, ok := b.reviews[d.MessageID]
	if !ok {
		if d.AuthorID == "" {
			b.mu.Unlock()
			return Review{}, Result{}, ErrReviewNotFound
		}
		r = &Review{MessageID: d.MessageID, AuthorID: d.AuthorID, ScopeID: d.ScopeID}
		b.reviews[d.MessageID] = r
	}
	if r.State != ReviewPending {
		closed := *r
		b.mu.Unlock()
		return closed, Result{}, ErrReviewClosed
	}
	r.ResolvedBy = d.ActorID
	if !d.Approve {
		r.State = ReviewRejected
		done := *r
		b.mu.Unlock()
		s.logger.Info("review rejected", "message_id", d.MessageID, "actor_id", d.ActorID)
		return done, Result{}, nil
	}
	r.State = ReviewApproved
	claimed := *r
	b.mu.Unlock()

	res, err := s.Trigger(ctx, rules.Event{
		Kind:      rules.KindPicross,
		ActorID:   d.ActorID,
		UserID:    claimed.AuthorID,
		ScopeID:   claimed.ScopeID,
		MessageID: d.MessageID,
		Label:     d.Label,
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		r.State = ReviewPending
		r.ResolvedBy = ""
		return *r, res, err
	}
	r.Amount = res.Outcome.Amount
	return *r, res, nil
}
