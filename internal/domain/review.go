package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Score bounds for a graded answer.
const (
	MinScore = 0
	MaxScore = 3
)

// Review validation errors
var (
	ErrReviewUserIDEmpty = fmt.Errorf("%w: review user ID cannot be empty", ErrValidation)
	ErrReviewCardIDEmpty = fmt.Errorf("%w: review card ID cannot be empty", ErrValidation)
	ErrReviewLatency     = fmt.Errorf("%w: latency must be greater than or equal to 0", ErrValidation)
)

// Review is one graded answer. Reviews are append-only and never modified.
type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CardID    uuid.UUID `json:"card_id"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	LatencyMS int64     `json:"latency_ms"`
}

// ValidScore reports whether score is within 0..3.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// NewReview creates a validated review entry stamped at now.
func NewReview(userID, cardID uuid.UUID, score int, latencyMS int64, now time.Time) (*Review, error) {
	r := &Review{
		ID:        uuid.New(),
		UserID:    userID,
		CardID:    cardID,
		Timestamp: now.UTC(),
		Score:     score,
		LatencyMS: latencyMS,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrReviewUserIDEmpty
	}
	if r.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}
	if !ValidScore(r.Score) {
		return fmt.Errorf("%w: %d", ErrInvalidScore, r.Score)
	}
	if r.LatencyMS < 0 {
		return ErrReviewLatency
	}
	return nil
}
