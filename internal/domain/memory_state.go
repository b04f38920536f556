package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Defaults for a card that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Common validation errors for CardMemoryState
var (
	ErrEmptyStateUserID  = fmt.Errorf("%w: memory state user ID cannot be empty", ErrValidation)
	ErrEmptyStateCardID  = fmt.Errorf("%w: memory state card ID cannot be empty", ErrValidation)
	ErrInvalidMastery    = fmt.Errorf("%w: mastery must be within [0,1]", ErrValidation)
	ErrInvalidEaseFactor = fmt.Errorf("%w: ease factor must be at least 1.3", ErrValidation)
	ErrInvalidInterval   = fmt.Errorf("%w: interval must be greater than or equal to 0", ErrValidation)
	ErrInvalidRepetition = fmt.Errorf("%w: repetitions must be greater than or equal to 0", ErrValidation)
)

// CardMemoryState is what the engine knows about one user's memory of one
// card. At most one exists per (UserID, CardID); it is created lazily on the
// first review.
type CardMemoryState struct {
	UserID       uuid.UUID  `json:"user_id"`
	CardID       uuid.UUID  `json:"card_id"`
	Mastery      float64    `json:"mastery"`
	EaseFactor   float64    `json:"ease_factor"`
	Repetitions  int        `json:"repetitions"`
	IntervalDays float64    `json:"interval_days"`
	LastScore    *int       `json:"last_score,omitempty"`
	NextDueAt    *time.Time `json:"next_due_at,omitempty"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
}

// NewCardMemoryState returns the default state for a card the user has not
// reviewed yet.
func NewCardMemoryState(userID, cardID uuid.UUID) *CardMemoryState {
	return &CardMemoryState{
		UserID:     userID,
		CardID:     cardID,
		EaseFactor: DefaultEaseFactor,
	}
}

// Validate checks the invariants of the memory state.
func (s *CardMemoryState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}
	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}
	if s.Mastery < 0 || s.Mastery > 1 {
		return ErrInvalidMastery
	}
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if s.Repetitions < 0 {
		return ErrInvalidRepetition
	}
	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}
	return nil
}

// Reviewed reports whether the card has ever been reviewed.
func (s *CardMemoryState) Reviewed() bool {
	return s != nil && s.LastReviewAt != nil
}

// IsDue reports whether the card is due at now. Cards without a due date are
// never due.
func (s *CardMemoryState) IsDue(now time.Time) bool {
	return s != nil && s.NextDueAt != nil && !s.NextDueAt.After(now)
}

// ReviewedWithin reports whether the last review happened less than d before now.
func (s *CardMemoryState) ReviewedWithin(d time.Duration, now time.Time) bool {
	return s.Reviewed() && now.Sub(*s.LastReviewAt) < d
}

// Clone returns a deep copy of the state.
func (s *CardMemoryState) Clone() *CardMemoryState {
	if s == nil {
		return nil
	}
	c := *s
	if s.LastScore != nil {
		v := *s.LastScore
		c.LastScore = &v
	}
	if s.NextDueAt != nil {
		v := *s.NextDueAt
		c.NextDueAt = &v
	}
	if s.LastReviewAt != nil {
		v := *s.LastReviewAt
		c.LastReviewAt = &v
	}
	return &c
}
