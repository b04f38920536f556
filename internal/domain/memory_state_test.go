package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewCardMemoryStateDefaults(t *testing.T) {
	t.Parallel()
	userID, cardID := uuid.New(), uuid.New()

	s := NewCardMemoryState(userID, cardID)

	if s.EaseFactor != DefaultEaseFactor {
		t.Errorf("Expected ease %v, got %v", DefaultEaseFactor, s.EaseFactor)
	}
	if s.Mastery != 0 || s.Repetitions != 0 || s.IntervalDays != 0 {
		t.Errorf("Expected zero mastery, repetitions and interval, got %+v", s)
	}
	if s.Reviewed() {
		t.Error("Expected fresh state not to be reviewed")
	}
	if s.IsDue(time.Now()) {
		t.Error("Expected state without due date not to be due")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected default state to validate, got %v", err)
	}
}

func TestCardMemoryStateValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(s *CardMemoryState)
		wantErr error
	}{
		{"empty user", func(s *CardMemoryState) { s.UserID = uuid.Nil }, ErrEmptyStateUserID},
		{"empty card", func(s *CardMemoryState) { s.CardID = uuid.Nil }, ErrEmptyStateCardID},
		{"mastery above one", func(s *CardMemoryState) { s.Mastery = 1.2 }, ErrInvalidMastery},
		{"ease below floor", func(s *CardMemoryState) { s.EaseFactor = 1.2 }, ErrInvalidEaseFactor},
		{"negative repetitions", func(s *CardMemoryState) { s.Repetitions = -1 }, ErrInvalidRepetition},
		{"negative interval", func(s *CardMemoryState) { s.IntervalDays = -0.5 }, ErrInvalidInterval},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewCardMemoryState(uuid.New(), uuid.New())
			tc.mutate(s)
			if err := s.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCardMemoryStateTiming(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)
	last := now.Add(-2 * time.Minute)

	s := NewCardMemoryState(uuid.New(), uuid.New())
	s.NextDueAt = &due
	s.LastReviewAt = &last

	if !s.IsDue(now) {
		t.Error("Expected state to be due")
	}
	if !s.IsDue(due) {
		t.Error("Expected state to be due exactly at its due time")
	}
	if !s.ReviewedWithin(5*time.Minute, now) {
		t.Error("Expected review two minutes ago to be within five minutes")
	}
	if s.ReviewedWithin(time.Minute, now) {
		t.Error("Expected review two minutes ago not to be within one minute")
	}
}

func TestCardMemoryStateClone(t *testing.T) {
	t.Parallel()
	now := time.Now()
	score := 2
	s := NewCardMemoryState(uuid.New(), uuid.New())
	s.LastScore = &score
	s.NextDueAt = &now

	c := s.Clone()
	*c.LastScore = 0
	c.NextDueAt = nil

	if *s.LastScore != 2 {
		t.Errorf("Expected original score to stay 2, got %d", *s.LastScore)
	}
	if s.NextDueAt == nil {
		t.Error("Expected original due date to be untouched")
	}
}

func TestNewReview(t *testing.T) {
	t.Parallel()
	now := time.Now()

	r, err := NewReview(uuid.New(), uuid.New(), 3, 1200, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.ID == uuid.Nil {
		t.Error("Expected review ID to be set")
	}

	if _, err := NewReview(uuid.New(), uuid.New(), 4, 0, now); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("Expected ErrInvalidScore, got %v", err)
	}
	if _, err := NewReview(uuid.New(), uuid.New(), 1, -1, now); !errors.Is(err, ErrReviewLatency) {
		t.Errorf("Expected ErrReviewLatency, got %v", err)
	}
	if _, err := NewReview(uuid.Nil, uuid.New(), 1, 0, now); !errors.Is(err, ErrReviewUserIDEmpty) {
		t.Errorf("Expected ErrReviewUserIDEmpty, got %v", err)
	}
}
