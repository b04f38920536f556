package card_review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/platform/lock"
	"github.com/phrazzld/scry-adaptive/internal/selection"
)

// CardSelector picks the next card for a user in a document.
type CardSelector interface {
	Select(ctx context.Context, userID, documentID uuid.UUID, now time.Time) (*selection.Selection, error)
}

// Locker serialises work on a key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Observer receives review and selection measurements.
type Observer interface {
	ObserveReview(cardType string, score int, grading time.Duration)
	ObserveSelection(stage string, struggling bool)
	ObserveNoCandidates()
	ObserveRecomputeFailure()
}

type noopObserver struct{}

func (noopObserver) ObserveReview(string, int, time.Duration) {}
func (noopObserver) ObserveSelection(string, bool) {}
func (noopObserver) ObserveNoCandidates() {}
func (noopObserver) ObserveRecomputeFailure() {}

// Option configures optional collaborators of the service.
type Option func(*cardReviewServiceImpl)

// WithLocker replaces the default in-process lock.
func WithLocker(l Locker) Option {
	return func(s *cardReviewServiceImpl) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithObserver records metrics through o.
func WithObserver(o Observer) Option {
	return func(s *cardReviewServiceImpl) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *cardReviewServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

func defaultLocker() Locker { return lock.NewKeyedMutex() }

// cardLockKey names the lock guarding one user's state for one card.
func cardLockKey(userID, cardID uuid.UUID) string {
	return "card_state:" + userID.String() + ":" + cardID.String()
}
