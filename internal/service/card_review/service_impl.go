package card_review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/domain/srs"
	"github.com/phrazzld/scry-adaptive/internal/events"
	"github.com/phrazzld/scry-adaptive/internal/grading"
	"github.com/phrazzld/scry-adaptive/internal/mastery"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	stores     store.Stores
	tx         store.Transactor
	grader     grading.Grader
	srsService srs.Service
	selector   CardSelector
	emitter    events.EventEmitter
	locker     Locker
	observer   Observer
	now        func() time.Time
	logger     *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
// stores are used outside transactions; tx runs the review unit of work.
func NewCardReviewService(
	stores store.Stores,
	tx store.Transactor,
	grader grading.Grader,
	srsService srs.Service,
	selector CardSelector,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) CardReviewService {
	if stores.Cards == nil || stores.Topics == nil || stores.CardStates == nil ||
		stores.Reviews == nil || stores.TopicStates == nil {
		panic("stores cannot be nil")
	}
	if tx == nil {
		panic("transactor cannot be nil")
	}
	if grader == nil {
		panic("grader cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if selector == nil {
		panic("selector cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &cardReviewServiceImpl{
		stores:     stores,
		tx:         tx,
		grader:     grader,
		srsService: srsService,
		selector:   selector,
		emitter:    emitter,
		locker:     defaultLocker(),
		observer:   noopObserver{},
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectNextCard implements CardReviewService.SelectNextCard.
func (s *cardReviewServiceImpl) SelectNextCard(
	ctx context.Context,
	userID, documentID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.requireDocument(ctx, documentID); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, NewServiceError(OpSelectNextCard, "failed to load document", err)
	}

	sel, err := s.selector.Select(ctx, userID, documentID, s.now())
	if err != nil {
		log.Error("failed to select next card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("document_id", documentID.String()))
		return nil, NewServiceError(OpSelectNextCard, "failed to select card", err)
	}
	if sel == nil {
		log.Debug("no card available",
			slog.String("user_id", userID.String()),
			slog.String("document_id", documentID.String()))
		s.observer.ObserveNoCandidates()
		return nil, nil
	}

	s.observer.ObserveSelection(string(sel.Stage), sel.Struggling)
	return sel.Card, nil
}

// SubmitAnswer implements CardReviewService.SubmitAnswer.
func (s *cardReviewServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	answer ReviewAnswer,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil || answer.LatencyMS < 0 {
		log.Warn("invalid review submission",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.Int64("latency_ms", answer.LatencyMS))
		return nil, ErrInvalidAnswer
	}

	result, card, err := s.recordReview(ctx, userID, cardID, answer)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			log.Warn("card not found for review",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, err
		}
		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	s.emitReviewRecorded(ctx, log, card, result)

	log.Debug("successfully processed review answer",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("score", result.Score),
		slog.Float64("mastery", result.State.Mastery),
		slog.Float64("interval_days", result.State.IntervalDays))

	return result, nil
}

// recordReview grades the answer and commits the new state and the review
// while holding the card lock.
func (s *cardReviewServiceImpl) recordReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	answer ReviewAnswer,
) (*ReviewResult, *domain.Card, error) {
	unlock, err := s.locker.Lock(ctx, cardLockKey(userID, cardID))
	if err != nil {
		return nil, nil, NewServiceError(OpSubmitAnswer, "failed to acquire card lock", err)
	}
	defer unlock()

	card, err := s.stores.Cards.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrCardNotFound
		}
		return nil, nil, NewServiceError(OpSubmitAnswer, "failed to load card", err)
	}

	started := time.Now()
	grade, err := s.grader.Grade(ctx, card, answer.Answer)
	if err != nil {
		return nil, nil, NewServiceError(OpSubmitAnswer, "failed to grade answer", err)
	}
	gradingTime := time.Since(started)

	now := s.now()
	var (
		updated *domain.CardMemoryState
		review  *domain.Review
	)
	err = s.tx.Transact(ctx, func(ctx context.Context, st store.Stores) error {
		state, err := st.CardStates.GetForUpdate(ctx, userID, cardID)
		isNew := false
		if errors.Is(err, store.ErrNotFound) {
			state = domain.NewCardMemoryState(userID, cardID)
			isNew = true
		} else if err != nil {
			return fmt.Errorf("failed to load card state: %w", err)
		}

		updated, err = s.srsService.Apply(state, grade.Score, now)
		if err != nil {
			return fmt.Errorf("failed to apply review: %w", err)
		}

		if isNew {
			err = st.CardStates.Create(ctx, updated)
		} else {
			err = st.CardStates.Update(ctx, updated)
		}
		if err != nil {
			return fmt.Errorf("failed to save card state: %w", err)
		}

		review, err = domain.NewReview(userID, cardID, grade.Score, answer.LatencyMS, now)
		if err != nil {
			return fmt.Errorf("failed to build review: %w", err)
		}
		if err := st.Reviews.Create(ctx, review); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, NewServiceError(OpSubmitAnswer, "failed to record review", err)
	}

	s.observer.ObserveReview(string(card.Type), grade.Score, gradingTime)

	return &ReviewResult{
		Score:         grade.Score,
		Explanation:   grade.Explanation,
		ReviewID:      review.ID,
		CorrectAnswer: card.Back,
		State:         updated,
	}, card, nil
}

// emitReviewRecorded publishes the review. Handler failures leave the topic
// aggregate stale until the next review and are only logged.
func (s *cardReviewServiceImpl) emitReviewRecorded(
	ctx context.Context,
	log *slog.Logger,
	card *domain.Card,
	result *ReviewResult,
) {
	event, err := events.NewEvent(events.TypeReviewRecorded, events.ReviewRecorded{
		ReviewID:     result.ReviewID,
		UserID:       result.State.UserID,
		CardID:       card.ID,
		MicroTopicID: card.MicroTopicID,
		Score:        result.Score,
		ReviewedAt:   *result.State.LastReviewAt,
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		s.observer.ObserveRecomputeFailure()
		log.Warn("topic aggregate not refreshed after review",
			slog.String("error", err.Error()),
			slog.String("user_id", result.State.UserID.String()),
			slog.String("card_id", card.ID.String()))
	}
}

// PostponeCard implements CardReviewService.PostponeCard.
func (s *cardReviewServiceImpl) PostponeCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	days int,
) (*domain.CardMemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days <= 0 {
		return nil, ErrInvalidAnswer
	}

	unlock, err := s.locker.Lock(ctx, cardLockKey(userID, cardID))
	if err != nil {
		return nil, NewServiceError(OpPostponeCard, "failed to acquire card lock", err)
	}
	defer unlock()

	if _, err := s.stores.Cards.GetByID(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, NewServiceError(OpPostponeCard, "failed to load card", err)
	}

	var updated *domain.CardMemoryState
	err = s.tx.Transact(ctx, func(ctx context.Context, st store.Stores) error {
		state, err := st.CardStates.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCardNotReviewed
			}
			return fmt.Errorf("failed to load card state: %w", err)
		}
		updated, err = s.srsService.Postpone(state, days, s.now())
		if err != nil {
			return fmt.Errorf("failed to postpone card: %w", err)
		}
		return st.CardStates.Update(ctx, updated)
	})
	if err != nil {
		if errors.Is(err, ErrCardNotReviewed) {
			return nil, ErrCardNotReviewed
		}
		log.Error("failed to postpone card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewServiceError(OpPostponeCard, "failed to save card state", err)
	}

	log.Debug("card postponed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("days", days))
	return updated, nil
}

// GetTopicState implements CardReviewService.GetTopicState.
func (s *cardReviewServiceImpl) GetTopicState(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*domain.TopicMemoryState, error) {
	if _, err := s.stores.Topics.GetMicroTopic(ctx, topicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, NewServiceError(OpGetTopicState, "failed to load topic", err)
	}

	state, err := s.stores.TopicStates.Get(ctx, userID, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewTopicMemoryState(userID, topicID), nil
		}
		return nil, NewServiceError(OpGetTopicState, "failed to load topic state", err)
	}
	return state, nil
}

// GetDocumentProgress implements CardReviewService.GetDocumentProgress.
func (s *cardReviewServiceImpl) GetDocumentProgress(
	ctx context.Context,
	userID, documentID uuid.UUID,
) (*DocumentProgress, error) {
	if err := s.requireDocument(ctx, documentID); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, NewServiceError(OpGetDocumentProgress, "failed to load document", err)
	}

	cards, err := s.stores.Cards.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, NewServiceError(OpGetDocumentProgress, "failed to list cards", err)
	}
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	byCard, err := s.stores.CardStates.ListForCards(ctx, userID, ids)
	if err != nil {
		return nil, NewServiceError(OpGetDocumentProgress, "failed to load card states", err)
	}

	states := make([]*domain.CardMemoryState, 0, len(byCard))
	reviewed := 0
	for _, st := range byCard {
		states = append(states, st)
		if st.Repetitions > 0 {
			reviewed++
		}
	}

	return &DocumentProgress{
		DocumentID:     documentID,
		MasteryPercent: mastery.DocumentProgress(states, len(cards)),
		CardsTotal:     len(cards),
		CardsReviewed:  reviewed,
	}, nil
}

func (s *cardReviewServiceImpl) requireDocument(ctx context.Context, documentID uuid.UUID) error {
	if _, err := s.stores.Topics.GetDocument(ctx, documentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}
