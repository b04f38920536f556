package mastery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// Aggregator recomputes and persists topic aggregates. Recomputation is
// always total, never incremental.
type Aggregator struct {
	cards        store.CardStore
	cardStates   store.CardStateStore
	reviews      store.ReviewStore
	topicStates  store.TopicStateStore
	recentWindow int
	logger       *slog.Logger
}

// NewAggregator creates an Aggregator. A non-positive window uses DefaultRecentWindow.
func NewAggregator(
	cards store.CardStore,
	cardStates store.CardStateStore,
	reviews store.ReviewStore,
	topicStates store.TopicStateStore,
	recentWindow int,
	log *slog.Logger,
) *Aggregator {
	if cards == nil || cardStates == nil || reviews == nil || topicStates == nil {
		panic("aggregator stores cannot be nil")
	}
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		cards:        cards,
		cardStates:   cardStates,
		reviews:      reviews,
		topicStates:  topicStates,
		recentWindow: recentWindow,
		logger:       log.With(slog.String("component", "topic_aggregator")),
	}
}

// Snapshot loads the topic's cards paired with the user's memory states.
func (a *Aggregator) Snapshot(
	ctx context.Context,
	userID, topicID uuid.UUID,
) ([]CardSnapshot, error) {
	cards, err := a.cards.ListByMicroTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	states, err := a.cardStates.ListForCards(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load card states: %w", err)
	}

	snaps := make([]CardSnapshot, len(cards))
	for i, c := range cards {
		snaps[i] = CardSnapshot{Card: c, State: states[c.ID]}
	}
	return snaps, nil
}

// Compute derives the aggregate without persisting it.
func (a *Aggregator) Compute(
	ctx context.Context,
	userID, topicID uuid.UUID,
	now time.Time,
) (*domain.TopicMemoryState, error) {
	snaps, err := a.Snapshot(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}
	recent, err := a.reviews.RecentScoresForTopic(ctx, userID, topicID, a.recentWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}
	all, err := a.reviews.ScoresForTopic(ctx, userID, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review history: %w", err)
	}
	return Compute(userID, topicID, snaps, recent, all, now), nil
}

// Recompute derives the aggregate and stores it.
func (a *Aggregator) Recompute(
	ctx context.Context,
	userID, topicID uuid.UUID,
	now time.Time,
) (*domain.TopicMemoryState, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	state, err := a.Compute(ctx, userID, topicID, now)
	if err != nil {
		return nil, err
	}
	if err := a.topicStates.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save topic state: %w", err)
	}

	log.Debug("topic state recomputed",
		slog.String("user_id", userID.String()),
		slog.String("micro_topic_id", topicID.String()),
		slog.Float64("knowledge_score", state.KnowledgeScore),
		slog.Float64("struggle_weight", state.StruggleWeight),
		slog.Int("total_reviews", state.TotalReviews))

	return state, nil
}
