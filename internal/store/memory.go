package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// CardStateStore persists per-user card memory state.
type CardStateStore interface {
	// Get returns ErrCardStateNotFound if the user has never reviewed the card.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardMemoryState, error)

	// GetForUpdate is Get with a row-level lock. It must run inside a
	// transaction to have any effect.
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardMemoryState, error)

	// ListForCards returns the user's states for the given cards keyed by
	// card ID. Cards without a state are absent from the map.
	ListForCards(
		ctx context.Context,
		userID uuid.UUID,
		cardIDs []uuid.UUID,
	) (map[uuid.UUID]*domain.CardMemoryState, error)

	// Create inserts a new state. Returns ErrCardStateExists on conflict.
	Create(ctx context.Context, state *domain.CardMemoryState) error

	// Update replaces an existing state. Returns ErrCardStateNotFound if absent.
	Update(ctx context.Context, state *domain.CardMemoryState) error

	WithTx(tx *sql.Tx) CardStateStore
}

// ReviewStore is the append-only review log.
type ReviewStore interface {
	// Create appends a review.
	Create(ctx context.Context, review *domain.Review) error

	// RecentScoresForTopic returns up to limit scores of the user's most
	// recent reviews of cards in the topic, newest first.
	RecentScoresForTopic(
		ctx context.Context,
		userID, microTopicID uuid.UUID,
		limit int,
	) ([]int, error)

	// ScoresForTopic returns every score the user has received on cards in
	// the topic.
	ScoresForTopic(ctx context.Context, userID, microTopicID uuid.UUID) ([]int, error)

	WithTx(tx *sql.Tx) ReviewStore
}

// TopicStateStore persists derived per-user topic aggregates.
type TopicStateStore interface {
	// Get returns ErrTopicStateNotFound if no aggregate has been computed yet.
	Get(ctx context.Context, userID, microTopicID uuid.UUID) (*domain.TopicMemoryState, error)

	// ListForDocument returns the user's aggregates for topics of the document.
	ListForDocument(
		ctx context.Context,
		userID, documentID uuid.UUID,
	) ([]*domain.TopicMemoryState, error)

	// Upsert inserts or fully replaces the aggregate.
	Upsert(ctx context.Context, state *domain.TopicMemoryState) error

	WithTx(tx *sql.Tx) TopicStateStore
}
