package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// CardStore provides read access to authored cards. The engine never writes cards.
type CardStore interface {
	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDocument returns every card of a document. An unknown document
	// yields an empty slice, not an error.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*domain.Card, error)

	// ListByMicroTopic returns the cards linked to a micro topic.
	ListByMicroTopic(ctx context.Context, microTopicID uuid.UUID) ([]*domain.Card, error)

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}

// TopicStore resolves documents and their topic hierarchy.
type TopicStore interface {
	// GetDocument returns ErrDocumentNotFound for an unknown ID.
	GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error)

	// GetMicroTopic returns ErrTopicNotFound for an unknown ID.
	GetMicroTopic(ctx context.Context, id uuid.UUID) (*domain.MicroTopic, error)

	// ListMicroTopicsByDocument returns the micro topics of a document.
	ListMicroTopicsByDocument(ctx context.Context, documentID uuid.UUID) ([]*domain.MicroTopic, error)

	WithTx(tx *sql.Tx) TopicStore
}
