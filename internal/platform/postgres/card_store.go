package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

const cardColumns = `id, document_id, micro_topic_id, card_type, front, back,
	correct_option_index, topic, base_difficulty`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		c        domain.Card
		topicID  uuid.NullUUID
		cardType string
		option   sql.NullInt32
	)
	if err := row.Scan(
		&c.ID, &c.DocumentID, &topicID, &cardType, &c.Front, &c.Back,
		&option, &c.Topic, &c.BaseDifficulty,
	); err != nil {
		return nil, err
	}
	c.Type = domain.CardType(cardType)
	if topicID.Valid {
		id := topicID.UUID
		c.MicroTopicID = &id
	}
	if option.Valid {
		idx := int(option.Int32)
		c.CorrectOptionIndex = &idx
	}
	return &c, nil
}

// PostgresCardStore implements store.CardStore.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	card, err := scanCard(row)
	if err != nil {
		mapped := MapError(err, store.ErrCardNotFound)
		if mapped != store.ErrCardNotFound {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card",
				slog.String("card_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, mapped
	}
	return card, nil
}

// ListByDocument implements store.CardStore.ListByDocument
func (s *PostgresCardStore) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*domain.Card, error) {
	return s.list(ctx, `SELECT `+cardColumns+` FROM cards WHERE document_id = $1 ORDER BY created_at, id`, documentID)
}

// ListByMicroTopic implements store.CardStore.ListByMicroTopic
func (s *PostgresCardStore) ListByMicroTopic(ctx context.Context, microTopicID uuid.UUID) ([]*domain.Card, error) {
	return s.list(ctx, `SELECT `+cardColumns+` FROM cards WHERE micro_topic_id = $1 ORDER BY created_at, id`, microTopicID)
}

func (s *PostgresCardStore) list(ctx context.Context, query string, arg uuid.UUID) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query cards",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query cards: %w", MapError(err, nil))
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

// PostgresTopicStore implements store.TopicStore.
type PostgresTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicStore creates a PostgresTopicStore.
func NewPostgresTopicStore(db store.DBTX, logger *slog.Logger) *PostgresTopicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
	}
}

var _ store.TopicStore = (*PostgresTopicStore)(nil)

// GetDocument implements store.TopicStore.GetDocument
func (s *PostgresTopicStore) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Title, &doc.CreatedAt)
	if err != nil {
		return nil, MapError(err, store.ErrDocumentNotFound)
	}
	return &doc, nil
}

// GetMicroTopic implements store.TopicStore.GetMicroTopic
func (s *PostgresTopicStore) GetMicroTopic(ctx context.Context, id uuid.UUID) (*domain.MicroTopic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, macro_topic_id, document_id, name FROM micro_topics WHERE id = $1`, id)
	topic, err := scanMicroTopic(row)
	if err != nil {
		return nil, MapError(err, store.ErrTopicNotFound)
	}
	return topic, nil
}

// ListMicroTopicsByDocument implements store.TopicStore.ListMicroTopicsByDocument
func (s *PostgresTopicStore) ListMicroTopicsByDocument(
	ctx context.Context,
	documentID uuid.UUID,
) ([]*domain.MicroTopic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, macro_topic_id, document_id, name
		FROM micro_topics
		WHERE document_id = $1
		ORDER BY name, id`, documentID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query micro topics",
			slog.String("document_id", documentID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query micro topics: %w", MapError(err, nil))
	}
	defer func() { _ = rows.Close() }()

	topics := []*domain.MicroTopic{}
	for rows.Next() {
		topic, err := scanMicroTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan micro topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate micro topics: %w", err)
	}
	return topics, nil
}

func scanMicroTopic(row rowScanner) (*domain.MicroTopic, error) {
	var (
		t       domain.MicroTopic
		macroID uuid.NullUUID
	)
	if err := row.Scan(&t.ID, &macroID, &t.DocumentID, &t.Name); err != nil {
		return nil, err
	}
	t.MacroTopicID = macroID.UUID
	return &t, nil
}

// WithTx implements store.TopicStore.WithTx
func (s *PostgresTopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	return &PostgresTopicStore{db: tx, logger: s.logger}
}
