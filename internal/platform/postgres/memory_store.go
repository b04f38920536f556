package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

const cardStateColumns = `user_id, card_id, mastery, ease_factor, repetitions,
	interval_days, last_score, next_due_at, last_review_at`

func scanCardState(row rowScanner) (*domain.CardMemoryState, error) {
	var (
		s          domain.CardMemoryState
		lastScore  sql.NullInt32
		nextDue    sql.NullTime
		lastReview sql.NullTime
	)
	if err := row.Scan(
		&s.UserID, &s.CardID, &s.Mastery, &s.EaseFactor, &s.Repetitions,
		&s.IntervalDays, &lastScore, &nextDue, &lastReview,
	); err != nil {
		return nil, err
	}
	if lastScore.Valid {
		v := int(lastScore.Int32)
		s.LastScore = &v
	}
	if nextDue.Valid {
		t := nextDue.Time.UTC()
		s.NextDueAt = &t
	}
	if lastReview.Valid {
		t := lastReview.Time.UTC()
		s.LastReviewAt = &t
	}
	return &s, nil
}

// uuidArray renders ids as a PostgreSQL array literal for use with $n::uuid[].
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// PostgresCardStateStore implements store.CardStateStore.
type PostgresCardStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStateStore creates a PostgresCardStateStore.
func NewPostgresCardStateStore(db store.DBTX, logger *slog.Logger) *PostgresCardStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCardStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_state_store")),
	}
}

var _ store.CardStateStore = (*PostgresCardStateStore)(nil)

// Get implements store.CardStateStore.Get
func (s *PostgresCardStateStore) Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardMemoryState, error) {
	return s.get(ctx, `SELECT `+cardStateColumns+`
		FROM card_memory_states WHERE user_id = $1 AND card_id = $2`, userID, cardID)
}

// GetForUpdate implements store.CardStateStore.GetForUpdate. The row stays
// locked until the surrounding transaction ends.
func (s *PostgresCardStateStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardMemoryState, error) {
	return s.get(ctx, `SELECT `+cardStateColumns+`
		FROM card_memory_states WHERE user_id = $1 AND card_id = $2
		FOR UPDATE`, userID, cardID)
}

func (s *PostgresCardStateStore) get(
	ctx context.Context,
	query string,
	userID, cardID uuid.UUID,
) (*domain.CardMemoryState, error) {
	state, err := scanCardState(s.db.QueryRowContext(ctx, query, userID, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardStateNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card state",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err, store.ErrCardStateNotFound)
	}
	return state, nil
}

// ListForCards implements store.CardStateStore.ListForCards
func (s *PostgresCardStateStore) ListForCards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) (map[uuid.UUID]*domain.CardMemoryState, error) {
	out := make(map[uuid.UUID]*domain.CardMemoryState, len(cardIDs))
	if len(cardIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+cardStateColumns+`
		FROM card_memory_states
		WHERE user_id = $1 AND card_id = ANY($2::uuid[])`, userID, uuidArray(cardIDs))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query card states",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query card states: %w", MapError(err, nil))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		state, err := scanCardState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card state: %w", err)
		}
		out[state.CardID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card states: %w", err)
	}
	return out, nil
}

// Create implements store.CardStateStore.Create
func (s *PostgresCardStateStore) Create(ctx context.Context, state *domain.CardMemoryState) error {
	if err := state.Validate(); err != nil {
		return store.NewStoreError("card_memory_state", "create", "invalid state", fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO card_memory_states (`+cardStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		state.UserID, state.CardID, state.Mastery, state.EaseFactor, state.Repetitions,
		state.IntervalDays, state.LastScore, state.NextDueAt, state.LastReviewAt,
	)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return store.ErrCardStateExists
		case IsForeignKeyViolation(err):
			return store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create card state",
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	return nil
}

// Update implements store.CardStateStore.Update
func (s *PostgresCardStateStore) Update(ctx context.Context, state *domain.CardMemoryState) error {
	if err := state.Validate(); err != nil {
		return store.NewStoreError("card_memory_state", "update", "invalid state", fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE card_memory_states
		SET mastery = $3, ease_factor = $4, repetitions = $5, interval_days = $6,
			last_score = $7, next_due_at = $8, last_review_at = $9
		WHERE user_id = $1 AND card_id = $2`,
		state.UserID, state.CardID, state.Mastery, state.EaseFactor, state.Repetitions,
		state.IntervalDays, state.LastScore, state.NextDueAt, state.LastReviewAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card state",
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	return checkRowsAffected(result, store.ErrCardStateNotFound)
}

// WithTx implements store.CardStateStore.WithTx
func (s *PostgresCardStateStore) WithTx(tx *sql.Tx) store.CardStateStore {
	return &PostgresCardStateStore{db: tx, logger: s.logger}
}

// PostgresReviewStore implements store.ReviewStore.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a PostgresReviewStore.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Create implements store.ReviewStore.Create
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return store.NewStoreError("review", "create", "invalid review", fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, card_id, reviewed_at, score, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.UserID, review.CardID, review.Timestamp, review.Score, review.LatencyMS,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create review",
			slog.String("review_id", review.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	return nil
}

// RecentScoresForTopic implements store.ReviewStore.RecentScoresForTopic
func (s *PostgresReviewStore) RecentScoresForTopic(
	ctx context.Context,
	userID, microTopicID uuid.UUID,
	limit int,
) ([]int, error) {
	if limit <= 0 {
		return []int{}, nil
	}
	return s.scores(ctx, `
		SELECT r.score
		FROM reviews r
		JOIN cards c ON c.id = r.card_id
		WHERE r.user_id = $1 AND c.micro_topic_id = $2
		ORDER BY r.reviewed_at DESC, r.id DESC
		LIMIT $3`, userID, microTopicID, limit)
}

// ScoresForTopic implements store.ReviewStore.ScoresForTopic
func (s *PostgresReviewStore) ScoresForTopic(ctx context.Context, userID, microTopicID uuid.UUID) ([]int, error) {
	return s.scores(ctx, `
		SELECT r.score
		FROM reviews r
		JOIN cards c ON c.id = r.card_id
		WHERE r.user_id = $1 AND c.micro_topic_id = $2
		ORDER BY r.reviewed_at DESC, r.id DESC`, userID, microTopicID)
}

func (s *PostgresReviewStore) scores(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query review scores",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query review scores: %w", MapError(err, nil))
	}
	defer func() { _ = rows.Close() }()

	scores := []int{}
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("failed to scan review score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review scores: %w", err)
	}
	return scores, nil
}

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{db: tx, logger: s.logger}
}

const topicStateColumns = `user_id, micro_topic_id, knowledge_score, cards_seen,
	cards_mastered, struggle_weight, avg_card_score, total_reviews, last_practice_at`

func scanTopicState(row rowScanner) (*domain.TopicMemoryState, error) {
	var (
		t         domain.TopicMemoryState
		practiced sql.NullTime
	)
	if err := row.Scan(
		&t.UserID, &t.MicroTopicID, &t.KnowledgeScore, &t.CardsSeen,
		&t.CardsMastered, &t.StruggleWeight, &t.AvgCardScore, &t.TotalReviews, &practiced,
	); err != nil {
		return nil, err
	}
	if practiced.Valid {
		p := practiced.Time.UTC()
		t.LastPracticeAt = &p
	}
	return &t, nil
}

// PostgresTopicStateStore implements store.TopicStateStore.
type PostgresTopicStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicStateStore creates a PostgresTopicStateStore.
func NewPostgresTopicStateStore(db store.DBTX, logger *slog.Logger) *PostgresTopicStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTopicStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_state_store")),
	}
}

var _ store.TopicStateStore = (*PostgresTopicStateStore)(nil)

// Get implements store.TopicStateStore.Get
func (s *PostgresTopicStateStore) Get(
	ctx context.Context,
	userID, microTopicID uuid.UUID,
) (*domain.TopicMemoryState, error) {
	state, err := scanTopicState(s.db.QueryRowContext(ctx, `SELECT `+topicStateColumns+`
		FROM topic_memory_states WHERE user_id = $1 AND micro_topic_id = $2`, userID, microTopicID))
	if err != nil {
		return nil, MapError(err, store.ErrTopicStateNotFound)
	}
	return state, nil
}

// ListForDocument implements store.TopicStateStore.ListForDocument
func (s *PostgresTopicStateStore) ListForDocument(
	ctx context.Context,
	userID, documentID uuid.UUID,
) ([]*domain.TopicMemoryState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts.user_id, ts.micro_topic_id, ts.knowledge_score, ts.cards_seen,
			ts.cards_mastered, ts.struggle_weight, ts.avg_card_score, ts.total_reviews,
			ts.last_practice_at
		FROM topic_memory_states ts
		JOIN micro_topics mt ON mt.id = ts.micro_topic_id
		WHERE ts.user_id = $1 AND mt.document_id = $2
		ORDER BY ts.micro_topic_id`, userID, documentID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query topic states",
			slog.String("user_id", userID.String()),
			slog.String("document_id", documentID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query topic states: %w", MapError(err, nil))
	}
	defer func() { _ = rows.Close() }()

	states := []*domain.TopicMemoryState{}
	for rows.Next() {
		state, err := scanTopicState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topic states: %w", err)
	}
	return states, nil
}

// Upsert implements store.TopicStateStore.Upsert
func (s *PostgresTopicStateStore) Upsert(ctx context.Context, state *domain.TopicMemoryState) error {
	if state.UserID == uuid.Nil || state.MicroTopicID == uuid.Nil {
		return fmt.Errorf("%w: topic state requires user and topic", store.ErrInvalidEntity)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topic_memory_states (`+topicStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, micro_topic_id) DO UPDATE SET
			knowledge_score = EXCLUDED.knowledge_score,
			cards_seen = EXCLUDED.cards_seen,
			cards_mastered = EXCLUDED.cards_mastered,
			struggle_weight = EXCLUDED.struggle_weight,
			avg_card_score = EXCLUDED.avg_card_score,
			total_reviews = EXCLUDED.total_reviews,
			last_practice_at = EXCLUDED.last_practice_at`,
		state.UserID, state.MicroTopicID, state.KnowledgeScore, state.CardsSeen,
		state.CardsMastered, state.StruggleWeight, state.AvgCardScore, state.TotalReviews,
		state.LastPracticeAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrTopicNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert topic state",
			slog.String("user_id", state.UserID.String()),
			slog.String("micro_topic_id", state.MicroTopicID.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	return nil
}

// WithTx implements store.TopicStateStore.WithTx
func (s *PostgresTopicStateStore) WithTx(tx *sql.Tx) store.TopicStateStore {
	return &PostgresTopicStateStore{db: tx, logger: s.logger}
}
