package card_review_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/domain/srs"
	"github.com/phrazzld/scry-adaptive/internal/events"
	"github.com/phrazzld/scry-adaptive/internal/grading"
	"github.com/phrazzld/scry-adaptive/internal/mastery"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/selection"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
	"github.com/phrazzld/scry-adaptive/internal/store"
	"github.com/phrazzld/scry-adaptive/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t        *testing.T
	store    *memstore.Store
	svc      card_review.CardReviewService
	logs     *logger.TestLogBuffer
	observer *recordingObserver
	userID   uuid.UUID
	docID    uuid.UUID
	topicID  uuid.UUID

	mu  sync.Mutex
	now time.Time
}

type harnessConfig struct {
	recomputer card_review.TopicRecomputer
	tx         func(*memstore.Store) store.Transactor
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		store:    memstore.New(),
		observer: &recordingObserver{},
		userID:   uuid.New(),
		docID:    uuid.New(),
		topicID:  uuid.New(),
		now:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, h.store.AddDocument(&domain.Document{ID: h.docID, Title: "Cell biology"}))
	require.NoError(t, h.store.AddMicroTopic(&domain.MicroTopic{ID: h.topicID, DocumentID: h.docID, Name: "Organelles"}))

	logs, l := logger.NewTestLogger(t)
	h.logs = logs

	stores := h.store.Stores()
	agg := mastery.NewAggregator(stores.Cards, stores.CardStates, stores.Reviews, stores.TopicStates, 0, l)
	recomputer := cfg.recomputer
	if recomputer == nil {
		recomputer = agg
	}

	bus := events.NewBus(l)
	bus.Subscribe(events.TypeReviewRecorded, card_review.NewTopicRecomputeHandler(recomputer, l))

	var tx store.Transactor = h.store
	if cfg.tx != nil {
		tx = cfg.tx(h.store)
	}

	selector := selection.NewSelector(stores, agg, selection.DefaultConfig(), rand.New(rand.NewSource(1)), l)
	h.svc = card_review.NewCardReviewService(
		stores,
		tx,
		grading.NewDispatcher(nil),
		srs.NewDefaultService(),
		selector,
		bus,
		l,
		card_review.WithObserver(h.observer),
		card_review.WithClock(h.clock),
	)
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) card(cardType domain.CardType, back string, difficulty float64) *domain.Card {
	h.t.Helper()
	c, err := domain.NewCard(h.docID, &h.topicID, cardType, "front", back, difficulty)
	require.NoError(h.t, err)
	require.NoError(h.t, h.store.AddCard(c))
	return c
}

func (h *harness) submit(cardID uuid.UUID, answer string) (*card_review.ReviewResult, error) {
	return h.svc.SubmitAnswer(context.Background(), h.userID, cardID, card_review.ReviewAnswer{
		Answer:    answer,
		LatencyMS: 1500,
	})
}

func (h *harness) cardState(cardID uuid.UUID) (*domain.CardMemoryState, error) {
	return h.store.Stores().CardStates.Get(context.Background(), h.userID, cardID)
}

func (h *harness) reviewCount() int {
	h.t.Helper()
	scores, err := h.store.Stores().Reviews.ScoresForTopic(context.Background(), h.userID, h.topicID)
	require.NoError(h.t, err)
	return len(scores)
}

type recordingObserver struct {
	mu                sync.Mutex
	reviews           []int
	stages            []string
	noCandidates      int
	recomputeFailures int
}

func (o *recordingObserver) ObserveReview(_ string, score int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reviews = append(o.reviews, score)
}

func (o *recordingObserver) ObserveSelection(stage string, _ bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) ObserveNoCandidates() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.noCandidates++
}

func (o *recordingObserver) ObserveRecomputeFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recomputeFailures++
}

type failingRecomputer struct{}

func (failingRecomputer) Recompute(context.Context, uuid.UUID, uuid.UUID, time.Time) (*domain.TopicMemoryState, error) {
	return nil, errors.New("aggregate store offline")
}

// failingTransactor never runs the unit of work.
type failingTransactor struct{}

func (failingTransactor) Transact(context.Context, store.TransactFn) error {
	return errors.New("connection reset")
}

// failingReviews makes review inserts fail inside a real transaction.
type failingReviews struct {
	store.ReviewStore
}

func (failingReviews) Create(context.Context, *domain.Review) error {
	return errors.New("disk full")
}

type reviewFailTransactor struct {
	inner store.Transactor
}

func (r reviewFailTransactor) Transact(ctx context.Context, fn store.TransactFn) error {
	return r.inner.Transact(ctx, func(ctx context.Context, st store.Stores) error {
		st.Reviews = failingReviews{st.Reviews}
		return fn(ctx, st)
	})
}
