package memstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	s       *Store
	docID   uuid.UUID
	topicID uuid.UUID
	cards   []*domain.Card
}

func newFixture(t *testing.T, cardCount int) fixture {
	t.Helper()
	s := New()
	docID, macroID, topicID := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, s.AddDocument(&domain.Document{ID: docID, Title: "Economics"}))
	require.NoError(t, s.AddMacroTopic(&domain.MacroTopic{ID: macroID, DocumentID: docID, Name: "Macro"}))
	require.NoError(t, s.AddMicroTopic(&domain.MicroTopic{ID: topicID, MacroTopicID: macroID, Name: "GDP"}))

	f := fixture{s: s, docID: docID, topicID: topicID}
	for i := 0; i < cardCount; i++ {
		card, err := domain.NewCard(docID, &topicID, domain.CardTypeDefinition, "front", "back", 0.5)
		require.NoError(t, err)
		require.NoError(t, s.AddCard(card))
		f.cards = append(f.cards, card)
	}
	return f
}

func TestCardStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 3)
	ctx := context.Background()
	cards := f.s.Stores().Cards

	got, err := cards.GetByID(ctx, f.cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.cards[0], got)
	assert.NotSame(t, f.cards[0], got)

	_, err = cards.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	byDoc, err := cards.ListByDocument(ctx, f.docID)
	require.NoError(t, err)
	require.Len(t, byDoc, 3)
	for i := range byDoc {
		assert.Equal(t, f.cards[i].ID, byDoc[i].ID, "insertion order is kept")
	}

	byTopic, err := cards.ListByMicroTopic(ctx, f.topicID)
	require.NoError(t, err)
	assert.Len(t, byTopic, 3)

	none, err := cards.ListByDocument(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTopicStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0)
	ctx := context.Background()
	topics := f.s.Stores().Topics

	topic, err := topics.GetMicroTopic(ctx, f.topicID)
	require.NoError(t, err)
	assert.Equal(t, f.docID, topic.DocumentID, "document is inherited from the macro topic")

	_, err = topics.GetMicroTopic(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrTopicNotFound)
	_, err = topics.GetDocument(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)

	list, err := topics.ListMicroTopicsByDocument(ctx, f.docID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCardStateStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)
	ctx := context.Background()
	states := f.s.Stores().CardStates
	userID := uuid.New()

	_, err := states.Get(ctx, userID, f.cards[0].ID)
	assert.ErrorIs(t, err, store.ErrCardStateNotFound)

	st := domain.NewCardMemoryState(userID, f.cards[0].ID)
	require.NoError(t, states.Create(ctx, st))
	assert.ErrorIs(t, states.Create(ctx, st), store.ErrCardStateExists)

	st.Mastery = 0.4
	require.NoError(t, states.Update(ctx, st))
	got, err := states.Get(ctx, userID, f.cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0.4, got.Mastery)

	missing := domain.NewCardMemoryState(userID, f.cards[1].ID)
	assert.ErrorIs(t, states.Update(ctx, missing), store.ErrCardStateNotFound)

	bad := domain.NewCardMemoryState(userID, f.cards[1].ID)
	bad.EaseFactor = 1.0
	assert.ErrorIs(t, states.Create(ctx, bad), store.ErrInvalidEntity)

	byCard, err := states.ListForCards(ctx, userID, []uuid.UUID{f.cards[0].ID, f.cards[1].ID})
	require.NoError(t, err)
	assert.Len(t, byCard, 1)
	assert.Contains(t, byCard, f.cards[0].ID)
}

func TestReviewStoreScores(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)
	ctx := context.Background()
	reviews := f.s.Stores().Reviews
	userID, otherUser := uuid.New(), uuid.New()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i, score := range []int{0, 1, 2, 3, 3} {
		r, err := domain.NewReview(userID, f.cards[0].ID, score, 100, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, reviews.Create(ctx, r))
	}
	r, err := domain.NewReview(otherUser, f.cards[0].ID, 0, 100, base)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(ctx, r))

	recent, err := reviews.RecentScoresForTopic(ctx, userID, f.topicID, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 2}, recent)

	all, err := reviews.ScoresForTopic(ctx, userID, f.topicID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 3}, all)

	other, err := reviews.ScoresForTopic(ctx, otherUser, f.topicID)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, other)
}

func TestTopicStateStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0)
	ctx := context.Background()
	topicStates := f.s.Stores().TopicStates
	userID := uuid.New()

	_, err := topicStates.Get(ctx, userID, f.topicID)
	assert.ErrorIs(t, err, store.ErrTopicStateNotFound)

	st := domain.NewTopicMemoryState(userID, f.topicID)
	st.KnowledgeScore = 42
	require.NoError(t, topicStates.Upsert(ctx, st))
	st.KnowledgeScore = 55
	require.NoError(t, topicStates.Upsert(ctx, st))

	got, err := topicStates.Get(ctx, userID, f.topicID)
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.KnowledgeScore)

	list, err := topicStates.ListForDocument(ctx, userID, f.docID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, topicStates.Upsert(ctx, domain.NewTopicMemoryState(userID, uuid.New())), store.ErrTopicNotFound)
}

func TestTransactCommitsAndRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)
	ctx := context.Background()
	userID := uuid.New()
	cardID := f.cards[0].ID

	boom := errors.New("review write failed")
	err := f.s.Transact(ctx, func(ctx context.Context, s store.Stores) error {
		if err := s.CardStates.Create(ctx, domain.NewCardMemoryState(userID, cardID)); err != nil {
			return err
		}
		// Visible inside the unit of work
		if _, err := s.CardStates.Get(ctx, userID, cardID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = f.s.Stores().CardStates.Get(ctx, userID, cardID)
	assert.ErrorIs(t, err, store.ErrCardStateNotFound, "rolled back state must not be visible")

	err = f.s.Transact(ctx, func(ctx context.Context, s store.Stores) error {
		if err := s.CardStates.Create(ctx, domain.NewCardMemoryState(userID, cardID)); err != nil {
			return err
		}
		r, err := domain.NewReview(userID, cardID, 2, 10, time.Now())
		if err != nil {
			return err
		}
		return s.Reviews.Create(ctx, r)
	})
	require.NoError(t, err)

	_, err = f.s.Stores().CardStates.Get(ctx, userID, cardID)
	assert.NoError(t, err)
	all, err := f.s.Stores().Reviews.ScoresForTopic(ctx, userID, f.topicID)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, all)
}

func TestTransactCanceledContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	userID := uuid.New()

	err := f.s.Transact(ctx, func(ctx context.Context, s store.Stores) error {
		cancel()
		return s.CardStates.Create(ctx, domain.NewCardMemoryState(userID, f.cards[0].ID))
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = f.s.Stores().CardStates.Get(context.Background(), userID, f.cards[0].ID)
	assert.ErrorIs(t, err, store.ErrCardStateNotFound)
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()
	docID := uuid.New()
	seed := `{
	  "documents": [{
	    "id": "` + docID.String() + `",
	    "title": "Biology",
	    "macro_topics": [{
	      "name": "Cells",
	      "micro_topics": [{
	        "name": "Organelles",
	        "cards": [
	          {"type": "cloze", "front": "The powerhouse of the cell is the ____", "back": "mitochondria", "base_difficulty": 0.2},
	          {"type": "mcq", "front": "Which organelle holds DNA?", "back": "nucleus", "correct_option_index": 1, "base_difficulty": 0.5}
	        ]
	      }]
	    }]
	  }]
	}`

	s := New()
	require.NoError(t, s.LoadSeed(strings.NewReader(seed)))

	ctx := context.Background()
	cards, err := s.Stores().Cards.ListByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.NotNil(t, cards[0].MicroTopicID)
	assert.Equal(t, *cards[0].MicroTopicID, *cards[1].MicroTopicID)

	topics, err := s.Stores().Topics.ListMicroTopicsByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Organelles", topics[0].Name)

	bad := `{"documents":[{"title":"x","macro_topics":[{"name":"m","micro_topics":[{"name":"t","cards":[{"type":"mcq","front":"q","back":"a"}]}]}]}]}`
	assert.ErrorIs(t, New().LoadSeed(strings.NewReader(bad)), store.ErrInvalidEntity)
}
