package mocks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCardReviewServiceDefaults(t *testing.T) {
	t.Parallel()

	card := &domain.Card{ID: uuid.New()}
	boom := errors.New("boom")
	m := &MockCardReviewService{NextCard: card, Err: boom}
	userID, docID := uuid.New(), uuid.New()

	got, err := m.SelectNextCard(context.Background(), userID, docID)
	assert.Same(t, card, got)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.SelectNextCardCalls.Count())
	assert.Equal(t, SelectNextCardCall{UserID: userID, DocumentID: docID}, m.SelectNextCardCalls.Last())
}

func TestMockCardReviewServiceFuncs(t *testing.T) {
	t.Parallel()

	m := &MockCardReviewService{
		SubmitAnswerFn: func(_ context.Context, _, _ uuid.UUID, a card_review.ReviewAnswer) (*card_review.ReviewResult, error) {
			return &card_review.ReviewResult{Score: len(a.Answer)}, nil
		},
	}
	cardID := uuid.New()

	res, err := m.SubmitAnswer(context.Background(), uuid.New(), cardID, card_review.ReviewAnswer{Answer: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, cardID, m.SubmitAnswerCalls.Last().CardID)

	m.SubmitAnswerCalls.Reset()
	assert.Zero(t, m.SubmitAnswerCalls.Count())
	assert.Equal(t, SubmitAnswerCall{}, m.SubmitAnswerCalls.Last())
}

func TestCallsConcurrentRecording(t *testing.T) {
	t.Parallel()

	m := &MockTokenService{Claims: &auth.Claims{UserID: uuid.New()}}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.ValidateToken(context.Background(), "token")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.ValidateTokenCalls.Count())
	assert.Len(t, m.ValidateTokenCalls.Args(), 50)
}
