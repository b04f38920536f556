package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
)

// SelectNextCardCall holds the arguments of one SelectNextCard call.
type SelectNextCardCall struct {
	UserID     uuid.UUID
	DocumentID uuid.UUID
}

// SubmitAnswerCall holds the arguments of one SubmitAnswer call.
type SubmitAnswerCall struct {
	UserID uuid.UUID
	CardID uuid.UUID
	Answer card_review.ReviewAnswer
}

// PostponeCardCall holds the arguments of one PostponeCard call.
type PostponeCardCall struct {
	UserID uuid.UUID
	CardID uuid.UUID
	Days   int
}

// TopicStateCall holds the arguments of one GetTopicState call.
type TopicStateCall struct {
	UserID  uuid.UUID
	TopicID uuid.UUID
}

// DocumentProgressCall holds the arguments of one GetDocumentProgress call.
type DocumentProgressCall struct {
	UserID     uuid.UUID
	DocumentID uuid.UUID
}

// MockCardReviewService implements card_review.CardReviewService for testing.
type MockCardReviewService struct {
	SelectNextCardFn      func(ctx context.Context, userID, documentID uuid.UUID) (*domain.Card, error)
	SubmitAnswerFn        func(ctx context.Context, userID, cardID uuid.UUID, answer card_review.ReviewAnswer) (*card_review.ReviewResult, error)
	PostponeCardFn        func(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.CardMemoryState, error)
	GetTopicStateFn       func(ctx context.Context, userID, topicID uuid.UUID) (*domain.TopicMemoryState, error)
	GetDocumentProgressFn func(ctx context.Context, userID, documentID uuid.UUID) (*card_review.DocumentProgress, error)

	// Defaults returned when the matching Fn is nil.
	NextCard   *domain.Card
	Result     *card_review.ReviewResult
	CardState  *domain.CardMemoryState
	TopicState *domain.TopicMemoryState
	Progress   *card_review.DocumentProgress
	Err        error

	SelectNextCardCalls      Calls[SelectNextCardCall]
	SubmitAnswerCalls        Calls[SubmitAnswerCall]
	PostponeCardCalls        Calls[PostponeCardCall]
	GetTopicStateCalls       Calls[TopicStateCall]
	GetDocumentProgressCalls Calls[DocumentProgressCall]
}

var _ card_review.CardReviewService = (*MockCardReviewService)(nil)

// SelectNextCard implements card_review.CardReviewService.
func (m *MockCardReviewService) SelectNextCard(ctx context.Context, userID, documentID uuid.UUID) (*domain.Card, error) {
	m.SelectNextCardCalls.record(SelectNextCardCall{UserID: userID, DocumentID: documentID})
	if m.SelectNextCardFn != nil {
		return m.SelectNextCardFn(ctx, userID, documentID)
	}
	return m.NextCard, m.Err
}

// SubmitAnswer implements card_review.CardReviewService.
func (m *MockCardReviewService) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	answer card_review.ReviewAnswer,
) (*card_review.ReviewResult, error) {
	m.SubmitAnswerCalls.record(SubmitAnswerCall{UserID: userID, CardID: cardID, Answer: answer})
	if m.SubmitAnswerFn != nil {
		return m.SubmitAnswerFn(ctx, userID, cardID, answer)
	}
	return m.Result, m.Err
}

// PostponeCard implements card_review.CardReviewService.
func (m *MockCardReviewService) PostponeCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	days int,
) (*domain.CardMemoryState, error) {
	m.PostponeCardCalls.record(PostponeCardCall{UserID: userID, CardID: cardID, Days: days})
	if m.PostponeCardFn != nil {
		return m.PostponeCardFn(ctx, userID, cardID, days)
	}
	return m.CardState, m.Err
}

// GetTopicState implements card_review.CardReviewService.
func (m *MockCardReviewService) GetTopicState(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*domain.TopicMemoryState, error) {
	m.GetTopicStateCalls.record(TopicStateCall{UserID: userID, TopicID: topicID})
	if m.GetTopicStateFn != nil {
		return m.GetTopicStateFn(ctx, userID, topicID)
	}
	return m.TopicState, m.Err
}

// GetDocumentProgress implements card_review.CardReviewService.
func (m *MockCardReviewService) GetDocumentProgress(
	ctx context.Context,
	userID, documentID uuid.UUID,
) (*card_review.DocumentProgress, error) {
	m.GetDocumentProgressCalls.record(DocumentProgressCall{UserID: userID, DocumentID: documentID})
	if m.GetDocumentProgressFn != nil {
		return m.GetDocumentProgressFn(ctx, userID, documentID)
	}
	return m.Progress, m.Err
}
