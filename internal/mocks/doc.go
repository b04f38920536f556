// Package mocks provides hand-written test doubles for the service
// interfaces consumed by the HTTP layer.
//
// Each mock has a function field per method for custom behaviour, default
// return values used when the function is nil, and call tracking guarded by a
// mutex:
//
//	svc := &mocks.MockCardReviewService{
//	    SubmitAnswerFn: func(ctx context.Context, userID, cardID uuid.UUID, a card_review.ReviewAnswer) (*card_review.ReviewResult, error) {
//	        return &card_review.ReviewResult{Score: 3}, nil
//	    },
//	}
//	// ... exercise the handler ...
//	assert.Equal(t, 1, svc.SubmitAnswerCalls.Count())
package mocks
