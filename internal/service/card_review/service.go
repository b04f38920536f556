package card_review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// ReviewAnswer is a user's answer to a card.
type ReviewAnswer struct {
	// Answer is free text, an option number for mcq cards, or a 0-3
	// self-grade for self-graded card types.
	Answer string `json:"answer"`
	// LatencyMS is how long the user took to answer.
	LatencyMS int64 `json:"latency_ms" validate:"gte=0"`
}

// ReviewResult is the outcome of a submitted answer.
type ReviewResult struct {
	Score       int       `json:"score"`
	Explanation string    `json:"explanation"`
	ReviewID    uuid.UUID `json:"review_id"`
	// CorrectAnswer is the card's back, revealed once the answer is graded.
	CorrectAnswer string                  `json:"correct_answer"`
	State         *domain.CardMemoryState `json:"-"`
}

// DocumentProgress summarises a user's mastery of a whole document.
type DocumentProgress struct {
	DocumentID     uuid.UUID `json:"document_id"`
	MasteryPercent float64   `json:"mastery_percent"`
	CardsTotal     int       `json:"cards_total"`
	CardsReviewed  int       `json:"cards_reviewed"`
}

// CardReviewService runs the study loop: pick a card, grade the answer,
// update the learner's memory state and topic aggregates.
type CardReviewService interface {
	// SelectNextCard returns the next card to study in the document, or
	// (nil, nil) when nothing is eligible.
	//
	// Returns ErrDocumentNotFound for an unknown document. Any other error
	// comes from persistence and is wrapped in a ServiceError.
	SelectNextCard(ctx context.Context, userID, documentID uuid.UUID) (*domain.Card, error)

	// SubmitAnswer grades an answer and records the review.
	//
	// Submissions for the same user and card are serialised. The memory
	// state and review commit together or not at all; the topic aggregate
	// is recomputed afterwards, and a failure there is logged without
	// failing the call.
	//
	// Returns ErrCardNotFound for an unknown card and ErrInvalidAnswer for a
	// malformed request. Grading never fails on bad answer content.
	SubmitAnswer(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		answer ReviewAnswer,
	) (*ReviewResult, error)

	// PostponeCard pushes a card's due date back by days.
	//
	// Returns ErrCardNotFound for an unknown card and ErrCardNotReviewed if
	// the user has no memory state for it yet.
	PostponeCard(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.CardMemoryState, error)

	// GetTopicState returns the user's aggregate for a micro topic. A topic
	// the user never studied yields the baseline state.
	//
	// Returns ErrTopicNotFound for an unknown topic.
	GetTopicState(ctx context.Context, userID, topicID uuid.UUID) (*domain.TopicMemoryState, error)

	// GetDocumentProgress returns overall mastery of the document.
	//
	// Returns ErrDocumentNotFound for an unknown document.
	GetDocumentProgress(ctx context.Context, userID, documentID uuid.UUID) (*DocumentProgress, error)
}

// Common error types for CardReviewService
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrDocumentNotFound indicates that the document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrTopicNotFound indicates that the micro topic does not exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrCardNotReviewed indicates the user has never reviewed the card.
	ErrCardNotReviewed = errors.New("card has not been reviewed")

	// ErrInvalidAnswer indicates an invalid answer was provided.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "select_next_card", "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Operation names used in ServiceError.
const (
	OpSelectNextCard      = "select_next_card"
	OpSubmitAnswer        = "submit_answer"
	OpPostponeCard        = "postpone_card"
	OpGetTopicState       = "get_topic_state"
	OpGetDocumentProgress = "get_document_progress"
)

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
