package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-adaptive/internal/api/shared"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/platform/lock"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
	"github.com/phrazzld/scry-adaptive/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	wrapped := func(err error) error {
		return card_review.NewServiceError(card_review.OpSubmitAnswer, "failed", err)
	}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"card not found", card_review.ErrCardNotFound, http.StatusNotFound, "Card not found"},
		{"wrapped card not found", wrapped(card_review.ErrCardNotFound), http.StatusNotFound, "Card not found"},
		{"document not found", card_review.ErrDocumentNotFound, http.StatusNotFound, "Document not found"},
		{"topic not found", card_review.ErrTopicNotFound, http.StatusNotFound, "Topic not found"},
		{"store topic not found", store.ErrTopicNotFound, http.StatusNotFound, "Topic not found"},
		{"store not found", store.ErrCardStateNotFound, http.StatusNotFound, "Resource not found"},
		{"not reviewed", card_review.ErrCardNotReviewed, http.StatusConflict, "Card has not been reviewed yet"},
		{"duplicate", store.ErrCardStateExists, http.StatusConflict, "Resource already exists"},
		{"invalid answer", wrapped(card_review.ErrInvalidAnswer), http.StatusBadRequest, "Invalid answer"},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, "Invalid ID"},
		{"validation", domain.ErrCardFrontEmpty, http.StatusBadRequest, "Invalid entity data"},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest, "Request body is required"},
		{"lock timeout", fmt.Errorf("acquire: %w", lock.ErrLockNotAcquired), http.StatusServiceUnavailable, "Card is busy, try again"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "An unexpected error occurred"},
		{"nil", nil, http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.message, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(PostponeCardRequest{Days: 0})
	assert.Equal(t, "Invalid days: must be at least 1", SanitizeValidationError(err))

	err = shared.ValidateRequest(SubmitAnswerRequest{LatencyMS: -5})
	assert.Equal(t, "Invalid latency_ms: must be at least 0", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'X' secret")))
}

func TestHandleAPIErrorUsesDefaultMessageForServerErrors(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	HandleAPIError(rr, req, errors.New("redis://:pw@cache:6379 timeout"), "Failed to submit answer")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to submit answer"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	HandleAPIError(rr, req, card_review.ErrCardNotFound, "Failed to submit answer")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Card not found"}`, rr.Body.String())
}
