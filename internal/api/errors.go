package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-adaptive/internal/api/shared"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/platform/lock"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error itself.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, card_review.ErrCardNotFound),
		errors.Is(err, card_review.ErrDocumentNotFound),
		errors.Is(err, card_review.ErrTopicNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, card_review.ErrCardNotReviewed),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, card_review.ErrInvalidAnswer),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, lock.ErrLockNotAcquired):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, card_review.ErrCardNotFound), errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, card_review.ErrDocumentNotFound), errors.Is(err, store.ErrDocumentNotFound):
		return "Document not found"
	case errors.Is(err, card_review.ErrTopicNotFound), errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, card_review.ErrCardNotReviewed):
		return "Card has not been reviewed yet"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, card_review.ErrInvalidAnswer):
		return "Invalid answer"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	case errors.Is(err, lock.ErrLockNotAcquired):
		return "Card is busy, try again"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming the
// first failing field. Anything else yields a generic message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe))
}

func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// detail. A non-empty defaultMsg replaces the generic message of 5xx
// responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
