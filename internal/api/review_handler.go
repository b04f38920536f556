package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-adaptive/internal/api/shared"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
)

// ReviewHandler serves the study loop endpoints.
type ReviewHandler struct {
	reviews card_review.CardReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews card_review.CardReviewService, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		panic("card review service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// GetNextCard handles GET /api/documents/{id}/next-card. It answers 204
// when the document has nothing to study right now.
func (h *ReviewHandler) GetNextCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, documentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.reviews.SelectNextCard(r.Context(), userID, documentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next card")
		return
	}
	if card == nil {
		log.Debug("no card eligible", slog.String("document_id", documentID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	log.Debug("selected next card",
		slog.String("document_id", documentID.String()),
		slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// SubmitAnswer handles POST /api/cards/{id}/answer.
func (h *ReviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.reviews.SubmitAnswer(r.Context(), userID, cardID, card_review.ReviewAnswer{
		Answer:    req.Answer,
		LatencyMS: req.LatencyMS,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("answer graded",
		slog.String("card_id", cardID.String()),
		slog.Int("score", result.Score))
	shared.RespondWithJSON(w, r, http.StatusOK, resultToResponse(result))
}

// PostponeCard handles POST /api/cards/{id}/postpone.
func (h *ReviewHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PostponeCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	state, err := h.reviews.PostponeCard(r.Context(), userID, cardID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardStateToResponse(state))
}

// GetTopicState handles GET /api/topics/{id}/state.
func (h *ReviewHandler) GetTopicState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	state, err := h.reviews.GetTopicState(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get topic state")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topicStateToResponse(state))
}

// GetDocumentProgress handles GET /api/documents/{id}/progress.
func (h *ReviewHandler) GetDocumentProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, documentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	progress, err := h.reviews.GetDocumentProgress(r.Context(), userID, documentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get document progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}
