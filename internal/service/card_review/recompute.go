package card_review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/events"
)

// TopicRecomputer rebuilds and stores a topic aggregate.
type TopicRecomputer interface {
	Recompute(ctx context.Context, userID, topicID uuid.UUID, now time.Time) (*domain.TopicMemoryState, error)
}

// TopicRecomputeHandler refreshes the topic aggregate after each recorded
// review. Cards without a micro topic are ignored.
type TopicRecomputeHandler struct {
	recomputer TopicRecomputer
	logger     *slog.Logger
}

var _ events.EventHandler = (*TopicRecomputeHandler)(nil)

// NewTopicRecomputeHandler creates a TopicRecomputeHandler.
func NewTopicRecomputeHandler(recomputer TopicRecomputer, logger *slog.Logger) *TopicRecomputeHandler {
	if recomputer == nil {
		panic("recomputer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TopicRecomputeHandler{
		recomputer: recomputer,
		logger:     logger.With(slog.String("component", "topic_recompute_handler")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *TopicRecomputeHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeReviewRecorded {
		return nil
	}

	var payload events.ReviewRecorded
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode review event: %w", err)
	}
	if payload.MicroTopicID == nil {
		return nil
	}

	if _, err := h.recomputer.Recompute(ctx, payload.UserID, *payload.MicroTopicID, payload.ReviewedAt); err != nil {
		h.logger.Error("failed to recompute topic state",
			slog.String("error", err.Error()),
			slog.String("user_id", payload.UserID.String()),
			slog.String("micro_topic_id", payload.MicroTopicID.String()))
		return fmt.Errorf("failed to recompute topic %s: %w", payload.MicroTopicID, err)
	}
	return nil
}
