package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaselineStruggleWeight is the struggle weight of a topic with no signal.
const BaselineStruggleWeight = 1.0

// Document is the source a set of cards was authored from.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// MacroTopic is a coarse section of a document.
type MacroTopic struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Name       string    `json:"name"`
}

// MicroTopic is a fine-grained concept within a macro topic. It is the unit
// at which the engine aggregates mastery.
type MicroTopic struct {
	ID           uuid.UUID `json:"id"`
	MacroTopicID uuid.UUID `json:"macro_topic_id"`
	DocumentID   uuid.UUID `json:"document_id"`
	Name         string    `json:"name"`
}

// TopicMemoryState aggregates a user's card states for one micro topic.
// It is derived data: every field is recomputed from card states and reviews.
type TopicMemoryState struct {
	UserID         uuid.UUID  `json:"user_id"`
	MicroTopicID   uuid.UUID  `json:"micro_topic_id"`
	KnowledgeScore float64    `json:"knowledge_score"`
	CardsSeen      int        `json:"cards_seen"`
	CardsMastered  int        `json:"cards_mastered"`
	StruggleWeight float64    `json:"struggle_weight"`
	AvgCardScore   float64    `json:"avg_card_score"`
	TotalReviews   int        `json:"total_reviews"`
	LastPracticeAt *time.Time `json:"last_practice_at,omitempty"`
}

// NewTopicMemoryState returns the baseline aggregate for a topic the user has
// not practiced.
func NewTopicMemoryState(userID, microTopicID uuid.UUID) *TopicMemoryState {
	return &TopicMemoryState{
		UserID:         userID,
		MicroTopicID:   microTopicID,
		StruggleWeight: BaselineStruggleWeight,
	}
}
