package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
)

// CardResponse is a card as shown to the learner. Self-graded cards carry
// their back so the learner can judge against it; for the other types the
// back and the correct option are withheld until the answer is graded.
type CardResponse struct {
	ID             uuid.UUID  `json:"id"`
	DocumentID     uuid.UUID  `json:"document_id"`
	MicroTopicID   *uuid.UUID `json:"micro_topic_id,omitempty"`
	Type           string     `json:"type"`
	Front          string     `json:"front"`
	Back           string     `json:"back,omitempty"`
	BaseDifficulty float64    `json:"base_difficulty"`
	Difficulty     string     `json:"difficulty"`
}

// SubmitAnswerRequest is the body of POST /api/cards/{id}/answer.
type SubmitAnswerRequest struct {
	Answer    string `json:"answer"`
	LatencyMS int64  `json:"latency_ms" validate:"gte=0"`
}

// SubmitAnswerResponse reports the grade and the rescheduled due date.
type SubmitAnswerResponse struct {
	Score         int        `json:"score"`
	Explanation   string     `json:"explanation"`
	ReviewID      uuid.UUID  `json:"review_id"`
	CorrectAnswer string     `json:"correct_answer"`
	NextDueAt     *time.Time `json:"next_due_at,omitempty"`
}

// PostponeCardRequest is the body of POST /api/cards/{id}/postpone.
type PostponeCardRequest struct {
	Days int `json:"days" validate:"gte=1"`
}

// CardStateResponse is a user's memory state for one card.
type CardStateResponse struct {
	CardID       uuid.UUID  `json:"card_id"`
	Mastery      float64    `json:"mastery"`
	EaseFactor   float64    `json:"ease_factor"`
	Repetitions  int        `json:"repetitions"`
	IntervalDays float64    `json:"interval_days"`
	LastScore    *int       `json:"last_score,omitempty"`
	NextDueAt    *time.Time `json:"next_due_at,omitempty"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
}

// TopicStateResponse is a user's aggregate for one micro topic.
type TopicStateResponse struct {
	MicroTopicID   uuid.UUID  `json:"micro_topic_id"`
	KnowledgeScore float64    `json:"knowledge_score"`
	CardsSeen      int        `json:"cards_seen"`
	CardsMastered  int        `json:"cards_mastered"`
	StruggleWeight float64    `json:"struggle_weight"`
	AvgCardScore   float64    `json:"avg_card_score"`
	TotalReviews   int        `json:"total_reviews"`
	LastPracticeAt *time.Time `json:"last_practice_at,omitempty"`
}

// DocumentProgressResponse is overall mastery of a document.
type DocumentProgressResponse struct {
	DocumentID     uuid.UUID `json:"document_id"`
	MasteryPercent float64   `json:"mastery_percent"`
	CardsTotal     int       `json:"cards_total"`
	CardsReviewed  int       `json:"cards_reviewed"`
}

func cardToResponse(card *domain.Card) CardResponse {
	resp := CardResponse{
		ID:             card.ID,
		DocumentID:     card.DocumentID,
		MicroTopicID:   card.MicroTopicID,
		Type:           string(card.Type),
		Front:          card.Front,
		BaseDifficulty: card.BaseDifficulty,
		Difficulty:     string(domain.BandForDifficulty(card.BaseDifficulty)),
	}
	if card.Type.IsSelfGraded() {
		resp.Back = card.Back
	}
	return resp
}

func resultToResponse(result *card_review.ReviewResult) SubmitAnswerResponse {
	resp := SubmitAnswerResponse{
		Score:         result.Score,
		Explanation:   result.Explanation,
		ReviewID:      result.ReviewID,
		CorrectAnswer: result.CorrectAnswer,
	}
	if result.State != nil {
		resp.NextDueAt = result.State.NextDueAt
	}
	return resp
}

func cardStateToResponse(state *domain.CardMemoryState) CardStateResponse {
	return CardStateResponse{
		CardID:       state.CardID,
		Mastery:      state.Mastery,
		EaseFactor:   state.EaseFactor,
		Repetitions:  state.Repetitions,
		IntervalDays: state.IntervalDays,
		LastScore:    state.LastScore,
		NextDueAt:    state.NextDueAt,
		LastReviewAt: state.LastReviewAt,
	}
}

func topicStateToResponse(state *domain.TopicMemoryState) TopicStateResponse {
	return TopicStateResponse{
		MicroTopicID:   state.MicroTopicID,
		KnowledgeScore: state.KnowledgeScore,
		CardsSeen:      state.CardsSeen,
		CardsMastered:  state.CardsMastered,
		StruggleWeight: state.StruggleWeight,
		AvgCardScore:   state.AvgCardScore,
		TotalReviews:   state.TotalReviews,
		LastPracticeAt: state.LastPracticeAt,
	}
}

func progressToResponse(p *card_review.DocumentProgress) DocumentProgressResponse {
	return DocumentProgressResponse{
		DocumentID:     p.DocumentID,
		MasteryPercent: p.MasteryPercent,
		CardsTotal:     p.CardsTotal,
		CardsReviewed:  p.CardsReviewed,
	}
}
