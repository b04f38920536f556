package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// CardType identifies how an answer to a card is graded.
type CardType string

// Supported card types.
const (
	CardTypeDefinition  CardType = "definition"
	CardTypeApplication CardType = "application"
	CardTypeConnection  CardType = "connection"
	CardTypeCloze       CardType = "cloze"
	CardTypeMCQ         CardType = "mcq"
)

// IsValid reports whether t is one of the known card types.
func (t CardType) IsValid() bool {
	switch t {
	case CardTypeDefinition, CardTypeApplication, CardTypeConnection, CardTypeCloze, CardTypeMCQ:
		return true
	default:
		return false
	}
}

// IsSelfGraded reports whether answers for this type are a self-assessed score.
func (t CardType) IsSelfGraded() bool {
	return t == CardTypeDefinition || t == CardTypeApplication || t == CardTypeConnection
}

// DifficultyBand partitions base difficulty into three coarse levels.
type DifficultyBand string

// Difficulty bands. Easy is [0,0.4), medium [0.4,0.7), hard [0.7,1.0].
const (
	DifficultyEasy   DifficultyBand = "easy"
	DifficultyMedium DifficultyBand = "medium"
	DifficultyHard   DifficultyBand = "hard"
)

const (
	mediumDifficultyFloor = 0.4
	hardDifficultyFloor   = 0.7
)

// BandForDifficulty maps a base difficulty to its band. A difficulty of
// exactly 1.0 is hard.
func BandForDifficulty(d float64) DifficultyBand {
	switch {
	case d < mediumDifficultyFloor:
		return DifficultyEasy
	case d < hardDifficultyFloor:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Card-specific validation errors
var (
	ErrCardIDEmpty            = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)
	ErrCardDocumentIDEmpty    = fmt.Errorf("%w: card document ID cannot be empty", ErrValidation)
	ErrCardTypeInvalid        = fmt.Errorf("%w: invalid card type", ErrValidation)
	ErrCardFrontEmpty         = fmt.Errorf("%w: card front cannot be empty", ErrValidation)
	ErrCardBackEmpty          = fmt.Errorf("%w: card back cannot be empty", ErrValidation)
	ErrCardDifficultyRange    = fmt.Errorf("%w: base difficulty must be within [0,1]", ErrValidation)
	ErrCardCorrectOptionEmpty = fmt.Errorf("%w: mcq card requires a correct option index", ErrValidation)
)

// Card is a single question/answer unit belonging to a document and,
// optionally, to one micro topic. Cards are read-only for the engine.
//
// Topic is the legacy free-text label some documents still carry; selection
// only considers cards linked through MicroTopicID.
type Card struct {
	ID                 uuid.UUID  `json:"id"`
	DocumentID         uuid.UUID  `json:"document_id"`
	MicroTopicID       *uuid.UUID `json:"micro_topic_id,omitempty"`
	Type               CardType   `json:"type"`
	Front              string     `json:"front"`
	Back               string     `json:"back"`
	CorrectOptionIndex *int       `json:"correct_option_index,omitempty"`
	Topic              string     `json:"topic,omitempty"`
	BaseDifficulty     float64    `json:"base_difficulty"`
}

// NewCard builds and validates a card with a fresh ID.
func NewCard(
	documentID uuid.UUID,
	microTopicID *uuid.UUID,
	cardType CardType,
	front, back string,
	baseDifficulty float64,
) (*Card, error) {
	card := &Card{
		ID:             uuid.New(),
		DocumentID:     documentID,
		MicroTopicID:   microTopicID,
		Type:           cardType,
		Front:          front,
		Back:           back,
		BaseDifficulty: baseDifficulty,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.DocumentID == uuid.Nil {
		return ErrCardDocumentIDEmpty
	}
	if !c.Type.IsValid() {
		return ErrCardTypeInvalid
	}
	if c.Front == "" {
		return ErrCardFrontEmpty
	}
	if c.Back == "" {
		return ErrCardBackEmpty
	}
	if c.BaseDifficulty < 0 || c.BaseDifficulty > 1 {
		return ErrCardDifficultyRange
	}
	if c.Type == CardTypeMCQ && (c.CorrectOptionIndex == nil || *c.CorrectOptionIndex < 0) {
		return ErrCardCorrectOptionEmpty
	}
	return nil
}

// DifficultyBand returns the band the card's base difficulty falls in.
func (c *Card) DifficultyBand() DifficultyBand {
	return BandForDifficulty(c.BaseDifficulty)
}
