package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestNewCard(t *testing.T) {
	t.Parallel()
	docID := uuid.New()
	topicID := uuid.New()

	card, err := NewCard(docID, &topicID, CardTypeDefinition, "What is Go?", "A programming language", 0.3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if card.DocumentID != docID {
		t.Errorf("Expected document ID %s, got %s", docID, card.DocumentID)
	}
	if card.DifficultyBand() != DifficultyEasy {
		t.Errorf("Expected easy band, got %s", card.DifficultyBand())
	}

	if _, err := NewCard(uuid.Nil, nil, CardTypeCloze, "f", "b", 0.5); !errors.Is(err, ErrCardDocumentIDEmpty) {
		t.Errorf("Expected error %v, got %v", ErrCardDocumentIDEmpty, err)
	}
}

func TestCardValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Card {
		return &Card{
			ID:                 uuid.New(),
			DocumentID:         uuid.New(),
			Type:               CardTypeMCQ,
			Front:              "Pick one",
			Back:               "B",
			BaseDifficulty:     0.5,
			CorrectOptionIndex: intPtr(1),
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Card)
		wantErr error
	}{
		{"valid mcq", func(c *Card) {}, nil},
		{"nil id", func(c *Card) { c.ID = uuid.Nil }, ErrCardIDEmpty},
		{"unknown type", func(c *Card) { c.Type = "essay" }, ErrCardTypeInvalid},
		{"empty front", func(c *Card) { c.Front = "" }, ErrCardFrontEmpty},
		{"empty back", func(c *Card) { c.Back = "" }, ErrCardBackEmpty},
		{"difficulty above one", func(c *Card) { c.BaseDifficulty = 1.01 }, ErrCardDifficultyRange},
		{"difficulty below zero", func(c *Card) { c.BaseDifficulty = -0.1 }, ErrCardDifficultyRange},
		{"mcq without answer", func(c *Card) { c.CorrectOptionIndex = nil }, ErrCardCorrectOptionEmpty},
		{"mcq negative answer", func(c *Card) { c.CorrectOptionIndex = intPtr(-1) }, ErrCardCorrectOptionEmpty},
		{"cloze without option index", func(c *Card) { c.Type = CardTypeCloze; c.CorrectOptionIndex = nil }, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Expected error to wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestBandForDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    float64
		want DifficultyBand
	}{
		{0, DifficultyEasy},
		{0.39, DifficultyEasy},
		{0.4, DifficultyMedium},
		{0.69, DifficultyMedium},
		{0.7, DifficultyHard},
		{1.0, DifficultyHard},
	}
	for _, tc := range tests {
		if got := BandForDifficulty(tc.d); got != tc.want {
			t.Errorf("BandForDifficulty(%v) = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestCardTypeSelfGraded(t *testing.T) {
	t.Parallel()
	for _, ct := range []CardType{CardTypeDefinition, CardTypeApplication, CardTypeConnection} {
		if !ct.IsSelfGraded() {
			t.Errorf("Expected %s to be self graded", ct)
		}
	}
	for _, ct := range []CardType{CardTypeCloze, CardTypeMCQ} {
		if ct.IsSelfGraded() {
			t.Errorf("Expected %s not to be self graded", ct)
		}
	}
}
