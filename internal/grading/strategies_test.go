package grading

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/stretchr/testify/assert"
)

func mcqCard(correct int) *domain.Card {
	return &domain.Card{
		ID:                 uuid.New(),
		DocumentID:         uuid.New(),
		Type:               domain.CardTypeMCQ,
		Front:              "Which option?",
		Back:               "The third one",
		CorrectOptionIndex: &correct,
	}
}

func clozeCard(back string) *domain.Card {
	return &domain.Card{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		Type:       domain.CardTypeCloze,
		Front:      "GDP stands for ____",
		Back:       back,
	}
}

func TestGradeMCQ(t *testing.T) {
	t.Parallel()
	card := mcqCard(2)

	tests := []struct {
		name      string
		answer    string
		wantScore int
		wantMsg   string
	}{
		{"exact index", "2", 3, "Correct!"},
		{"padded index", " 2 ", 3, "Correct!"},
		{"other index", "1", 0, "Incorrect. The correct option was 2."},
		{"not a number", "two", 0, "Invalid answer: expected an option number."},
		{"empty", "", 0, "Invalid answer: expected an option number."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := GradeMCQ(card, tc.answer)
			assert.Equal(t, tc.wantScore, res.Score)
			assert.Equal(t, tc.wantMsg, res.Explanation)
		})
	}
}

func TestGradeMCQWithoutCorrectOption(t *testing.T) {
	t.Parallel()
	card := mcqCard(0)
	card.CorrectOptionIndex = nil

	res := GradeMCQ(card, "0")
	assert.Equal(t, 0, res.Score)
}

func TestGradeCloze(t *testing.T) {
	t.Parallel()
	card := clozeCard("Gross Domestic Product")

	tests := []struct {
		name      string
		answer    string
		wantScore int
	}{
		{"case only difference", "gross domestic product", 3},
		{"surrounding whitespace", "  Gross Domestic Product \n", 3},
		{"one typo", "Groos Domestic Product", 3},
		{"distance three", "gross domestic prod", 2},
		{"distance five", "gross domestic pr", 1},
		{"distance eight", "gross domestic", 0},
		{"unrelated", "quantitative easing", 0},
		{"empty", "   ", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := GradeCloze(card, tc.answer)
			assert.Equal(t, tc.wantScore, res.Score)
			assert.NotEmpty(t, res.Explanation)
		})
	}
}

func TestGradeClozeBlankAgainstShortExpected(t *testing.T) {
	t.Parallel()

	for _, expected := range []string{"ATP", "DNA", "enzyme"} {
		res := GradeCloze(clozeCard(expected), "")
		assert.Equal(t, 0, res.Score, expected)
		assert.Contains(t, res.Explanation, expected)
	}
}

func TestGradeSelfAssessment(t *testing.T) {
	t.Parallel()

	for score := 0; score <= 3; score++ {
		res := GradeSelfAssessment(nil, string(rune('0'+score)))
		assert.Equal(t, score, res.Score)
	}

	for _, bad := range []string{"4", "-1", "good", "", "2.5"} {
		res := GradeSelfAssessment(nil, bad)
		assert.Equal(t, 0, res.Score, "answer %q", bad)
		assert.Contains(t, res.Explanation, "Invalid self-assessment")
	}
}
