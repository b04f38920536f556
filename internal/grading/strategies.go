package grading

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// Edit distance ceilings for cloze scores 3, 2 and 1.
const (
	clozePerfectDistance = 2
	clozeCloseDistance   = 4
	clozePartialDistance = 6
)

// GradeMCQ compares the submitted option index with the card's correct one.
func GradeMCQ(card *domain.Card, answer string) Result {
	idx, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return Result{Score: 0, Explanation: "Invalid answer: expected an option number."}
	}
	if card.CorrectOptionIndex == nil {
		return Result{Score: 0, Explanation: "This question has no correct option configured."}
	}
	if idx == *card.CorrectOptionIndex {
		return Result{Score: 3, Explanation: "Correct!"}
	}
	return Result{
		Score:       0,
		Explanation: fmt.Sprintf("Incorrect. The correct option was %d.", *card.CorrectOptionIndex),
	}
}

// GradeCloze scores a fill-in answer by edit distance to the expected text,
// ignoring case and surrounding whitespace. A blank answer always scores 0,
// even against an expected text short enough to fall inside a distance band.
func GradeCloze(card *domain.Card, answer string) Result {
	expected := normalize(card.Back)
	got := normalize(answer)

	if got == "" {
		return Result{Score: 0, Explanation: "No answer provided. Expected: " + card.Back}
	}

	dist := levenshtein.Distance(expected, got, nil)
	switch {
	case dist <= clozePerfectDistance:
		return Result{Score: 3, Explanation: "Correct!"}
	case dist <= clozeCloseDistance:
		return Result{Score: 2, Explanation: "Close. Expected: " + card.Back}
	case dist <= clozePartialDistance:
		return Result{Score: 1, Explanation: "Partially correct. Expected: " + card.Back}
	default:
		return Result{Score: 0, Explanation: "Incorrect. Expected: " + card.Back}
	}
}

// GradeSelfAssessment accepts the learner's own 0..3 rating.
func GradeSelfAssessment(_ *domain.Card, answer string) Result {
	score, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || !domain.ValidScore(score) {
		return Result{Score: 0, Explanation: "Invalid self-assessment: expected a rating from 0 to 3."}
	}
	return Result{Score: score, Explanation: fmt.Sprintf("Self-assessed as %d/3.", score)}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
