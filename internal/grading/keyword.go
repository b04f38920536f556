package grading

import (
	"context"
	"strings"
)

// KeywordGrader is an offline SemanticGrader: an answer that contains the
// expected text scores 3, any other non-empty answer scores 1.
type KeywordGrader struct{}

var _ SemanticGrader = KeywordGrader{}

// JudgeAnswer implements SemanticGrader.
func (KeywordGrader) JudgeAnswer(_ context.Context, _, expected, answer string) (Result, error) {
	got := normalize(answer)
	if got == "" {
		return Result{Score: 0, Explanation: "No answer provided."}, nil
	}
	if strings.Contains(got, normalize(expected)) {
		return Result{Score: 3, Explanation: "Great! Your answer contains the key information."}, nil
	}
	return Result{Score: 1, Explanation: "Your answer is partially correct, but missing key details."}, nil
}
