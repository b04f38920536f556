package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// ErrNilCard is returned when Grade is called without a card.
var ErrNilCard = errors.New("card cannot be nil")

// Result is the outcome of grading one answer.
type Result struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Grader scores an answer against a card.
type Grader interface {
	Grade(ctx context.Context, card *domain.Card, answer string) (Result, error)
}

// Strategy grades answers for one card type. Strategies are pure.
type Strategy interface {
	Grade(card *domain.Card, answer string) Result
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(card *domain.Card, answer string) Result

// Grade implements Strategy.
func (f StrategyFunc) Grade(card *domain.Card, answer string) Result {
	return f(card, answer)
}

// SemanticGrader judges free-form answers, typically through a language model.
type SemanticGrader interface {
	JudgeAnswer(ctx context.Context, question, expected, answer string) (Result, error)
}

// Dispatcher routes each card to the strategy registered for its type and
// falls back to a SemanticGrader for types without one.
type Dispatcher struct {
	strategies map[domain.CardType]Strategy
	semantic   SemanticGrader
}

var _ Grader = (*Dispatcher)(nil)

// NewDispatcher returns a Dispatcher with the built-in strategy for every
// known card type. semantic may be nil, in which case a KeywordGrader is used.
func NewDispatcher(semantic SemanticGrader) *Dispatcher {
	if semantic == nil {
		semantic = KeywordGrader{}
	}
	self := StrategyFunc(GradeSelfAssessment)
	return &Dispatcher{
		strategies: map[domain.CardType]Strategy{
			domain.CardTypeMCQ:         StrategyFunc(GradeMCQ),
			domain.CardTypeCloze:       StrategyFunc(GradeCloze),
			domain.CardTypeDefinition:  self,
			domain.CardTypeApplication: self,
			domain.CardTypeConnection:  self,
		},
		semantic: semantic,
	}
}

// Register installs or replaces the strategy for a card type.
func (d *Dispatcher) Register(t domain.CardType, s Strategy) {
	d.strategies[t] = s
}

// Grade implements Grader.
func (d *Dispatcher) Grade(ctx context.Context, card *domain.Card, answer string) (Result, error) {
	if card == nil {
		return Result{}, ErrNilCard
	}

	if s, ok := d.strategies[card.Type]; ok {
		return s.Grade(card, answer), nil
	}

	res, err := d.semantic.JudgeAnswer(ctx, card.Front, card.Back, answer)
	if err != nil {
		return Result{}, fmt.Errorf("semantic grading for %q card: %w", card.Type, err)
	}
	res.Score = clampScore(res.Score)
	return res, nil
}

func clampScore(score int) int {
	if score < domain.MinScore {
		return domain.MinScore
	}
	if score > domain.MaxScore {
		return domain.MaxScore
	}
	return score
}
