package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// Common errors
var (
	ErrNilState     = errors.New("card memory state cannot be nil")
	ErrInvalidScore = domain.ErrInvalidScore
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
)

// Service defines the interface for memory model operations
type Service interface {
	// Apply computes the state that results from answering with score at now.
	// The input state is left untouched.
	Apply(
		state *domain.CardMemoryState,
		score int,
		now time.Time,
	) (*domain.CardMemoryState, error)

	// Postpone pushes the next due time forward by a number of days
	Postpone(
		state *domain.CardMemoryState,
		days int,
		now time.Time,
	) (*domain.CardMemoryState, error)
}

type defaultService struct {
	params *Params
}

var _ Service = (*defaultService)(nil)

// NewDefaultService creates a new memory model with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new memory model with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Apply implements Service.
func (s *defaultService) Apply(
	state *domain.CardMemoryState,
	score int,
	now time.Time,
) (*domain.CardMemoryState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if !domain.ValidScore(score) {
		return nil, ErrInvalidScore
	}

	return calculateNextState(state, score, now, s.params), nil
}

// Postpone implements Service. A card without a due date is postponed
// relative to now.
func (s *defaultService) Postpone(
	state *domain.CardMemoryState,
	days int,
	now time.Time,
) (*domain.CardMemoryState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := state.Clone()
	base := now
	if state.NextDueAt != nil {
		base = *state.NextDueAt
	}
	due := base.AddDate(0, 0, days)
	next.NextDueAt = &due

	return next, nil
}
