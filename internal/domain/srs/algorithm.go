package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// Score values with scheduling meaning.
const (
	scoreBlackout = 0
	scoreHard     = 1
	scoreGood     = 2
	scorePerfect  = 3
)

// calculateMastery folds a new score into the mastery moving average.
//
// Performance is the score normalized to [0,1]. The result is the exponential
// moving average (1-alpha)*mastery + alpha*performance, so the value always
// stays within [0,1] given a starting point within [0,1].
func calculateMastery(current float64, score int, params *Params) float64 {
	performance := float64(score) / float64(domain.MaxScore)
	m := (1-params.Alpha)*current + params.Alpha*performance
	return math.Max(0, math.Min(1, m))
}

// calculateNewEaseFactor applies the SM-2 quality adjustment.
//
// The 0..3 score is mapped to the SM-2 quality scale q in [0,5] and the ease
// factor moves by 0.1 - (5-q)*(0.08 + (5-q)*0.02). A perfect score adds 0.1,
// a blackout subtracts 0.8 before clamping. The result never drops below
// params.MinEaseFactor.
func calculateNewEaseFactor(currentEF float64, score int, params *Params) float64 {
	q := float64(score) / float64(domain.MaxScore) * 5
	delta := 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return clampEase(currentEF+delta, params)
}

func clampEase(ef float64, params *Params) float64 {
	if ef < params.MinEaseFactor {
		return params.MinEaseFactor
	}
	return ef
}

// schedule determines repetitions, interval and final ease factor for a score.
//
// Algorithm behavior:
//   - score 0: repetitions reset, interval becomes the short blackout window,
//     ease takes an extra penalty
//   - score 1: repetitions reset, interval is one day, ease takes a smaller
//     extra penalty
//   - score 2: repetitions grow; the first two successes use fixed intervals,
//     later ones multiply the previous interval by the ease factor
//   - score 3: like score 2 with longer fixed intervals and a multiplier of
//     ease + PerfectEaseBonus
//
// The ease passed in has already been adjusted by calculateNewEaseFactor.
func schedule(
	repetitions int,
	interval float64,
	ease float64,
	score int,
	params *Params,
) (int, float64, float64) {
	switch score {
	case scoreBlackout:
		return 0, params.blackoutIntervalDays(), clampEase(ease-params.BlackoutEasePenalty, params)
	case scoreHard:
		return 0, params.HardIntervalDays, clampEase(ease-params.HardEasePenalty, params)
	case scoreGood:
		repetitions++
		return repetitions, growInterval(repetitions, interval, ease, params.GoodIntervals), ease
	default:
		repetitions++
		next := growInterval(
			repetitions,
			interval,
			ease+params.PerfectEaseBonus,
			params.PerfectIntervals,
		)
		return repetitions, next, ease
	}
}

func growInterval(repetitions int, interval, multiplier float64, fixed [2]float64) float64 {
	switch repetitions {
	case 1:
		return fixed[0]
	case 2:
		return fixed[1]
	default:
		return interval * multiplier
	}
}

// maxDueDays bounds how far ahead a due date is placed. Intervals keep
// growing past it, but the due date stays in the representable range.
const maxDueDays = 1_000_000

// calculateNextDue converts a fractional day interval into a due time.
// Whole days go through AddDate; only the remainder becomes a Duration, which
// would overflow past roughly 290 years.
func calculateNextDue(intervalDays float64, now time.Time) time.Time {
	if intervalDays <= 0 {
		return now
	}
	whole := math.Floor(intervalDays)
	if whole >= maxDueDays {
		return now.AddDate(0, 0, maxDueDays)
	}
	frac := intervalDays - whole
	return now.AddDate(0, 0, int(whole)).Add(time.Duration(frac * float64(24*time.Hour)))
}

// calculateNextState creates a new CardMemoryState reflecting one review.
//
// The input state is never modified; every pointer field of the result is a
// fresh allocation, so callers may keep using the old snapshot.
func calculateNextState(
	state *domain.CardMemoryState,
	score int,
	now time.Time,
	params *Params,
) *domain.CardMemoryState {
	next := state.Clone()

	if next.EaseFactor <= 0 {
		next.EaseFactor = params.DefaultEaseFactor
	}

	next.Mastery = calculateMastery(state.Mastery, score, params)

	ease := calculateNewEaseFactor(next.EaseFactor, score, params)
	next.Repetitions, next.IntervalDays, next.EaseFactor = schedule(
		state.Repetitions,
		state.IntervalDays,
		ease,
		score,
		params,
	)

	s := score
	reviewedAt := now
	due := calculateNextDue(next.IntervalDays, now)
	next.LastScore = &s
	next.LastReviewAt = &reviewedAt
	next.NextDueAt = &due

	return next
}
