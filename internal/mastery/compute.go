package mastery

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
)

// Aggregation constants.
const (
	// MasteredThreshold is the card mastery at which a card counts as mastered.
	MasteredThreshold = 0.8

	// DefaultRecentWindow is how many recent reviews feed the struggle signal.
	DefaultRecentWindow = 10

	lowKnowledgeScore  = 50.0
	lowKnowledgeBonus  = 0.5
	lowAverageScore    = 2.0
	lowAverageBonus    = 0.3
	failingScore       = 2
	failureRateCeiling = 0.6
	highFailureBonus   = 0.4
	maxKnowledgeScore  = 100.0
)

// CardSnapshot pairs a card with the user's memory state for it, if any.
type CardSnapshot struct {
	Card  *domain.Card
	State *domain.CardMemoryState
}

// KnowledgeScore is the difficulty-weighted mean mastery of the cards that
// have a memory state, scaled to 0..100. Cards without state are left out of
// both sums. With no eligible card, or zero total weight, the score is 0.
func KnowledgeScore(cards []CardSnapshot) float64 {
	var weighted, total float64
	for _, c := range cards {
		if c.State == nil || c.Card == nil {
			continue
		}
		weighted += c.State.Mastery * c.Card.BaseDifficulty
		total += c.Card.BaseDifficulty
	}
	if total == 0 {
		return 0
	}
	score := weighted / total * maxKnowledgeScore
	switch {
	case score < 0:
		return 0
	case score > maxKnowledgeScore:
		return maxKnowledgeScore
	default:
		return score
	}
}

// StruggleWeight starts at the baseline and adds independent bonuses for low
// knowledge, a low recent mean score and a high recent failure rate.
// recent holds the scores of the most recent reviews; order does not matter.
func StruggleWeight(knowledge float64, recent []int) float64 {
	weight := domain.BaselineStruggleWeight
	if knowledge < lowKnowledgeScore {
		weight += lowKnowledgeBonus
	}
	if len(recent) == 0 {
		return weight
	}

	var sum, failures int
	for _, s := range recent {
		sum += s
		if s < failingScore {
			failures++
		}
	}
	n := float64(len(recent))
	if float64(sum)/n < lowAverageScore {
		weight += lowAverageBonus
	}
	if float64(failures)/n > failureRateCeiling {
		weight += highFailureBonus
	}
	return weight
}

// Compute builds the full aggregate for one user and topic. recent is the
// windowed score history used for the struggle signal; all is the complete
// history for the topic.
func Compute(
	userID, topicID uuid.UUID,
	cards []CardSnapshot,
	recent []int,
	all []int,
	now time.Time,
) *domain.TopicMemoryState {
	state := domain.NewTopicMemoryState(userID, topicID)
	state.KnowledgeScore = KnowledgeScore(cards)
	state.StruggleWeight = StruggleWeight(state.KnowledgeScore, recent)

	for _, c := range cards {
		if c.State == nil {
			continue
		}
		if c.State.Reviewed() {
			state.CardsSeen++
		}
		if c.State.Mastery >= MasteredThreshold {
			state.CardsMastered++
		}
	}

	state.TotalReviews = len(all)
	if len(all) > 0 {
		var sum int
		for _, s := range all {
			sum += s
		}
		state.AvgCardScore = float64(sum) / float64(len(all))
	}

	practiced := now.UTC()
	state.LastPracticeAt = &practiced
	return state
}

// DocumentProgress is the mean mastery of reviewed cards scaled by the share
// of the document's cards that have been reviewed, as a 0..100 percentage.
// A card counts as reviewed once it has at least one repetition.
func DocumentProgress(states []*domain.CardMemoryState, totalCards int) float64 {
	if totalCards <= 0 {
		return 0
	}
	var seen int
	var mastery float64
	for _, s := range states {
		if s == nil || s.Repetitions <= 0 {
			continue
		}
		seen++
		mastery += s.Mastery
	}
	if seen == 0 {
		return 0
	}
	coverage := float64(seen) / float64(totalCards)
	return mastery / float64(seen) * coverage * 100
}
