package selection

import "github.com/phrazzld/scry-adaptive/internal/domain"

// Knowledge score thresholds for unlocking harder cards. A score of exactly
// 40 unlocks medium; hard needs strictly more than 60.
const (
	mediumUnlockScore = 40.0
	hardUnlockScore   = 60.0
)

// AllowedBands returns the difficulty bands open at the given knowledge score.
func AllowedBands(knowledge float64) []domain.DifficultyBand {
	switch {
	case knowledge < mediumUnlockScore:
		return []domain.DifficultyBand{domain.DifficultyEasy}
	case knowledge <= hardUnlockScore:
		return []domain.DifficultyBand{domain.DifficultyEasy, domain.DifficultyMedium}
	default:
		return []domain.DifficultyBand{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}
	}
}

// Allows reports whether a card of the given difficulty passes the gate.
func Allows(knowledge, difficulty float64) bool {
	band := domain.BandForDifficulty(difficulty)
	for _, b := range AllowedBands(knowledge) {
		if b == band {
			return true
		}
	}
	return false
}
