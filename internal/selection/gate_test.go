package selection

import (
	"testing"

	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAllowedBands(t *testing.T) {
	t.Parallel()

	easy := []domain.DifficultyBand{domain.DifficultyEasy}
	medium := []domain.DifficultyBand{domain.DifficultyEasy, domain.DifficultyMedium}
	all := []domain.DifficultyBand{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}

	tests := []struct {
		name      string
		knowledge float64
		want      []domain.DifficultyBand
	}{
		{"no knowledge", 0, easy},
		{"just below medium", 39.99, easy},
		{"medium boundary", 40, medium},
		{"hard boundary stays medium", 60, medium},
		{"above hard boundary", 60.01, all},
		{"full knowledge", 100, all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AllowedBands(tt.knowledge))
		})
	}
}

func TestAllows(t *testing.T) {
	t.Parallel()

	assert.True(t, Allows(0, 0.39))
	assert.False(t, Allows(0, 0.4))
	assert.True(t, Allows(40, 0.69))
	assert.False(t, Allows(60, 0.7))
	assert.True(t, Allows(61, 1.0))
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{StrugglingRatio: 0.2}.withDefaults()
	assert.Equal(t, 0.2, cfg.StrugglingRatio)
	assert.Equal(t, 0.5, cfg.StrugglingPoolFraction)
	assert.Equal(t, 2, cfg.MinStrugglingPool)
	assert.Equal(t, 3, cfg.DueFailedLimit)
	assert.Equal(t, 10, cfg.NewLimit)

	custom := NewConfig(0, 0)
	assert.Equal(t, 0.0, custom.StrugglingRatio)
	assert.Zero(t, custom.RecentExclusion)

	invalid := NewConfig(1.5, -1)
	assert.Equal(t, 0.5, invalid.StrugglingRatio)
	assert.Equal(t, DefaultConfig().RecentExclusion, invalid.RecentExclusion)
}
