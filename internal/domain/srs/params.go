package srs

// Params defines all configurable parameters for the memory model.
type Params struct {
	// Alpha is the weight of the newest performance in the mastery average.
	Alpha float64

	// Ease factor limits and score-specific penalties
	DefaultEaseFactor   float64
	MinEaseFactor       float64
	BlackoutEasePenalty float64
	HardEasePenalty     float64
	PerfectEaseBonus    float64

	// Interval schedule. GoodIntervals and PerfectIntervals hold the intervals
	// (in days) for the first and second consecutive success; later successes
	// grow multiplicatively.
	BlackoutMinutes  int
	HardIntervalDays float64
	GoodIntervals    [2]float64
	PerfectIntervals [2]float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	Alpha float64

	DefaultEaseFactor   float64
	MinEaseFactor       float64
	BlackoutEasePenalty float64
	HardEasePenalty     float64
	PerfectEaseBonus    float64

	BlackoutMinutes       int
	HardIntervalDays      float64
	FirstGoodInterval     float64
	SecondGoodInterval    float64
	FirstPerfectInterval  float64
	SecondPerfectInterval float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Alpha: 0.3,

		DefaultEaseFactor:   2.5,
		MinEaseFactor:       1.3,
		BlackoutEasePenalty: 0.2,
		HardEasePenalty:     0.1,
		PerfectEaseBonus:    0.3,

		// Forgotten cards come back in 10 minutes
		BlackoutMinutes:  10,
		HardIntervalDays: 1,
		GoodIntervals:    [2]float64{3, 7},
		PerfectIntervals: [2]float64{7, 14},
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.Alpha > 0 && config.Alpha <= 1 {
		params.Alpha = config.Alpha
	}

	// Override ease factor settings if provided
	if config.DefaultEaseFactor > 0 {
		params.DefaultEaseFactor = config.DefaultEaseFactor
	}
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.BlackoutEasePenalty > 0 {
		params.BlackoutEasePenalty = config.BlackoutEasePenalty
	}
	if config.HardEasePenalty > 0 {
		params.HardEasePenalty = config.HardEasePenalty
	}
	if config.PerfectEaseBonus > 0 {
		params.PerfectEaseBonus = config.PerfectEaseBonus
	}

	// Override intervals if provided
	if config.BlackoutMinutes > 0 {
		params.BlackoutMinutes = config.BlackoutMinutes
	}
	if config.HardIntervalDays > 0 {
		params.HardIntervalDays = config.HardIntervalDays
	}
	if config.FirstGoodInterval > 0 {
		params.GoodIntervals[0] = config.FirstGoodInterval
	}
	if config.SecondGoodInterval > 0 {
		params.GoodIntervals[1] = config.SecondGoodInterval
	}
	if config.FirstPerfectInterval > 0 {
		params.PerfectIntervals[0] = config.FirstPerfectInterval
	}
	if config.SecondPerfectInterval > 0 {
		params.PerfectIntervals[1] = config.SecondPerfectInterval
	}

	return params
}

// blackoutIntervalDays is the re-review window for score 0 expressed in days.
func (p *Params) blackoutIntervalDays() float64 {
	return float64(p.BlackoutMinutes) / (24 * 60)
}
