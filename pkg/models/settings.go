package models

// Difficulty selects the operand/operator ranges of the dismiss challenge.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Settings is the process-wide alarm configuration singleton.
type Settings struct {
	DefaultSnoozeTime     int        `json:"defaultSnoozeTime"`     // minutes
	VibrationEnabled      bool       `json:"vibrationEnabled"`
	Volume                int        `json:"volume"`                // 0-100
	GradualVolumeIncrease bool       `json:"gradualVolumeIncrease"`
	FadeInDuration        int        `json:"fadeInDuration"`        // seconds
	MathChallenge         bool       `json:"mathChallenge"`
	ChallengeDifficulty   Difficulty `json:"challengeDifficulty"`
}

// DefaultSettings returns the settings used when nothing has been persisted
// yet or the stored copy cannot be read.
func DefaultSettings() Settings {
	return Settings{
		DefaultSnoozeTime:     5,
		VibrationEnabled:      true,
		Volume:                80,
		GradualVolumeIncrease: true,
		FadeInDuration:        30,
		MathChallenge:         true,
		ChallengeDifficulty:   DifficultyEasy,
	}
}

// SnoozeMinutes returns the snooze interval, falling back to the default
// when the stored value is unusable.
func (s Settings) SnoozeMinutes() int {
	if s.DefaultSnoozeTime <= 0 {
		return DefaultSettings().DefaultSnoozeTime
	}
	return s.DefaultSnoozeTime
}
