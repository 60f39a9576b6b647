package rules

import "time"

// Options are the game parameters read by the rules. They are loaded and validated by the
// config package and never modified here.
type Options struct {
	Fishing    FishingOptions    `yaml:"fishing"`
	Fortune    FortuneOptions    `yaml:"fortune"`
	Strength   StrengthOptions   `yaml:"strength"`
	Wheel      WheelOptions      `yaml:"wheel"`
	Submission SubmissionOptions `yaml:"submissions"`
	Picross    PicrossOptions    `yaml:"picross"`
}

// Cooldown limits how often one user may play a game.
type Cooldown struct {
	Rate int           `yaml:"use_rate"`
	Per  time.Duration `yaml:"use_per"`
}

type FishingOptions struct {
	Enabled     bool             `yaml:"enabled"`
	BonusChance float64          `yaml:"bonus_chance"`
	BonusValue  int64            `yaml:"bonus_value"`
	HighValue   int64            `yaml:"high_value"`
	Duration    time.Duration    `yaml:"duration"`
	Scoreboard  map[string]int64 `yaml:"scoreboard"`
}

type FortuneOptions struct {
	Enabled  bool  `yaml:"enabled"`
	UseValue int64 `yaml:"use_value"`
	Cooldown `yaml:",inline"`
}

type StrengthOptions struct {
	Enabled    bool  `yaml:"enabled"`
	BonusValue int64 `yaml:"bonus_value"`
	MaxValue   int64 `yaml:"max_value"`
	Cooldown   `yaml:",inline"`
}

type WheelOptions struct {
	Enabled   bool    `yaml:"enabled"`
	WinChance float64 `yaml:"win_chance"`
	Cooldown  `yaml:",inline"`
}

// SubmissionCategory is a channel whose posts earn a one-time bonus once verified.
type SubmissionCategory struct {
	Name      string `yaml:"name"`
	ChannelID string `yaml:"channel_id"`
	Value     int64  `yaml:"value"`
}

type SubmissionOptions struct {
	Enabled    bool                 `yaml:"enabled"`
	Categories []SubmissionCategory `yaml:"categories"`
}

// Category looks up the category configured for a channel.
func (o SubmissionOptions) Category(channelID string) (SubmissionCategory, bool) {
	for _, c := range o.Categories {
		if c.ChannelID == channelID {
			return c, true
		}
	}
	return SubmissionCategory{}, false
}

type PicrossOptions struct {
	Enabled bool    `yaml:"enabled"`
	Tiers   []int64 `yaml:"tiers"`
}
