package rules

import (
	"strings"

	"github.com/sdvdiscord/sideshow/internal/ledger"
)

// FishScore sums the scoreboard value of every fish emoji in the text and reports how many
// distinct kinds were caught.
func FishScore(scoreboard map[string]int64, text string) (score int64, kinds int) {
	for emoji, points := range scoreboard {
		n := strings.Count(text, emoji)
		if n == 0 {
			continue
		}
		score += int64(n) * points
		kinds++
	}
	return score, kinds
}

// Fishing scores a reaction on a fishing message. The reaction must land within the
// configured window of the message being posted.
func Fishing(env Env, ev Event, _ ledger.UserAccount) (Outcome, error) {
	opts := env.Options.Fishing
	if env.now().Sub(ev.MessageTime) > opts.Duration {
		return Outcome{Key: KeyFishingTimeout}, nil
	}

	score, kinds := FishScore(opts.Scoreboard, ev.Text)
	if score <= 0 {
		return Outcome{Key: KeyFishingNone}, nil
	}

	out := Outcome{Granted: true, Amount: score}
	if float64(env.Rand.Intn(101)) < opts.BonusChance*100 {
		out.Amount += opts.BonusValue
		out.Extras = append(out.Extras, KeyFishingBonus)
	}

	switch {
	case score >= opts.HighValue:
		out.Key = KeyFishingValue
	case kinds == 1:
		out.Key = KeyFishingOne
	default:
		out.Key = KeyFishingMany
	}
	out.Args = []any{out.Amount}
	return out, nil
}
