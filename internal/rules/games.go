package rules

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"lukechampine.com/blake3"

	"github.com/sdvdiscord/sideshow/internal/ledger"
)

// Strength draws one of N+1 outcomes, N being the number of configured tiers. The two
// extremes carry a bonus.
func Strength(env Env, _ Event, _ ledger.UserAccount) (Outcome, error) {
	opts := env.Options.Strength
	n := env.Catalog.Len(KeyStrengthTiers)
	if n < 1 {
		return Outcome{}, fmt.Errorf("%w: no strength tiers configured", ErrInvalidArgument)
	}

	i := env.Rand.Intn(n + 1)
	out := Outcome{
		Granted: true,
		Amount:  StrengthPayout(i, n, opts.MaxValue),
		Key:     KeyStrengthTiers,
		Index:   min(i, n-1),
		Indexed: true,
	}
	switch i {
	case 0:
		out.Amount += opts.BonusValue
		out.Extras = append(out.Extras, KeyStrengthWeak)
	case n:
		out.Amount += opts.BonusValue
		out.Extras = append(out.Extras, KeyStrengthStrong)
	}
	out.Args = []any{out.Amount}
	return out, nil
}

// StrengthPayout is max(1, floor(i/n*maxValue)) in integer arithmetic.
func StrengthPayout(i, n int, maxValue int64) int64 {
	return max(1, int64(i)*maxValue/int64(n))
}

// ParseColour reads a wheel guess from its first letter.
func ParseColour(query string) Colour {
	q := strings.ToLower(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(q, "g"), strings.HasPrefix(q, "b"):
		return ColourGreen
	case strings.HasPrefix(q, "o"), strings.HasPrefix(q, "r"):
		return ColourOrange
	}
	return ColourNone
}

// Wheel wins or loses exactly the wager. A loss is told as if the other colour landed.
func Wheel(env Env, ev Event, acc ledger.UserAccount) (Outcome, error) {
	if ev.Amount < 1 {
		return Outcome{}, fmt.Errorf("%w: wager must be at least 1", ErrInvalidArgument)
	}
	if acc.Balance < ev.Amount {
		return Outcome{}, &InsufficientFundsError{Required: ev.Amount, Balance: acc.Balance}
	}
	if ev.Colour != ColourGreen && ev.Colour != ColourOrange {
		return Outcome{Key: KeyWheelColour}, nil
	}

	win := float64(env.Rand.Intn(100)) < env.Options.Wheel.WinChance*100
	out := Outcome{Granted: true, Amount: ev.Amount}
	if !win {
		out.Amount = -ev.Amount
	}
	switch {
	case ev.Colour == ColourGreen && win:
		out.Key = KeyWheelWinA
	case ev.Colour == ColourGreen:
		out.Key = KeyWheelLoseB
	case win:
		out.Key = KeyWheelWinB
	default:
		out.Key = KeyWheelLoseA
	}
	out.Args = []any{ev.Amount, acc.Balance + out.Amount}
	return out, nil
}

var detailedQuestions = []string{"why", "who", "what", "where", "how"}

// QuestionStem returns the lowercased letters and digits before the first question mark.
// Questions asking for a detailed answer are not answered.
func QuestionStem(text string) (string, bool) {
	qi := strings.Index(text, "?")
	if qi < 0 {
		return "", false
	}
	var b strings.Builder
	for _, r := range text[:qi] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	stem := b.String()
	if stem == "" {
		return "", false
	}
	for _, w := range detailedQuestions {
		if strings.HasPrefix(stem, w) {
			return "", false
		}
	}
	return stem, true
}

// SeededIndex picks an index in [0, n) that depends only on seed.
func SeededIndex(seed string, n int) int {
	sum := blake3.Sum256([]byte(seed))
	src := rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8])))
	return rand.New(src).Intn(n)
}

// Fortune answers a yes/no style question. The same question always gets the same answer.
func Fortune(env Env, ev Event, _ ledger.UserAccount) (Outcome, error) {
	stem, ok := QuestionStem(ev.Text)
	if !ok {
		return Outcome{}, nil
	}
	n := env.Catalog.Len(KeyFortune)
	if n < 1 {
		return Outcome{}, nil
	}
	return Outcome{
		Granted: true,
		Amount:  env.Options.Fortune.UseValue,
		Key:     KeyFortune,
		Index:   SeededIndex(stem, n),
		Indexed: true,
		Args:    []any{env.Options.Fortune.UseValue},
	}, nil
}
