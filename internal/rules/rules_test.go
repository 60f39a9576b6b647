package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdvdiscord/sideshow/internal/ledger"
)

// fixedDraws returns the scripted values in order, clamped to n-1.
type fixedDraws struct {
	values []int
	calls  int
}

func (f *fixedDraws) Intn(n int) int {
	v := f.values[f.calls%len(f.values)]
	f.calls++
	if v >= n {
		return n - 1
	}
	return v
}

type catalogSizes map[string]int

func (c catalogSizes) Len(key string) int { return c[key] }

var testNow = time.Date(2022, 10, 1, 12, 0, 0, 0, time.UTC)

func testEnv(draws ...int) Env {
	if len(draws) == 0 {
		draws = []int{0}
	}
	return Env{
		Options: Options{
			Fishing: FishingOptions{
				BonusChance: 0.1,
				BonusValue:  5,
				HighValue:   15,
				Duration:    10 * time.Minute,
				Scoreboard: map[string]int64{
					"SDVitemtuna":   5,
					"SDVpufferfish": 10,
					"🦐":             2,
				},
			},
			Strength: StrengthOptions{BonusValue: 3, MaxValue: 10},
			Wheel:    WheelOptions{WinChance: 0.45},
			Fortune:  FortuneOptions{UseValue: 2},
			Submission: SubmissionOptions{Categories: []SubmissionCategory{
				{Name: "art", ChannelID: "100", Value: 20},
				{Name: "food", ChannelID: "200", Value: 10},
			}},
		},
		Rand:    &fixedDraws{values: draws},
		Now:     func() time.Time { return testNow },
		Catalog: catalogSizes{KeyStrengthTiers: 4, KeyFortune: 20},
	}
}

func TestEvaluateUnknownKind(t *testing.T) {
	_, err := Evaluate(testEnv(), Event{Kind: "juggling"}, ledger.UserAccount{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFishing(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		posted  time.Time
		draw    int
		want    int64
		key     string
		granted bool
		bonus   bool
	}{
		{
			name:    "two tuna and a pufferfish",
			text:    "<:SDVitemtuna:1> <:SDVitemtuna:1> <:SDVpufferfish:2>",
			posted:  testNow.Add(-time.Minute),
			draw:    100,
			want:    20,
			key:     KeyFishingValue,
			granted: true,
		},
		{
			name:    "single kind",
			text:    "🦐 🦐",
			posted:  testNow,
			draw:    100,
			want:    4,
			key:     KeyFishingOne,
			granted: true,
		},
		{
			name:    "several kinds below high value",
			text:    "🦐 SDVitemtuna",
			posted:  testNow,
			draw:    100,
			want:    7,
			key:     KeyFishingMany,
			granted: true,
		},
		{
			name:    "bonus draw",
			text:    "🦐",
			posted:  testNow,
			draw:    9,
			want:    7,
			key:     KeyFishingOne,
			granted: true,
			bonus:   true,
		},
		{
			name:   "nothing caught",
			text:   "just a boot",
			posted: testNow,
			draw:   0,
			key:    KeyFishingNone,
		},
		{
			name:   "window expired",
			text:   "SDVitemtuna",
			posted: testNow.Add(-11 * time.Minute),
			draw:   0,
			key:    KeyFishingTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{Kind: KindFishing, Text: tt.text, MessageTime: tt.posted}
			out, err := Evaluate(testEnv(tt.draw), ev, ledger.UserAccount{})
			require.NoError(t, err)
			require.Equal(t, tt.granted, out.Granted)
			require.Equal(t, tt.want, out.Amount)
			require.Equal(t, tt.key, out.Key)
			if tt.bonus {
				require.Equal(t, []string{KeyFishingBonus}, out.Extras)
			} else {
				require.Empty(t, out.Extras)
			}
		})
	}
}

func TestFishScoreBeforeBonus(t *testing.T) {
	score, kinds := FishScore(map[string]int64{"A": 5, "B": 10}, "A x A x B")
	require.Equal(t, int64(20), score)
	require.Equal(t, 2, kinds)
}

func TestStrengthPayoutTable(t *testing.T) {
	const n, maxValue = 4, 10
	for i := 0; i <= n; i++ {
		env := testEnv(i)
		out, err := Strength(env, Event{Kind: KindStrength}, ledger.UserAccount{})
		require.NoError(t, err)

		base := StrengthPayout(i, n, maxValue)
		require.Equal(t, max(int64(1), int64(i*maxValue/n)), base)

		switch i {
		case 0:
			require.Equal(t, base+3, out.Amount)
			require.Equal(t, []string{KeyStrengthWeak}, out.Extras)
		case n:
			require.Equal(t, base+3, out.Amount)
			require.Equal(t, []string{KeyStrengthStrong}, out.Extras)
			require.Equal(t, n-1, out.Index)
		default:
			require.Equal(t, base, out.Amount)
			require.Empty(t, out.Extras)
			require.Equal(t, i, out.Index)
		}
	}
}

func TestStrengthWithoutTiers(t *testing.T) {
	env := testEnv()
	env.Catalog = catalogSizes{}
	_, err := Strength(env, Event{}, ledger.UserAccount{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWheel(t *testing.T) {
	acc := ledger.UserAccount{UserID: "u", Balance: 100}

	t.Run("green loss reads as orange", func(t *testing.T) {
		out, err := Wheel(testEnv(80), Event{Amount: 50, Colour: ColourGreen}, acc)
		require.NoError(t, err)
		require.Equal(t, int64(-50), out.Amount)
		require.Equal(t, KeyWheelLoseB, out.Key)
	})
	t.Run("green win", func(t *testing.T) {
		out, err := Wheel(testEnv(10), Event{Amount: 50, Colour: ColourGreen}, acc)
		require.NoError(t, err)
		require.Equal(t, int64(50), out.Amount)
		require.Equal(t, KeyWheelWinA, out.Key)
	})
	t.Run("orange outcomes", func(t *testing.T) {
		win, err := Wheel(testEnv(44), Event{Amount: 7, Colour: ColourOrange}, acc)
		require.NoError(t, err)
		require.Equal(t, KeyWheelWinB, win.Key)
		lose, err := Wheel(testEnv(60), Event{Amount: 7, Colour: ColourOrange}, acc)
		require.NoError(t, err)
		require.Equal(t, KeyWheelLoseA, lose.Key)
	})
	t.Run("delta is always the wager", func(t *testing.T) {
		for draw := 0; draw < 100; draw++ {
			out, err := Wheel(testEnv(draw), Event{Amount: 13, Colour: ColourGreen}, acc)
			require.NoError(t, err)
			require.Contains(t, []int64{13, -13}, out.Amount)
		}
	})
	t.Run("cannot afford", func(t *testing.T) {
		_, err := Wheel(testEnv(), Event{Amount: 130, Colour: ColourGreen}, acc)
		var funds *InsufficientFundsError
		require.ErrorAs(t, err, &funds)
		require.Equal(t, int64(30), funds.Shortfall())
	})
	t.Run("bad wager", func(t *testing.T) {
		_, err := Wheel(testEnv(), Event{Amount: 0, Colour: ColourGreen}, acc)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
	t.Run("unknown colour", func(t *testing.T) {
		out, err := Wheel(testEnv(), Event{Amount: 5}, acc)
		require.NoError(t, err)
		require.False(t, out.Granted)
		require.Equal(t, KeyWheelColour, out.Key)
	})
}

func TestParseColour(t *testing.T) {
	require.Equal(t, ColourGreen, ParseColour(" Green"))
	require.Equal(t, ColourGreen, ParseColour("blue"))
	require.Equal(t, ColourOrange, ParseColour("ORANGE"))
	require.Equal(t, ColourOrange, ParseColour("red"))
	require.Equal(t, ColourNone, ParseColour("purple"))
}

func TestFortuneIsDeterministic(t *testing.T) {
	first, err := Fortune(testEnv(), Event{Text: "Will it rain tomorrow? I hope not"}, ledger.UserAccount{})
	require.NoError(t, err)
	require.True(t, first.Granted)
	require.True(t, first.Indexed)
	require.Equal(t, int64(2), first.Amount)

	for i := 0; i < 5; i++ {
		again, err := Fortune(testEnv(i), Event{Text: "will IT rain, tomorrow??"}, ledger.UserAccount{})
		require.NoError(t, err)
		require.Equal(t, first.Index, again.Index)
	}
}

func TestFortuneIgnoresDetailedQuestions(t *testing.T) {
	for _, text := range []string{
		"Why is the sky blue?",
		"who ate my pie?",
		"What time is it?",
		"where's the wizard?",
		"How do I fish?",
		"no question here",
		"?!?",
	} {
		out, err := Fortune(testEnv(), Event{Text: text}, ledger.UserAccount{})
		require.NoError(t, err)
		require.True(t, out.Silent(), text)
		require.False(t, out.Granted, text)
	}
}

func TestSubmission(t *testing.T) {
	ev := Event{Kind: KindSubmission, Category: "100", Attachments: 1}

	out, err := Submission(testEnv(), ev, ledger.UserAccount{UserID: "u"})
	require.NoError(t, err)
	require.True(t, out.Granted)
	require.Equal(t, int64(20), out.Amount)
	require.Equal(t, "100", out.AddScope)
	require.Equal(t, "submission_responses_art", out.Key)

	credited := ledger.UserAccount{UserID: "u", SubmittedScopes: []string{"100"}}
	again, err := Submission(testEnv(), ev, credited)
	require.NoError(t, err)
	require.True(t, again.Silent())

	noFiles, err := Submission(testEnv(), Event{Category: "200"}, ledger.UserAccount{})
	require.NoError(t, err)
	require.True(t, noFiles.Silent())
}

func TestTierValue(t *testing.T) {
	tests := []struct {
		label   string
		want    int64
		wantErr bool
	}{
		{label: "25", want: 25},
		{label: " +50 coins", want: 50},
		{label: "Tier 3: 100", want: 3},
		{label: "Reject", wantErr: true},
		{label: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := TierValue(tt.label)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPicross(t *testing.T) {
	out, err := Picross(testEnv(), Event{Label: "30"}, ledger.UserAccount{SpecialCounter: 2})
	require.NoError(t, err)
	require.Equal(t, int64(30), out.Amount)
	require.Equal(t, int64(1), out.CounterDelta)
	require.Equal(t, []any{int64(30), int64(3)}, out.Args)
}

func TestDonation(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		amount   int64
		target   string
		want     int64
		wantErr  error
		poorUser bool
	}{
		{name: "full amount", balance: 100, amount: 30, target: "b", want: 30},
		{name: "capped at balance", balance: 20, amount: 30, target: "b", want: 20},
		{name: "broke", balance: 0, amount: 30, target: "b", poorUser: true},
		{name: "negative balance", balance: -5, amount: 1, target: "b", poorUser: true},
		{name: "self", balance: 100, amount: 30, target: "a", wantErr: ErrInvalidArgument},
		{name: "zero", balance: 100, amount: 0, target: "b", wantErr: ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := ledger.UserAccount{UserID: "a", Balance: tt.balance}
			out, err := Donation(testEnv(), Event{UserID: "a", TargetID: tt.target, Amount: tt.amount}, acc)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.poorUser:
				var funds *InsufficientFundsError
				require.True(t, errors.As(err, &funds))
			default:
				require.NoError(t, err)
				require.Equal(t, tt.want, out.Transfer)
				require.Equal(t, -tt.want, out.Amount)
			}
		})
	}
}

func TestAward(t *testing.T) {
	out, err := Award(testEnv(), Event{UserID: "u", Amount: -40}, ledger.UserAccount{})
	require.NoError(t, err)
	require.Equal(t, int64(-40), out.Amount)
	require.True(t, out.Granted)
}
