package rules

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sdvdiscord/sideshow/internal/ledger"
)

// Submission grants the one-time bonus for a verified post in a submission channel.
// A category the user was already credited for stays silent.
func Submission(env Env, ev Event, acc ledger.UserAccount) (Outcome, error) {
	if ev.Attachments < 1 {
		return Outcome{}, nil
	}
	cat, ok := env.Options.Submission.Category(ev.Category)
	if !ok || acc.HasSubmitted(cat.ChannelID) {
		return Outcome{}, nil
	}
	return Outcome{
		Granted:  true,
		Amount:   cat.Value,
		AddScope: cat.ChannelID,
		Key:      KeySubmissionPrefix + cat.Name,
		Args:     []any{cat.Value},
	}, nil
}

// TierValue reads the award value printed on a review control, e.g. "25" or "+25 coins".
func TierValue(label string) (int64, error) {
	label = strings.TrimSpace(label)
	start := strings.IndexFunc(label, unicode.IsDigit)
	if start < 0 {
		return 0, fmt.Errorf("%w: no value in label %q", ErrInvalidArgument, label)
	}
	end := start
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	v, err := strconv.ParseInt(label[start:end], 10, 64)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: bad value in label %q", ErrInvalidArgument, label)
	}
	return v, nil
}

// Picross pays the tier a staff member picked, taking the value from the control label
// so the message and the payout always agree.
func Picross(_ Env, ev Event, acc ledger.UserAccount) (Outcome, error) {
	value, err := TierValue(ev.Label)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Granted:      true,
		Amount:       value,
		CounterDelta: 1,
		Key:          KeyPicrossAward,
		Args:         []any{value, acc.SpecialCounter + 1},
	}, nil
}

// Donation moves up to the requested amount from the event's account to TargetID.
func Donation(_ Env, ev Event, acc ledger.UserAccount) (Outcome, error) {
	if ev.TargetID == "" || ev.TargetID == ev.UserID {
		return Outcome{}, fmt.Errorf("%w: cannot donate to yourself", ErrInvalidArgument)
	}
	if ev.Amount < 1 {
		return Outcome{}, fmt.Errorf("%w: donation must be at least 1", ErrInvalidArgument)
	}
	transferred := min(acc.Balance, ev.Amount)
	if transferred < 1 {
		return Outcome{}, &InsufficientFundsError{Required: ev.Amount, Balance: acc.Balance}
	}
	return Outcome{
		Granted:  true,
		Amount:   -transferred,
		Transfer: transferred,
		Key:      KeyDonated,
		Args:     []any{transferred, acc.Balance},
	}, nil
}

// Award applies an admin adjustment as is.
func Award(_ Env, ev Event, _ ledger.UserAccount) (Outcome, error) {
	return Outcome{
		Granted: true,
		Amount:  ev.Amount,
		Key:     KeyAward,
		Args:    []any{ev.Amount, ev.UserID},
	}, nil
}
