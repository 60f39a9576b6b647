// Package rules decides the outcome of every award trigger. Rules are pure: they read an
// event and an account snapshot and return an Outcome without touching storage.
package rules

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sdvdiscord/sideshow/internal/ledger"
)

// Kind tags an Event with the rule that resolves it.
type Kind string

const (
	KindFishing    Kind = "fishing"
	KindStrength   Kind = "strength"
	KindWheel      Kind = "wheel"
	KindFortune    Kind = "fortune"
	KindSubmission Kind = "submission"
	KindPicross    Kind = "picross"
	KindDonation   Kind = "donation"
	KindAward      Kind = "award"
)

// Colour is a wheel guess.
type Colour int

const (
	ColourNone Colour = iota
	ColourGreen
	ColourOrange
)

// Event is a normalized trigger. UserID is the account the rule is evaluated against;
// ActorID is whoever caused the trigger (a staff member verifying, an admin awarding).
type Event struct {
	Kind    Kind
	ActorID string
	UserID  string
	ScopeID string

	MessageID   string
	MessageTime time.Time
	Text        string
	Attachments int

	// Amount is the wager, donation, or award value, depending on Kind.
	Amount   int64
	Colour   Colour
	TargetID string
	Category string
	Label    string
}

// Outcome is the decision for one event.
type Outcome struct {
	Granted bool
	// Amount is the balance delta applied to the event's account.
	Amount int64
	// Transfer is credited to the event's TargetID (donations).
	Transfer int64
	// CounterDelta is added to the account's special counter.
	CounterDelta int64
	// AddScope is recorded in the account's submitted scopes.
	AddScope string

	Key  string
	Args []any
	// Index selects a fixed entry of the Key's response list when Indexed is set.
	Index   int
	Indexed bool
	// Extras are response keys rendered as additional lines.
	Extras []string
}

// Silent reports whether there is nothing to tell the user.
func (o Outcome) Silent() bool {
	return o.Key == ""
}

// Source is the random draw used by rules. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// DefaultSource draws from the process-wide generator, which is safe for concurrent use.
type DefaultSource struct{}

func (DefaultSource) Intn(n int) int { return rand.Intn(n) }

// Catalog reports how many response variants exist for a key.
type Catalog interface {
	Len(key string) int
}

// Env is everything a rule may read besides the event and the account.
type Env struct {
	Options Options
	Rand    Source
	Now     func() time.Time
	Catalog Catalog
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Rule resolves one kind of event.
type Rule func(env Env, ev Event, acc ledger.UserAccount) (Outcome, error)

var table = map[Kind]Rule{
	KindFishing:    Fishing,
	KindStrength:   Strength,
	KindWheel:      Wheel,
	KindFortune:    Fortune,
	KindSubmission: Submission,
	KindPicross:    Picross,
	KindDonation:   Donation,
	KindAward:      Award,
}

// Evaluate dispatches the event to the rule registered for its kind.
func Evaluate(env Env, ev Event, acc ledger.UserAccount) (Outcome, error) {
	rule, ok := table[ev.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unknown event kind %q", ErrInvalidArgument, ev.Kind)
	}
	return rule(env, ev, acc)
}
