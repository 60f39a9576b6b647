package config

import (
	"fmt"
	"sync/atomic"
)

// Toggle names accepted by the enable commands.
const (
	ToggleSubmission  = "submission"
	ToggleFishing     = "fishing"
	ToggleFortune     = "fortune"
	ToggleStrength    = "strength"
	ToggleWheel       = "wheel"
	ToggleCrystalBall = "crystalball"
)

// ToggleNames is the display order of the toggles.
var ToggleNames = []string{
	ToggleSubmission, ToggleFishing, ToggleFortune, ToggleStrength, ToggleWheel, ToggleCrystalBall,
}

// Switches are the game toggles admins flip at runtime. They start from the game file and
// are not persisted.
type Switches struct {
	flags map[string]*atomic.Bool
}

func NewSwitches(g *Game) *Switches {
	initial := map[string]bool{
		ToggleSubmission:  g.Rules.Submission.Enabled,
		ToggleFishing:     g.Rules.Fishing.Enabled,
		ToggleFortune:     g.Rules.Fortune.Enabled,
		ToggleStrength:    g.Rules.Strength.Enabled,
		ToggleWheel:       g.Rules.Wheel.Enabled,
		ToggleCrystalBall: g.CrystalBall,
	}
	s := &Switches{flags: make(map[string]*atomic.Bool, len(initial))}
	for name, on := range initial {
		b := &atomic.Bool{}
		b.Store(on)
		s.flags[name] = b
	}
	return s
}

// Enabled reports a toggle; unknown names are off.
func (s *Switches) Enabled(name string) bool {
	b, ok := s.flags[name]
	return ok && b.Load()
}

func (s *Switches) Set(name string, on bool) error {
	b, ok := s.flags[name]
	if !ok {
		return fmt.Errorf("unknown toggle %q", name)
	}
	b.Store(on)
	return nil
}
