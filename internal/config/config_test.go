package config

import (
	"testing"
	"time"
)

const sampleGame = `
prefix: "?"
starting_balance: 10
crystalball: true
roles:
  event: "1"
  helper: "2"
  admin: "3"
channels:
  commands: ["10", "11"]
  shop: "20"
  fishing: "30"
  log: "40"
games:
  fishing:
    enabled: true
    bonus_chance: 0.1
    bonus_value: 5
    high_value: 15
    duration: 10m
    scoreboard:
      SDVitemtuna: 5
      SDVpufferfish: 10
  wheel:
    enabled: true
    win_chance: 0.45
    use_rate: 1
    use_per: 30s
  submissions:
    enabled: true
    categories:
      - {name: art, channel_id: "50", value: 20}
      - {name: food, channel_id: "51", value: 10}
  picross:
    tiers: [10, 25, 50]
shop:
  - {name: crown, cost: 500, role_id: "r3", response_index: 2}
  - {name: hat, cost: 100, role_id: "r1", response_index: 0}
`

func TestParseGame(t *testing.T) {
	g, err := ParseGame([]byte(sampleGame))
	if err != nil {
		t.Fatalf("ParseGame() error = %v", err)
	}
	if g.Prefix != "?" || g.StartingBalance != 10 {
		t.Errorf("prefix/starting balance = %q/%d", g.Prefix, g.StartingBalance)
	}
	if g.Rules.Fishing.Duration != 10*time.Minute {
		t.Errorf("fishing duration = %v, want 10m", g.Rules.Fishing.Duration)
	}
	if g.Rules.Wheel.Rate != 1 || g.Rules.Wheel.Per != 30*time.Second {
		t.Errorf("wheel cooldown = %+v", g.Rules.Wheel.Cooldown)
	}
	if got := g.Rules.Fishing.Scoreboard["SDVpufferfish"]; got != 10 {
		t.Errorf("scoreboard pufferfish = %d", got)
	}
	if g.Shop[0].Name != "hat" || g.Shop[1].Name != "crown" {
		t.Errorf("shop not sorted by cost: %+v", g.Shop)
	}
	if cat, ok := g.Rules.Submission.Category("51"); !ok || cat.Name != "food" {
		t.Errorf("Category(51) = %+v, %v", cat, ok)
	}
	if !g.Channels.IsCommandChannel("11") || g.Channels.IsCommandChannel("40") {
		t.Error("IsCommandChannel mismatch")
	}
	if o, ok := g.Offer("r3"); !ok || o.Cost != 500 {
		t.Errorf("Offer(r3) = %+v, %v", o, ok)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Game)
	}{
		{"no staff", func(g *Game) { g.Roles = Roles{Event: "1"} }},
		{"bad bonus chance", func(g *Game) { g.Rules.Fishing.BonusChance = 1.5 }},
		{"bad win chance", func(g *Game) { g.Rules.Wheel.WinChance = -0.1 }},
		{"fishing without window", func(g *Game) { g.Rules.Fishing.Duration = 0 }},
		{"fishing without channel", func(g *Game) { g.Channels.Fishing = "" }},
		{"cooldown without period", func(g *Game) { g.Rules.Wheel.Per = 0 }},
		{"duplicate category", func(g *Game) {
			g.Rules.Submission.Categories[1].ChannelID = g.Rules.Submission.Categories[0].ChannelID
		}},
		{"zero picross tier", func(g *Game) { g.Rules.Picross.Tiers = []int64{0} }},
		{"negative cost", func(g *Game) { g.Shop[0].Cost = -1 }},
		{"shop without channel", func(g *Game) { g.Channels.Shop = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGame([]byte(sampleGame))
			if err != nil {
				t.Fatalf("ParseGame() error = %v", err)
			}
			tt.mutate(g)
			if err := g.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSwitches(t *testing.T) {
	g, err := ParseGame([]byte(sampleGame))
	if err != nil {
		t.Fatalf("ParseGame() error = %v", err)
	}
	s := NewSwitches(g)
	if !s.Enabled(ToggleFishing) || s.Enabled(ToggleStrength) {
		t.Error("initial toggles do not follow the game file")
	}
	if err := s.Set(ToggleStrength, true); err != nil {
		t.Fatal(err)
	}
	if !s.Enabled(ToggleStrength) {
		t.Error("Set did not enable strength")
	}
	if err := s.Set("juggling", true); err == nil {
		t.Error("Set accepted an unknown toggle")
	}
	if s.Enabled("juggling") {
		t.Error("unknown toggle reported enabled")
	}
}

func TestLoadRequiresBackendSettings(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("STORE_BACKEND", BackendBolt)
	t.Setenv("STORE_PATH", "data.db")
	t.Setenv("LOG_MAX_MB", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorePath != "data.db" || cfg.LogMaxMB != 5 {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("STORE_BACKEND", "sqlite")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted an unknown backend")
	}

	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("LOG_BACKUPS", "many")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted a bad LOG_BACKUPS")
	}
}

func TestExtractBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:3000/api/auth/callback", "http://localhost:3000"},
		{"https://fair.example.com/api/auth/callback", "https://fair.example.com"},
		{"not a url", "http://localhost:3000"},
	}
	for _, tt := range tests {
		if got := extractBaseURL(tt.in); got != tt.want {
			t.Errorf("extractBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
