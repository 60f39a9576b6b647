package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

// Game is the event configuration: who is staff, where games run, what they pay.
type Game struct {
	Prefix          string          `yaml:"prefix"`
	StartingBalance int64           `yaml:"starting_balance"`
	CrystalBall     bool            `yaml:"crystalball"`
	Roles           Roles           `yaml:"roles"`
	Channels        Channels        `yaml:"channels"`
	Rules           rules.Options   `yaml:"games"`
	Shop            []economy.Offer `yaml:"shop"`
}

type Roles struct {
	Event  string `yaml:"event"`
	Helper string `yaml:"helper"`
	Admin  string `yaml:"admin"`
}

// Staff returns the roles allowed to verify, award and configure.
func (r Roles) Staff() []string {
	var out []string
	for _, id := range []string{r.Admin, r.Helper} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

type Channels struct {
	Commands []string `yaml:"commands"`
	Shop     string   `yaml:"shop"`
	Fishing  string   `yaml:"fishing"`
	Log      string   `yaml:"log"`
}

// IsCommandChannel reports whether member commands are accepted in channelID.
func (c Channels) IsCommandChannel(channelID string) bool {
	return slices.Contains(c.Commands, channelID)
}

// LoadGame reads and validates the game file. Shop offers are sorted by cost.
func LoadGame(path string) (*Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGame(raw)
}

func ParseGame(raw []byte) (*Game, error) {
	g := &Game{Prefix: "!"}
	if err := yaml.Unmarshal(raw, g); err != nil {
		return nil, fmt.Errorf("game.yaml: %w", err)
	}
	economy.SortOffers(g.Shop)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("game.yaml: %w", err)
	}
	return g, nil
}

func probability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, p)
	}
	return nil
}

func cooldown(name string, c rules.Cooldown) error {
	if c.Rate < 0 || c.Per < 0 {
		return fmt.Errorf("%s cooldown must not be negative", name)
	}
	if c.Rate > 0 && c.Per == 0 {
		return fmt.Errorf("%s cooldown needs use_per", name)
	}
	return nil
}

// Validate checks every parameter the rules rely on.
func (g *Game) Validate() error {
	var errs []error
	if g.Prefix == "" {
		errs = append(errs, errors.New("prefix is required"))
	}
	if len(g.Roles.Staff()) == 0 {
		errs = append(errs, errors.New("at least one of roles.admin or roles.helper is required"))
	}

	o := g.Rules
	errs = append(errs,
		probability("fishing.bonus_chance", o.Fishing.BonusChance),
		probability("wheel.win_chance", o.Wheel.WinChance),
		cooldown("fortune", o.Fortune.Cooldown),
		cooldown("strength", o.Strength.Cooldown),
		cooldown("wheel", o.Wheel.Cooldown),
	)
	if o.Fishing.Enabled {
		if o.Fishing.Duration <= 0 {
			errs = append(errs, errors.New("fishing.duration must be positive"))
		}
		if len(o.Fishing.Scoreboard) == 0 {
			errs = append(errs, errors.New("fishing.scoreboard is empty"))
		}
		if g.Channels.Fishing == "" {
			errs = append(errs, errors.New("channels.fishing is required when fishing is enabled"))
		}
	}
	for emoji, points := range o.Fishing.Scoreboard {
		if points < 0 {
			errs = append(errs, fmt.Errorf("fishing.scoreboard[%s] is negative", emoji))
		}
	}
	if o.Strength.MaxValue < 0 || o.Strength.BonusValue < 0 {
		errs = append(errs, errors.New("strength values must not be negative"))
	}

	seen := make(map[string]bool)
	for _, c := range o.Submission.Categories {
		if c.Name == "" || c.ChannelID == "" {
			errs = append(errs, errors.New("submission categories need a name and channel_id"))
		}
		if seen[c.ChannelID] {
			errs = append(errs, fmt.Errorf("submission channel %s listed twice", c.ChannelID))
		}
		seen[c.ChannelID] = true
		if c.Value < 1 {
			errs = append(errs, fmt.Errorf("submission %s value must be positive", c.Name))
		}
	}
	for _, tier := range o.Picross.Tiers {
		if tier < 1 {
			errs = append(errs, fmt.Errorf("picross tier %d must be positive", tier))
		}
	}

	for _, offer := range g.Shop {
		if offer.Name == "" || offer.RoleID == "" {
			errs = append(errs, errors.New("shop offers need a name and role_id"))
		}
		if offer.Cost < 0 {
			errs = append(errs, fmt.Errorf("shop offer %s has a negative cost", offer.Name))
		}
	}
	if len(g.Shop) > 0 && g.Channels.Shop == "" {
		errs = append(errs, errors.New("channels.shop is required when the shop has offers"))
	}
	return errors.Join(errs...)
}

// Offer looks up a shop offer by role.
func (g *Game) Offer(roleID string) (economy.Offer, bool) {
	for _, o := range g.Shop {
		if o.RoleID == roleID {
			return o, true
		}
	}
	return economy.Offer{}, false
}

// ShopRoles lists every role sold in the shop.
func (g *Game) ShopRoles() []string {
	out := make([]string, 0, len(g.Shop))
	for _, o := range g.Shop {
		out = append(out, o.RoleID)
	}
	return out
}
