package commands

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

// gate checks the toggle and the user's cooldown for a game, replying when refused.
func gate(s Session, m *discordgo.MessageCreate, d *Deps, game string) bool {
	if !d.Switches.Enabled(game) {
		reply(s, m.Message, d.text("error_disabled"))
		return false
	}
	if ok, wait := d.Cooldowns.Allow(game, m.Author.ID); !ok {
		d.Metrics.ObserveRateLimited(game)
		reply(s, m.Message, d.text("error_cooldown", int64(math.Ceil(wait.Seconds()))))
		return false
	}
	return true
}

func (d *Deps) balanceLine(amount int64) string {
	switch {
	case amount > 0:
		return d.text("balance_responses_added", amount)
	case amount < 0:
		return d.text("balance_responses_removed", -amount)
	}
	return ""
}

func joinLines(lines ...string) string {
	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func (d *Deps) trigger(ctx context.Context, ev rules.Event) (economy.Result, error) {
	res, err := d.Economy.Trigger(ctx, ev)
	if err != nil && economy.Class(err) == "storage" {
		d.alert("log_storage_failed", ev.UserID, ev.Kind, err)
	}
	return res, err
}

func HandleWheel(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	if len(args) != 2 {
		reply(s, m.Message, d.usage(usageWheel))
		return
	}
	wager, ok := parseAmount(args[1])
	if !ok {
		reply(s, m.Message, d.usage(usageWheel))
		return
	}
	if !gate(s, m, d, config.ToggleWheel) {
		return
	}

	res, err := d.trigger(ctx, rules.Event{
		Kind:      rules.KindWheel,
		ActorID:   m.Author.ID,
		UserID:    m.Author.ID,
		ScopeID:   m.GuildID,
		MessageID: m.ID,
		Amount:    wager,
		Colour:    rules.ParseColour(args[0]),
	})
	if err != nil {
		reply(s, m.Message, d.errorText(err, usageWheel))
		return
	}
	out := res.Outcome
	if !out.Granted {
		reply(s, m.Message, d.Text.Render(out, d.Rand))
		return
	}
	spin := d.text("wheel_response_format", d.text("wheel_responses_start"), d.Text.Render(out, d.Rand))
	reply(s, m.Message, joinLines(spin, d.balanceLine(out.Amount)))
}

func HandleStrength(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, _ []string) {
	if !gate(s, m, d, config.ToggleStrength) {
		return
	}
	res, err := d.trigger(ctx, rules.Event{
		Kind:      rules.KindStrength,
		ActorID:   m.Author.ID,
		UserID:    m.Author.ID,
		ScopeID:   m.GuildID,
		MessageID: m.ID,
	})
	if err != nil {
		reply(s, m.Message, d.errorText(err, "strength"))
		return
	}
	out := res.Outcome
	swing := d.text("strength_response_format",
		d.text("strength_responses_start"),
		d.text("strength_responses_hit"),
		d.Text.Get("strength_explosion", 0),
		d.text("strength_responses_end"),
		d.Text.Get(out.Key, out.Index),
	)
	lines := []string{swing}
	for _, key := range out.Extras {
		lines = append(lines, d.text(key, out.Args...))
	}
	lines = append(lines, d.balanceLine(out.Amount))
	reply(s, m.Message, joinLines(lines...))
}

// HandleFortune answers the question asked after the command.
func HandleFortune(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	question := strings.Join(args, " ")
	if _, ok := rules.QuestionStem(question); !ok {
		reply(s, m.Message, d.usage(usageFortune))
		return
	}
	if !gate(s, m, d, config.ToggleFortune) {
		return
	}
	if text := fortune(ctx, d, m, question); text != "" {
		reply(s, m.Message, text)
	}
}

// HandleCrystalBall answers plain questions asked in the command channels. It never
// replies with errors; a refused question is simply ignored.
func HandleCrystalBall(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps) {
	if !d.Switches.Enabled(config.ToggleCrystalBall) || !d.Game.Channels.IsCommandChannel(m.ChannelID) {
		return
	}
	if _, ok := rules.QuestionStem(m.Content); !ok {
		return
	}
	if ok, _ := d.Cooldowns.Allow(config.ToggleFortune, m.Author.ID); !ok {
		return
	}
	if text := fortune(ctx, d, m, m.Content); text != "" {
		reply(s, m.Message, text)
	}
}

func fortune(ctx context.Context, d *Deps, m *discordgo.MessageCreate, question string) string {
	res, err := d.trigger(ctx, rules.Event{
		Kind:        rules.KindFortune,
		ActorID:     m.Author.ID,
		UserID:      m.Author.ID,
		ScopeID:     m.GuildID,
		MessageID:   m.ID,
		MessageTime: m.Timestamp,
		Text:        question,
	})
	if err != nil {
		d.logger().Warn("fortune failed", "user_id", m.Author.ID, "error", err)
		return ""
	}
	out := res.Outcome
	if res.Duplicate || out.Silent() {
		return ""
	}
	return joinLines(
		d.text("fortune_responses_start")+" "+d.Text.Render(out, d.Rand),
		d.balanceLine(out.Amount),
	)
}
