package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/economy"
)

// balanceKey picks the variant for a balance query.
func balanceKey(self bool, balance int64) string {
	switch {
	case !self:
		return "balance_responses_other"
	case balance < 1:
		return "balance_responses_none"
	case balance == 1:
		return "balance_responses_one"
	}
	return "balance_responses_many"
}

func HandleBalance(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	userID := m.Author.ID
	if len(args) > 0 {
		id, ok := parseUserID(args[0])
		if !ok {
			reply(s, m.Message, d.usage(usageBalance))
			return
		}
		userID = id
	}
	acc, err := d.Economy.Balance(ctx, userID)
	if err != nil {
		reply(s, m.Message, d.errorText(err, usageBalance))
		return
	}
	reply(s, m.Message, d.text(balanceKey(userID == m.Author.ID, acc.Balance), acc.Balance, mention(userID)))
}

func HandleDonate(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	if len(args) != 2 {
		reply(s, m.Message, d.usage(usageDonate))
		return
	}
	to, ok := parseUserID(args[0])
	amount, okAmount := parseAmount(args[1])
	if !ok || !okAmount {
		reply(s, m.Message, d.usage(usageDonate))
		return
	}

	res, err := d.Economy.Donate(ctx, m.GuildID, m.Author.ID, to, amount)
	if err != nil {
		if economy.Class(err) == "funds" {
			reply(s, m.Message, d.text("balance_responses_too_low"))
			return
		}
		reply(s, m.Message, d.errorText(err, usageDonate))
		return
	}
	reply(s, m.Message, d.Text.Render(res.Outcome, d.Rand))
}

func HandleAward(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	if len(args) != 2 {
		reply(s, m.Message, d.usage(usageAward))
		return
	}
	userID, ok := parseUserID(args[0])
	amount, okAmount := parseAmount(args[1])
	if !ok || !okAmount {
		reply(s, m.Message, d.usage(usageAward))
		return
	}

	res, err := d.Economy.Award(ctx, m.GuildID, m.Author.ID, userID, amount)
	if err != nil {
		reply(s, m.Message, d.errorText(err, usageAward))
		return
	}
	d.alert("log_admin_award", m.Author.ID, userID, signed(amount))
	reply(s, m.Message, joinLines(d.Text.Render(res.Outcome, d.Rand), d.text(balanceKey(false, res.Account.Balance), res.Account.Balance, mention(userID))))
}

// HandleEarnings shows the event's total payout, or corrects it by the given delta.
func HandleEarnings(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	if len(args) == 0 {
		scope, err := d.Economy.Earnings(ctx, m.GuildID)
		if err != nil {
			reply(s, m.Message, d.errorText(err, usageEarnings))
			return
		}
		reply(s, m.Message, d.text("commands_response_earnings_get", scope.TotalEarnings))
		return
	}

	delta, ok := parseAmount(args[0])
	if !ok {
		reply(s, m.Message, d.usage(usageEarnings))
		return
	}
	scope, err := d.Economy.AdjustEarnings(ctx, m.GuildID, delta)
	if err != nil {
		reply(s, m.Message, d.errorText(err, usageEarnings))
		return
	}
	d.alert("log_admin_earnings", m.Author.ID, scope.TotalEarnings)
	reply(s, m.Message, d.text("commands_response_earnings_set", scope.TotalEarnings, signed(delta)))
}

func signed(v int64) string {
	return fmt.Sprintf("%+d", v)
}
