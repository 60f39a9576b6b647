package commands

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

const (
	shopPrefix = "shop:"
	shopRowLen = 4
)

// memberRoles swaps a member's shop role through the gateway.
type memberRoles struct {
	s       Session
	guildID string
	current []string
	game    *config.Game
}

func (r memberRoles) GrantShopRole(ctx context.Context, userID string, offer economy.Offer) error {
	opt := discordgo.WithContext(ctx)
	for _, id := range r.game.ShopRoles() {
		if id == offer.RoleID || !slices.Contains(r.current, id) {
			continue
		}
		if err := r.s.GuildMemberRoleRemove(r.guildID, userID, id, opt); err != nil {
			return err
		}
	}
	for _, id := range []string{offer.RoleID, r.game.Roles.Event} {
		if id == "" {
			continue
		}
		if err := r.s.GuildMemberRoleAdd(r.guildID, userID, id, opt); err != nil {
			return err
		}
	}
	return nil
}

// shopMessage posts the shop embed with one button per offer.
type shopMessage struct {
	s         Session
	d         *Deps
	channelID string
}

func (p shopMessage) PublishShop(ctx context.Context, current *ledger.MessageRef) (ledger.MessageRef, error) {
	embeds, components := shopLayout(p.d)
	opt := discordgo.WithContext(ctx)

	if current != nil {
		edit := discordgo.NewMessageEdit(current.ChannelID, current.MessageID)
		edit.Embeds = embeds
		edit.Components = components
		msg, err := p.s.ChannelMessageEditComplex(edit, opt)
		if err == nil {
			return ledger.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
		}
		// the old message may have been deleted; post a fresh one
		p.d.logger().Warn("shop edit failed, sending new message", "error", err)
	}

	msg, err := p.s.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds:     embeds,
		Components: components,
	}, opt)
	if err != nil {
		return ledger.MessageRef{}, err
	}
	return ledger.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func shopLayout(d *Deps) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	var lines []string
	var rows []discordgo.MessageComponent
	var row discordgo.ActionsRow
	for i, offer := range d.Game.Shop {
		label := d.text("shop_role_format", offer.Name, offer.Cost)
		lines = append(lines, "<@&"+offer.RoleID+"> "+label)
		row.Components = append(row.Components, discordgo.Button{
			Label:    label,
			Style:    discordgo.PrimaryButton,
			CustomID: shopPrefix + offer.RoleID,
		})
		if (i+1)%shopRowLen == 0 {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
	}
	if len(row.Components) > 0 {
		rows = append(rows, row)
	}
	embed := &discordgo.MessageEmbed{
		Title:       d.text("shop_title"),
		Description: joinLines(d.text("shop_description"), strings.Join(lines, "\n")),
	}
	return []*discordgo.MessageEmbed{embed}, rows
}

// HandleShopUpdate posts the shop, or refreshes the existing shop message.
func HandleShopUpdate(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, _ []string) {
	channelID := d.Game.Channels.Shop
	ref, err := d.Economy.PublishShop(ctx, m.GuildID, shopMessage{s: s, d: d, channelID: channelID})
	if err != nil {
		reply(s, m.Message, d.errorText(err, "shop"))
		return
	}
	d.alert("log_admin_shop", m.Author.ID, ref.ChannelID)
	reply(s, m.Message, d.text("commands_response_shop_updated", ref.ChannelID))
}

// HandleShopButton buys the offer behind a shop button. Replies are only shown to the buyer.
func HandleShopButton(ctx context.Context, s Session, i *discordgo.InteractionCreate, d *Deps) {
	roleID := strings.TrimPrefix(i.MessageComponentData().CustomID, shopPrefix)
	offer, ok := d.Game.Offer(roleID)
	if !ok || i.Member == nil || i.Member.User == nil {
		respond(s, i, d.text("error_command"), true)
		return
	}
	if slices.Contains(i.Member.Roles, offer.RoleID) {
		respond(s, i, d.text("shop_responses_owned"), true)
		return
	}

	userID := i.Member.User.ID
	granter := memberRoles{s: s, guildID: i.GuildID, current: i.Member.Roles, game: d.Game}
	p, err := d.Economy.Purchase(ctx, userID, offer, granter)
	if err != nil {
		var funds *rules.InsufficientFundsError
		var ext *economy.ExternalError
		switch {
		case errors.As(err, &funds):
		case errors.As(err, &ext):
			d.alert("log_purchase_failed", userID, offer.Name, ext.Err)
		default:
			d.alert("log_storage_failed", userID, "purchase", err)
		}
		respond(s, i, d.errorText(err, "shop"), true)
		return
	}

	respond(s, i, joinLines(
		d.Text.Get("shop_responses_purchase_role", offer.ResponseIndex),
		d.text("shop_responses_purchase", offer.Cost, p.Account.Balance),
	), true)
}
