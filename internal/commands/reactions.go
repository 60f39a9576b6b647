package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

const confirmEmoji = "✅"

// HandleReaction runs the reaction-driven awards: staff verifying a submission, and members
// fishing on a staff message.
func HandleReaction(ctx context.Context, s Session, r *discordgo.MessageReactionAdd, d *Deps) {
	if r.GuildID == "" || (r.Member != nil && r.Member.User != nil && r.Member.User.Bot) {
		return
	}
	verify := d.Switches.Enabled(config.ToggleSubmission)
	fish := d.Switches.Enabled(config.ToggleFishing)
	if !verify && !fish {
		return
	}

	msg, err := s.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		d.logger().Warn("fetch reacted message failed", "channel_id", r.ChannelID, "message_id", r.MessageID, "error", err)
		return
	}
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	if verify {
		verifySubmission(ctx, s, r, msg, d)
	}
	if fish {
		catchFish(ctx, s, r, msg, d)
	}
}

func verifySubmission(ctx context.Context, s Session, r *discordgo.MessageReactionAdd, msg *discordgo.Message, d *Deps) {
	if _, ok := d.Game.Rules.Submission.Category(r.ChannelID); !ok || !d.isStaff(r.Member) {
		return
	}
	attachments := len(msg.Attachments) + len(msg.Embeds)
	if attachments == 0 {
		return
	}

	res, err := d.trigger(ctx, rules.Event{
		Kind:        rules.KindSubmission,
		ActorID:     r.UserID,
		UserID:      msg.Author.ID,
		ScopeID:     r.GuildID,
		MessageID:   msg.ID,
		MessageTime: msg.Timestamp,
		Category:    r.ChannelID,
		Attachments: attachments,
	})
	if err != nil || !res.Outcome.Granted {
		return
	}
	if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, confirmEmoji, discordgo.WithContext(ctx)); err != nil {
		d.logger().Warn("confirm reaction failed", "message_id", msg.ID, "error", err)
	}
	reply(s, msg, d.Text.Render(res.Outcome, d.Rand))
}

// catchFish pays the reacting member for the fish on a staff message. Messages without
// fish are ignored so stray reactions stay quiet.
func catchFish(ctx context.Context, s Session, r *discordgo.MessageReactionAdd, msg *discordgo.Message, d *Deps) {
	if score, _ := rules.FishScore(d.Game.Rules.Fishing.Scoreboard, msg.Content); score <= 0 {
		return
	}
	author := msg.Member
	if author == nil {
		m, err := s.GuildMember(r.GuildID, msg.Author.ID, discordgo.WithContext(ctx))
		if err != nil {
			d.logger().Warn("fetch message author failed", "user_id", msg.Author.ID, "error", err)
			return
		}
		author = m
	}
	if !d.isStaff(author) {
		return
	}

	res, err := d.trigger(ctx, rules.Event{
		Kind:        rules.KindFishing,
		ActorID:     r.UserID,
		UserID:      r.UserID,
		ScopeID:     r.GuildID,
		MessageID:   msg.ID,
		MessageTime: msg.Timestamp,
		Text:        msg.Content,
	})
	if err != nil || res.Duplicate || res.Outcome.Silent() {
		return
	}

	channelID := d.Game.Channels.Fishing
	if channelID == "" {
		channelID = msg.ChannelID
	}
	content := joinLines(mention(r.UserID)+" "+d.Text.Render(res.Outcome, d.Rand), d.balanceLine(res.Outcome.Amount))
	_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{r.UserID},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		d.logger().Warn("fishing announcement failed", "channel_id", channelID, "error", err)
	}
}
