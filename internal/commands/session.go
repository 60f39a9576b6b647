package commands

import (
	"log/slog"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/metrics"
	"github.com/sdvdiscord/sideshow/internal/responses"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

// Session is the part of *discordgo.Session the handlers use.
type Session interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Alerter forwards a line to the admin log channel.
type Alerter interface {
	Notify(content string)
}

// Deps is everything a handler needs besides the session and the gateway event.
type Deps struct {
	Economy   *economy.Service
	Game      *config.Game
	Switches  *config.Switches
	Text      *responses.Catalog
	Rand      rules.Source
	Cooldowns *Cooldowns
	Alerts    Alerter
	Metrics   *metrics.EconomyMetrics
	Logger    *slog.Logger
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Deps) text(key string, args ...any) string {
	return d.Text.Text(key, d.Rand, args...)
}

func (d *Deps) alert(key string, args ...any) {
	if d.Alerts == nil {
		return
	}
	d.Alerts.Notify(responses.Format(d.Text.Get(key, 0), args...))
}

// isStaff reports whether a member holds an admin or helper role.
func (d *Deps) isStaff(m *discordgo.Member) bool {
	if m == nil {
		return false
	}
	for _, id := range d.Game.Roles.Staff() {
		if slices.Contains(m.Roles, id) {
			return true
		}
	}
	return false
}

func reply(s Session, m *discordgo.Message, content string) {
	if content == "" {
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		slog.Warn("reply failed", "channel_id", m.ChannelID, "error", err)
	}
}

func respond(s Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		slog.Warn("interaction response failed", "interaction_id", i.ID, "error", err)
	}
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
