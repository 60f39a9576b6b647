package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/commands"
)

const handlerTimeout = 15 * time.Second

func (b *Bot) handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, handlerTimeout)
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("connected", "user", event.User.Username, "guilds", len(event.Guilds))

	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			b.logger.Error("failed to register commands", "guild_id", guild.ID, "error", err)
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.logger.Info("guild available", "guild", event.Name, "guild_id", event.ID)
	if err := b.registerGuildCommands(event.ID); err != nil {
		b.logger.Error("failed to register commands", "guild_id", event.ID, "error", err)
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	// Delete existing commands and register new ones
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, commands.GetCommands())
	if err != nil {
		return err
	}
	b.logger.Debug("registered application commands", "guild_id", guildID)
	return nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	ctx, cancel := b.handlerContext()
	defer cancel()

	if commands.Dispatch(ctx, s, m, b.deps) {
		return
	}
	commands.HandleCrystalBall(ctx, s, m, b.deps)
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	ctx, cancel := b.handlerContext()
	defer cancel()
	commands.HandleReaction(ctx, s, r, b.deps)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := b.handlerContext()
	defer cancel()
	commands.HandleInteraction(ctx, s, i, b.deps)
}
