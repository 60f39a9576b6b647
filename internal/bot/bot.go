package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/commands"
	"github.com/sdvdiscord/sideshow/internal/metrics"
)

type Bot struct {
	session *discordgo.Session
	deps    *commands.Deps
	alerts  *alertWorker
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the gateway session and wires the event handlers. Admin alerts are posted
// to logChannelID; an empty ID only logs them.
func New(token string, deps *commands.Deps, logChannelID string, m *metrics.EconomyMetrics) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bot := &Bot{
		session: session,
		deps:    deps,
		logger:  deps.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	if bot.logger == nil {
		bot.logger = slog.Default()
	}
	bot.alerts = newAlertWorker(session, logChannelID, bot.logger, m)
	deps.Alerts = bot.alerts

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onMessageReactionAdd)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	return bot, nil
}

func (b *Bot) Start() error {
	b.alerts.start()
	if err := b.session.Open(); err != nil {
		b.alerts.stop()
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("discord bot is running")
	return nil
}

// Stop cancels in-flight handlers, flushes pending alerts and closes the gateway.
func (b *Bot) Stop() error {
	b.cancel()
	b.alerts.stop()
	return b.session.Close()
}
