package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sdvdiscord/sideshow/internal/api"
	"github.com/sdvdiscord/sideshow/internal/bot"
	"github.com/sdvdiscord/sideshow/internal/commands"
	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/db"
	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/guard"
	"github.com/sdvdiscord/sideshow/internal/kvstore"
	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/logging"
	"github.com/sdvdiscord/sideshow/internal/metrics"
	"github.com/sdvdiscord/sideshow/internal/responses"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	game, err := config.LoadGame(cfg.GameConfigPath)
	if err != nil {
		log.Fatalf("Failed to load game config %s: %v", cfg.GameConfigPath, err)
	}
	text, err := responses.Load(cfg.ResponsesPath)
	if err != nil {
		log.Fatalf("Failed to load responses: %v", err)
	}

	logger, logCloser := logging.Setup("sideshow", cfg.Environment, logging.File{
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxMB,
		MaxBackups: cfg.LogBackups,
	})
	defer logCloser.Close()

	store, health, storeCloser, err := openStore(context.Background(), cfg, game.StartingBalance)
	if err != nil {
		logger.Error("failed to open ledger", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer storeCloser.Close()

	m := metrics.Economy()
	svc := economy.NewService(store, rules.Env{
		Options: game.Rules,
		Rand:    rules.DefaultSource{},
		Now:     time.Now,
		Catalog: text,
	}, guard.New(m.ObserveDuplicate), logger, m)

	deps := &commands.Deps{
		Economy:  svc,
		Game:     game,
		Switches: config.NewSwitches(game),
		Text:     text,
		Rand:     rules.DefaultSource{},
		Cooldowns: commands.NewCooldowns(map[string]rules.Cooldown{
			config.ToggleFortune:  game.Rules.Fortune.Cooldown,
			config.ToggleStrength: game.Rules.Strength.Cooldown,
			config.ToggleWheel:    game.Rules.Wheel.Cooldown,
		}),
		Metrics: m,
		Logger:  logger,
	}

	// Initialize Discord bot
	discordBot, err := bot.New(cfg.DiscordToken, deps, game.Channels.Log, m)
	if err != nil {
		logger.Error("failed to create discord bot", "error", err)
		os.Exit(1)
	}

	// Initialize API server
	apiServer := api.New(cfg, svc, game, logger)
	if health != nil {
		apiServer.SetHealthCheck(health)
	}

	if err := discordBot.Start(); err != nil {
		logger.Error("failed to start discord bot", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("api server error", "error", err)
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Warn("api shutdown", "error", err)
	}
	if err := discordBot.Stop(); err != nil {
		logger.Warn("discord shutdown", "error", err)
	}
}

// openStore opens the configured ledger backend. The health check is nil when the backend
// has nothing to probe.
func openStore(ctx context.Context, cfg *config.Config, startingBalance int64) (ledger.Store, func(context.Context) error, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL, startingBalance)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunMigrations(ctx); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
		return database, database.Pool().Ping, closerFunc(database.Close), nil
	case config.BackendBolt:
		kv, err := kvstore.Open(cfg.StorePath, startingBalance, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, nil, kv, nil
	default:
		slog.Warn("using the in-memory ledger; balances are lost on restart")
		return ledger.NewMemStore(startingBalance), nil, closerFunc(func() {}), nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
