package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/oauth2"

	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/economy"
)

const defaultDiscordAPI = "https://discord.com/api"

type API struct {
	router      *mux.Router
	economy     *economy.Service
	game        *config.Game
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
	discordAPI  string
	logger      *slog.Logger
	server      *http.Server
	health      func(context.Context) error
}

func New(cfg *config.Config, svc *economy.Service, game *config.Game, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	api := &API{
		router:     mux.NewRouter(),
		economy:    svc,
		game:       game,
		config:     cfg,
		jwtSecret:  []byte(cfg.JWTSecret),
		discordAPI: defaultDiscordAPI,
		logger:     logger,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")

	// Auth endpoints
	if a.config.OAuthEnabled() {
		a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
		a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
		a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")
	}

	// Public endpoints
	a.router.HandleFunc("/api/public/shop", a.handleShop).Methods("GET")
	a.router.HandleFunc("/api/public/guilds/{guild_id}/earnings", a.handleEarnings).Methods("GET")
	a.router.HandleFunc("/api/public/users/{user_id}/balance", a.handleUserBalance).Methods("GET")

	// Web interface
	a.router.HandleFunc("/", a.handleWebInterface).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/user/balance", a.handleMyBalance).Methods("GET")
	protected.HandleFunc("/user/guilds", a.handleUserGuilds).Methods("GET")
}

// SetHealthCheck makes /healthz report the result of check, such as a database ping.
func (a *API) SetHealthCheck(check func(context.Context) error) {
	a.health = check
}

// Handler is the router wrapped in the CORS policy.
func (a *API) Handler() http.Handler {
	// Note: When AllowedOrigins is "*", AllowCredentials must be false
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until Shutdown is called.
func (a *API) Start() error {
	a.server = &http.Server{
		Addr:              a.config.WebBind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info("api server listening", "addr", a.config.WebBind)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
