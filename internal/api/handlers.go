package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sdvdiscord/sideshow/internal/economy"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health(r.Context()); err != nil {
			a.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Public handlers
func (a *API) handleShop(w http.ResponseWriter, r *http.Request) {
	offers := a.game.Shop
	if offers == nil {
		offers = []economy.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

func (a *API) handleEarnings(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflake(mux.Vars(r)["guild_id"])
	if !ok {
		http.Error(w, "invalid guild_id", http.StatusBadRequest)
		return
	}
	scope, err := a.economy.Earnings(r.Context(), guildID)
	if err != nil {
		a.storageError(w, "earnings", err)
		return
	}
	scope.ShopMessageRef = nil
	writeJSON(w, http.StatusOK, scope)
}

func (a *API) handleUserBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := snowflake(mux.Vars(r)["user_id"])
	if !ok {
		http.Error(w, "invalid user_id", http.StatusBadRequest)
		return
	}
	a.writeAccount(w, r, userID)
}

// Protected handlers
func (a *API) handleMyBalance(w http.ResponseWriter, r *http.Request) {
	a.writeAccount(w, r, claimsFrom(r.Context()).UserID)
}

// guildEarnings is a guild the user is in, with the event total recorded for it.
type guildEarnings struct {
	DiscordGuild
	Earnings int64 `json:"earnings"`
}

func (a *API) handleUserGuilds(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	guilds, err := a.getDiscordGuilds(r.Context(), claims.AccessToken)
	if err != nil {
		a.logger.Warn("failed to get guilds", "user_id", claims.UserID, "error", err)
		http.Error(w, "failed to get guilds", http.StatusBadGateway)
		return
	}

	out := make([]guildEarnings, 0, len(guilds))
	for _, g := range guilds {
		scope, err := a.economy.Earnings(r.Context(), g.ID)
		if err != nil {
			a.storageError(w, "earnings", err)
			return
		}
		if scope.TotalEarnings == 0 {
			continue
		}
		out = append(out, guildEarnings{DiscordGuild: g, Earnings: scope.TotalEarnings})
	}
	writeJSON(w, http.StatusOK, out)
}

// Helper functions
func (a *API) writeAccount(w http.ResponseWriter, r *http.Request, userID string) {
	acc, err := a.economy.Balance(r.Context(), userID)
	if err != nil {
		a.storageError(w, "balance", err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (a *API) storageError(w http.ResponseWriter, op string, err error) {
	a.logger.Error("ledger read failed", "op", op, "error", err)
	http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
}

func snowflake(id string) (string, bool) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}
