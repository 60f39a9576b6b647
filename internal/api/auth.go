package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	stateCookie = "sideshow_oauth_state"
	sessionTTL  = 24 * time.Hour
	stateTTL    = 10 * time.Minute
)

var errBadState = errors.New("oauth state mismatch")

// Claims is the session carried by the bearer token. AccessToken is the Discord token used
// to list the caller's guilds.
type Claims struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// handleLogin starts the Discord OAuth flow. The state is kept in a short-lived cookie and
// checked again on the callback.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := generateRandomString(32)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": a.oauthConfig.AuthCodeURL(state),
		"state":    state,
	})
}

func checkState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return errBadState
	}
	got := r.URL.Query().Get("state")
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(cookie.Value)) != 1 {
		return errBadState
	}
	return nil
}

func (a *API) authenticateUser(ctx context.Context, code string) (string, *DiscordUser, error) {
	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("token exchange failed: %w", err)
	}
	user, err := a.getDiscordUser(ctx, token.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	session, err := a.issueToken(user, token.AccessToken, time.Now())
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token: %w", err)
	}
	return session, user, nil
}

func (a *API) issueToken(user *DiscordUser, accessToken string, now time.Time) (string, error) {
	claims := &Claims{
		UserID:      user.ID,
		Username:    getUsername(user),
		AccessToken: accessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

func (a *API) parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// handleCallback finishes the login. API clients asking for JSON get the token in the
// body; browsers are sent back to the web page with the token in the fragment.
func (a *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	browser := !strings.Contains(r.Header.Get("Accept"), "application/json")
	fail := func(reason string, status int) {
		if browser {
			http.Redirect(w, r, a.config.WebUIBaseURL+"/?error="+url.QueryEscape(reason), http.StatusSeeOther)
			return
		}
		http.Error(w, reason, status)
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing_code", http.StatusBadRequest)
		return
	}
	if err := checkState(r); err != nil {
		a.logger.Warn("login rejected", "error", err)
		fail("bad_state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/api/auth", MaxAge: -1})

	session, user, err := a.authenticateUser(r.Context(), code)
	if err != nil {
		a.logger.Warn("login failed", "error", err)
		fail("authentication_failed", http.StatusBadGateway)
		return
	}
	a.logger.Info("user logged in", "user_id", user.ID)

	if browser {
		http.Redirect(w, r, a.config.WebUIBaseURL+"/#token="+session, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":    session,
		"user_id":  user.ID,
		"username": getUsername(user),
	})
}

// handleLogout has nothing to revoke; tokens simply expire. The client drops its copy.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func bearerToken(r *http.Request) (string, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := a.parseToken(raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
