package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const userAgent = "sideshow/1.0 (+https://github.com/sdvdiscord/sideshow)"

type DiscordUser struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	GlobalName *string `json:"global_name"`
}

type DiscordGuild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// discordGet reads a Discord REST resource on behalf of the logged in user.
func (a *API) discordGet(ctx context.Context, path, accessToken string, out any) error {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.discordAPI+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) getDiscordUser(ctx context.Context, accessToken string) (*DiscordUser, error) {
	user := &DiscordUser{}
	if err := a.discordGet(ctx, "/users/@me", accessToken, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *API) getDiscordGuilds(ctx context.Context, accessToken string) ([]DiscordGuild, error) {
	var guilds []DiscordGuild
	err := a.discordGet(ctx, "/users/@me/guilds", accessToken, &guilds)
	return guilds, err
}

// getUsername prefers the display name over the account handle.
func getUsername(user *DiscordUser) string {
	if user.GlobalName != nil && *user.GlobalName != "" {
		return *user.GlobalName
	}
	return user.Username
}
