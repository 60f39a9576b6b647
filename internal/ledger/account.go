package ledger

import (
	"slices"
	"strings"
)

// ListDelimiter separates submitted scope identifiers in the persisted list field.
const ListDelimiter = " "

// UserAccount is the per-user balance record.
type UserAccount struct {
	UserID          string   `json:"user_id"`
	Balance         int64    `json:"balance"`
	Earnings        int64    `json:"earnings"`
	SpecialCounter  int64    `json:"picross_count"`
	SubmittedScopes []string `json:"submitted_channels,omitempty"`
}

// NewAccount returns the record a user starts with on first lookup.
func NewAccount(userID string, startingBalance int64) UserAccount {
	return UserAccount{UserID: userID, Balance: startingBalance}
}

// HasSubmitted reports whether the scope has already been credited for this user.
func (a UserAccount) HasSubmitted(scope string) bool {
	return slices.Contains(a.SubmittedScopes, scope)
}

// Credit applies a balance delta. Positive deltas also count towards lifetime earnings.
func (a *UserAccount) Credit(delta int64) {
	a.Balance += delta
	if delta > 0 {
		a.Earnings += delta
	}
}

// Clone returns a copy that shares no slices with a.
func (a UserAccount) Clone() UserAccount {
	a.SubmittedScopes = slices.Clone(a.SubmittedScopes)
	return a
}

// MessageRef points at a message the bot keeps editing, such as the shop.
type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// GuildScope holds guild-wide totals.
type GuildScope struct {
	ScopeID        string      `json:"scope_id"`
	TotalEarnings  int64       `json:"earnings"`
	ShopMessageRef *MessageRef `json:"shop_message,omitempty"`
}

// AddEarnings counts a grant towards the guild total. Non-positive values are ignored.
func (g *GuildScope) AddEarnings(delta int64) {
	if delta > 0 {
		g.TotalEarnings += delta
	}
}

// Clone returns a copy that shares no pointers with g.
func (g GuildScope) Clone() GuildScope {
	if g.ShopMessageRef != nil {
		ref := *g.ShopMessageRef
		g.ShopMessageRef = &ref
	}
	return g
}

// JoinScopes encodes a scope set for the delimited list column.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, ListDelimiter)
}

// SplitScopes decodes the delimited list column. Empty and non-numeric entries are dropped.
func SplitScopes(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ListDelimiter) {
		if s == "" || !isNumeric(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
