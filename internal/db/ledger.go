package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/sdvdiscord/sideshow/internal/ledger"
)

const (
	upsertUserSQL = `
		INSERT INTO users (id, earned, balance, picross_count, submitted_channels)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			earned = EXCLUDED.earned,
			balance = EXCLUDED.balance,
			picross_count = EXCLUDED.picross_count,
			submitted_channels = EXCLUDED.submitted_channels`
	upsertGuildSQL = `
		INSERT INTO guilds (id, earned, shop_channel_id, shop_message_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			earned = EXCLUDED.earned,
			shop_channel_id = EXCLUDED.shop_channel_id,
			shop_message_id = EXCLUDED.shop_message_id`
)

var _ ledger.Store = (*DB)(nil)

func (db *DB) GetAccount(ctx context.Context, userID string) (ledger.UserAccount, error) {
	acc := ledger.UserAccount{UserID: userID}
	var submitted string
	err := db.pool.QueryRow(ctx,
		"SELECT earned, balance, picross_count, submitted_channels FROM users WHERE id = $1",
		userID,
	).Scan(&acc.Earnings, &acc.Balance, &acc.SpecialCounter, &submitted)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.NewAccount(userID, db.startingBalance), nil
	}
	if err != nil {
		return ledger.UserAccount{}, ledger.Fault("get account", userID, err)
	}
	acc.SubmittedScopes = ledger.SplitScopes(submitted)
	return acc, nil
}

func (db *DB) SaveAccount(ctx context.Context, account ledger.UserAccount) error {
	_, err := db.pool.Exec(ctx, upsertUserSQL, userArgs(account)...)
	return ledger.Fault("save account", account.UserID, err)
}

func (db *DB) GetScope(ctx context.Context, scopeID string) (ledger.GuildScope, error) {
	scope := ledger.GuildScope{ScopeID: scopeID}
	var channelID, messageID *string
	err := db.pool.QueryRow(ctx,
		"SELECT earned, shop_channel_id, shop_message_id FROM guilds WHERE id = $1",
		scopeID,
	).Scan(&scope.TotalEarnings, &channelID, &messageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return scope, nil
	}
	if err != nil {
		return ledger.GuildScope{}, ledger.Fault("get scope", scopeID, err)
	}
	if channelID != nil && messageID != nil {
		scope.ShopMessageRef = &ledger.MessageRef{ChannelID: *channelID, MessageID: *messageID}
	}
	return scope, nil
}

func (db *DB) SaveScope(ctx context.Context, scope ledger.GuildScope) error {
	_, err := db.pool.Exec(ctx, upsertGuildSQL, guildArgs(scope)...)
	return ledger.Fault("save scope", scope.ScopeID, err)
}

// Commit writes all records of the change in a single transaction.
func (db *DB) Commit(ctx context.Context, change ledger.Change) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return ledger.Fault("commit", "", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, acc := range change.Accounts {
		if _, err := tx.Exec(ctx, upsertUserSQL, userArgs(acc)...); err != nil {
			return ledger.Fault("commit account", acc.UserID, err)
		}
	}
	if change.Scope != nil {
		if _, err := tx.Exec(ctx, upsertGuildSQL, guildArgs(*change.Scope)...); err != nil {
			return ledger.Fault("commit scope", change.Scope.ScopeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ledger.Fault("commit", "", err)
	}
	return nil
}

func userArgs(acc ledger.UserAccount) []any {
	return []any{acc.UserID, acc.Earnings, acc.Balance, acc.SpecialCounter, ledger.JoinScopes(acc.SubmittedScopes)}
}

func guildArgs(scope ledger.GuildScope) []any {
	var channelID, messageID *string
	if ref := scope.ShopMessageRef; ref != nil {
		channelID, messageID = &ref.ChannelID, &ref.MessageID
	}
	return []any{scope.ScopeID, scope.TotalEarnings, channelID, messageID}
}
