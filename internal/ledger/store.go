// Package ledger defines the balance records and the storage contract every backend implements.
package ledger

import (
	"context"
	"fmt"
)

// Store persists user and guild records. Reads return a full snapshot of a record and
// create the default record when none exists; writes replace the whole record and are
// durable before they return.
type Store interface {
	GetAccount(ctx context.Context, userID string) (UserAccount, error)
	SaveAccount(ctx context.Context, account UserAccount) error
	GetScope(ctx context.Context, scopeID string) (GuildScope, error)
	SaveScope(ctx context.Context, scope GuildScope) error
	// Commit writes every record in the change as one unit.
	Commit(ctx context.Context, change Change) error
}

// Change is a set of records written together by Commit.
type Change struct {
	Accounts []UserAccount
	Scope    *GuildScope
}

// StorageError reports a failed read or write. The operation that hit it must be abandoned.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Fault wraps err as a StorageError unless it is nil.
func Fault(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}
