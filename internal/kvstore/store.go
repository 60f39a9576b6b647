// Package kvstore is a single-file ledger backend on bbolt, for deployments without PostgreSQL.
package kvstore

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sdvdiscord/sideshow/internal/ledger"
)

var (
	bucketUsers  = []byte("users")
	bucketGuilds = []byte("guilds")
)

// Store persists ledger records as JSON documents keyed by ID.
type Store struct {
	db              *bolt.DB
	startingBalance int64
}

var _ ledger.Store = (*Store)(nil)

// Open creates (or opens) the database file and its buckets.
func Open(path string, startingBalance int64, options *bolt.Options) (*Store, error) {
	if options == nil {
		options = &bolt.Options{Timeout: time.Second}
	} else if options.Timeout == 0 {
		options.Timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, options)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketUsers, bucketGuilds} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, startingBalance: startingBalance}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetAccount(_ context.Context, userID string) (ledger.UserAccount, error) {
	acc := ledger.NewAccount(userID, s.startingBalance)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketUsers).Get([]byte(userID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &acc)
	})
	if err != nil {
		return ledger.UserAccount{}, ledger.Fault("get account", userID, err)
	}
	return acc, nil
}

func (s *Store) SaveAccount(_ context.Context, account ledger.UserAccount) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketUsers), account.UserID, account)
	})
	return ledger.Fault("save account", account.UserID, err)
}

func (s *Store) GetScope(_ context.Context, scopeID string) (ledger.GuildScope, error) {
	scope := ledger.GuildScope{ScopeID: scopeID}
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketGuilds).Get([]byte(scopeID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &scope)
	})
	if err != nil {
		return ledger.GuildScope{}, ledger.Fault("get scope", scopeID, err)
	}
	return scope, nil
}

func (s *Store) SaveScope(_ context.Context, scope ledger.GuildScope) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketGuilds), scope.ScopeID, scope)
	})
	return ledger.Fault("save scope", scope.ScopeID, err)
}

// Commit writes the change inside one bolt transaction.
func (s *Store) Commit(_ context.Context, change ledger.Change) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		for _, acc := range change.Accounts {
			if err := putJSON(users, acc.UserID, acc); err != nil {
				return err
			}
		}
		if change.Scope != nil {
			return putJSON(tx.Bucket(bucketGuilds), change.Scope.ScopeID, change.Scope)
		}
		return nil
	})
	return ledger.Fault("commit", "", err)
}

func putJSON(bucket *bolt.Bucket, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(key), payload)
}
