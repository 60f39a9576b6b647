package ledger

import (
	"context"
	"sync"
)

// MemStore keeps records in process memory. Used by tests and local runs without a database.
type MemStore struct {
	mu              sync.RWMutex
	startingBalance int64
	accounts        map[string]UserAccount
	scopes          map[string]GuildScope

	// FailWith, when set, is returned from every call. Tests use it to simulate faults.
	FailWith error
}

func NewMemStore(startingBalance int64) *MemStore {
	return &MemStore{
		startingBalance: startingBalance,
		accounts:        make(map[string]UserAccount),
		scopes:          make(map[string]GuildScope),
	}
}

func (m *MemStore) GetAccount(_ context.Context, userID string) (UserAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return UserAccount{}, Fault("get account", userID, m.FailWith)
	}
	if acc, ok := m.accounts[userID]; ok {
		return acc.Clone(), nil
	}
	return NewAccount(userID, m.startingBalance), nil
}

func (m *MemStore) SaveAccount(_ context.Context, account UserAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Fault("save account", account.UserID, m.FailWith)
	}
	m.accounts[account.UserID] = account.Clone()
	return nil
}

func (m *MemStore) GetScope(_ context.Context, scopeID string) (GuildScope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return GuildScope{}, Fault("get scope", scopeID, m.FailWith)
	}
	if g, ok := m.scopes[scopeID]; ok {
		return g.Clone(), nil
	}
	return GuildScope{ScopeID: scopeID}, nil
}

func (m *MemStore) SaveScope(_ context.Context, scope GuildScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Fault("save scope", scope.ScopeID, m.FailWith)
	}
	m.scopes[scope.ScopeID] = scope.Clone()
	return nil
}

func (m *MemStore) Commit(_ context.Context, change Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Fault("commit", "", m.FailWith)
	}
	for _, acc := range change.Accounts {
		m.accounts[acc.UserID] = acc.Clone()
	}
	if change.Scope != nil {
		m.scopes[change.Scope.ScopeID] = change.Scope.Clone()
	}
	return nil
}
