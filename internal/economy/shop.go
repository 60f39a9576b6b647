package economy

import (
	"context"
	"slices"

	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

// Offer is one role for sale in the shop.
type Offer struct {
	Name          string `yaml:"name" json:"name"`
	Cost          int64  `yaml:"cost" json:"cost"`
	RoleID        string `yaml:"role_id" json:"role_id"`
	ResponseIndex int    `yaml:"response_index" json:"-"`
}

// SortOffers orders offers by ascending cost, keeping the configured order for ties.
func SortOffers(offers []Offer) {
	slices.SortStableFunc(offers, func(a, b Offer) int {
		switch {
		case a.Cost < b.Cost:
			return -1
		case a.Cost > b.Cost:
			return 1
		}
		return 0
	})
}

// RoleGranter performs the role change for a purchase: every other shop role is removed
// and the offer's role is added.
type RoleGranter interface {
	GrantShopRole(ctx context.Context, userID string, offer Offer) error
}

// ShopPublisher sends the shop message, or edits it when current is set, and returns where
// it now lives.
type ShopPublisher interface {
	PublishShop(ctx context.Context, current *ledger.MessageRef) (ledger.MessageRef, error)
}

// Purchase is a completed shop transaction.
type Purchase struct {
	TraceID string
	Offer   Offer
	Account ledger.UserAccount
}

// Purchase buys offer for userID. The balance is checked against a fresh read, the role
// change is made, and only then is the cost deducted. A failed role change leaves the
// ledger untouched.
func (s *Service) Purchase(ctx context.Context, userID string, offer Offer, granter RoleGranter) (Purchase, error) {
	p := Purchase{Offer: offer}
	res := Result{}
	log := s.logger.With("user_id", userID, "offer", offer.Name)

	unlock := s.locks.lock(userLock(userID))
	defer unlock()

	acc, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		_, err = s.fail(log, "purchase", res, err)
		return p, err
	}
	p.Account = acc
	if acc.Balance < offer.Cost {
		_, err = s.fail(log, "purchase", res, &rules.InsufficientFundsError{Required: offer.Cost, Balance: acc.Balance})
		return p, err
	}

	if err := granter.GrantShopRole(ctx, userID, offer); err != nil {
		_, err = s.fail(log, "purchase", res, &ExternalError{Op: "grant shop role", Err: err})
		return p, err
	}

	acc.Credit(-offer.Cost)
	if err := s.store.Commit(ctx, ledger.Change{Accounts: []ledger.UserAccount{acc}}); err != nil {
		// the role is already granted; this needs an admin to settle by hand
		_, err = s.fail(log, "purchase", res, err)
		return p, err
	}
	p.Account = acc
	s.metrics.ObservePurchase(offer.Name)
	log.Info("shop purchase", "cost", offer.Cost, "balance", acc.Balance)
	return p, nil
}

// PublishShop posts or refreshes the persistent shop message for a scope and records its
// location.
func (s *Service) PublishShop(ctx context.Context, scopeID string, publisher ShopPublisher) (ledger.MessageRef, error) {
	unlock := s.locks.lock(scopeLock(scopeID))
	defer unlock()

	scope, err := s.store.GetScope(ctx, scopeID)
	if err != nil {
		return ledger.MessageRef{}, err
	}
	ref, err := publisher.PublishShop(ctx, scope.ShopMessageRef)
	if err != nil {
		return ledger.MessageRef{}, &ExternalError{Op: "publish shop", Err: err}
	}
	scope.ShopMessageRef = &ref
	if err := s.store.SaveScope(ctx, scope); err != nil {
		return ref, err
	}
	s.logger.Info("shop published", "scope_id", scopeID, "channel_id", ref.ChannelID, "message_id", ref.MessageID)
	return ref, nil
}
