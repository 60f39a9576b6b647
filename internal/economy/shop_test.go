package economy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

type fakeGranter struct {
	err   error
	calls []string
}

func (g *fakeGranter) GrantShopRole(_ context.Context, userID string, offer Offer) error {
	g.calls = append(g.calls, userID+":"+offer.RoleID)
	return g.err
}

type fakePublisher struct {
	seen []*ledger.MessageRef
	next ledger.MessageRef
	err  error
}

func (p *fakePublisher) PublishShop(_ context.Context, current *ledger.MessageRef) (ledger.MessageRef, error) {
	p.seen = append(p.seen, current)
	if p.err != nil {
		return ledger.MessageRef{}, p.err
	}
	if current != nil {
		return *current, nil
	}
	return p.next, nil
}

var hat = Offer{Name: "hat", Cost: 60, RoleID: "r-hat"}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("success deducts after the role change", func(t *testing.T) {
		svc, _ := newTestService(t, 0)
		g := &fakeGranter{}
		p, err := svc.Purchase(ctx, "buyer", hat, g)
		require.NoError(t, err)
		require.Equal(t, int64(40), p.Account.Balance)
		require.Equal(t, []string{"buyer:r-hat"}, g.calls)

		acc, err := svc.Balance(ctx, "buyer")
		require.NoError(t, err)
		require.Equal(t, int64(40), acc.Balance)
		require.Zero(t, acc.Earnings)
	})

	t.Run("insufficient funds skips the role change", func(t *testing.T) {
		svc, _ := newTestService(t, 0)
		g := &fakeGranter{}
		_, err := svc.Purchase(ctx, "buyer", Offer{Name: "crown", Cost: 150, RoleID: "r-crown"}, g)
		var funds *rules.InsufficientFundsError
		require.ErrorAs(t, err, &funds)
		require.Equal(t, int64(50), funds.Shortfall())
		require.Empty(t, g.calls)
	})

	t.Run("failed role change leaves the balance", func(t *testing.T) {
		svc, _ := newTestService(t, 0)
		g := &fakeGranter{err: errors.New("missing permissions")}
		_, err := svc.Purchase(ctx, "buyer", hat, g)
		var ext *ExternalError
		require.ErrorAs(t, err, &ext)

		acc, err := svc.Balance(ctx, "buyer")
		require.NoError(t, err)
		require.Equal(t, int64(startingBal), acc.Balance)
	})

	t.Run("concurrent purchases cannot overspend", func(t *testing.T) {
		svc, _ := newTestService(t, 0)
		g := &lockedGranter{}
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.Purchase(ctx, "buyer", hat, g)
			}()
		}
		wg.Wait()

		acc, err := svc.Balance(ctx, "buyer")
		require.NoError(t, err)
		require.Equal(t, int64(40), acc.Balance)
		require.Equal(t, 1, g.count())
	})
}

type lockedGranter struct {
	mu sync.Mutex
	n  int
}

func (g *lockedGranter) GrantShopRole(context.Context, string, Offer) error {
	g.mu.Lock()
	g.n++
	g.mu.Unlock()
	return nil
}

func (g *lockedGranter) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

func TestPublishShop(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()
	pub := &fakePublisher{next: ledger.MessageRef{ChannelID: "shop", MessageID: "s1"}}

	ref, err := svc.PublishShop(ctx, testScope, pub)
	require.NoError(t, err)
	require.Equal(t, "s1", ref.MessageID)

	_, err = svc.PublishShop(ctx, testScope, pub)
	require.NoError(t, err)
	require.Len(t, pub.seen, 2)
	require.Nil(t, pub.seen[0])
	require.Equal(t, &ref, pub.seen[1])

	scope, err := svc.Earnings(ctx, testScope)
	require.NoError(t, err)
	require.Equal(t, &ref, scope.ShopMessageRef)

	pub.err = errors.New("channel deleted")
	_, err = svc.PublishShop(ctx, testScope, pub)
	require.Equal(t, "external", Class(err))
}

func TestSortOffers(t *testing.T) {
	offers := []Offer{{Name: "c", Cost: 300}, {Name: "a", Cost: 100}, {Name: "b", Cost: 100}}
	SortOffers(offers)
	require.Equal(t, []string{"a", "b", "c"}, []string{offers[0].Name, offers[1].Name, offers[2].Name})
}
