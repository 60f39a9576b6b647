// Package economy applies award decisions to the ledger. It owns the dedup guard policy,
// serialises updates per account, and runs the shop and review transactions.
package economy

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sdvdiscord/sideshow/internal/guard"
	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/metrics"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

// Result is the applied outcome of one trigger.
type Result struct {
	TraceID string
	Outcome rules.Outcome
	// Account is the evaluated account after the change.
	Account ledger.UserAccount
	// Target is the receiving account of a transfer.
	Target *ledger.UserAccount
	// Duplicate is set when the trigger had already been consumed.
	Duplicate bool
}

type Service struct {
	store   ledger.Store
	env     rules.Env
	guard   *guard.Guard
	locks   *keyedLocks
	logger  *slog.Logger
	metrics *metrics.EconomyMetrics
	reviews *reviewBoard
}

// NewService wires the engine. logger and m may be nil.
func NewService(store ledger.Store, env rules.Env, g *guard.Guard, logger *slog.Logger, m *metrics.EconomyMetrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if g == nil {
		g = guard.New(nil)
	}
	return &Service{
		store:   store,
		env:     env,
		guard:   g,
		locks:   newKeyedLocks(),
		logger:  logger.With("component", "economy"),
		metrics: m,
		reviews: newReviewBoard(),
	}
}

// Env returns the rule environment the service evaluates with.
func (s *Service) Env() rules.Env { return s.env }

// triggerKey returns the dedup key for an event, if its kind is guarded.
func triggerKey(ev rules.Event) (guard.TriggerKey, bool) {
	if ev.MessageID == "" {
		return guard.TriggerKey{}, false
	}
	switch ev.Kind {
	case rules.KindSubmission:
		return guard.Global(string(ev.Kind), ev.MessageID), true
	case rules.KindFishing, rules.KindFortune:
		return guard.PerUser(string(ev.Kind), ev.MessageID, ev.UserID), true
	}
	return guard.TriggerKey{}, false
}

// Trigger evaluates ev against the current account and persists the result atomically.
// A trigger that was already consumed returns a Duplicate result and changes nothing.
// The trigger stays consumed even when the write fails.
func (s *Service) Trigger(ctx context.Context, ev rules.Event) (Result, error) {
	res := Result{TraceID: uuid.NewString()}
	log := s.logger.With("trace_id", res.TraceID, "kind", ev.Kind, "user_id", ev.UserID, "message_id", ev.MessageID)

	if key, ok := triggerKey(ev); ok && !s.guard.Claim(key) {
		log.Debug("trigger already consumed")
		res.Duplicate = true
		return res, nil
	}

	unlock := s.locks.lock(userLock(ev.UserID), userLock(ev.TargetID), scopeLock(ev.ScopeID))
	defer unlock()

	acc, err := s.store.GetAccount(ctx, ev.UserID)
	if err != nil {
		return s.fail(log, ev.Kind, res, err)
	}

	out, err := rules.Evaluate(s.env, ev, acc)
	if err != nil {
		return s.fail(log, ev.Kind, res, err)
	}
	res.Outcome = out
	res.Account = acc
	if !out.Granted {
		return res, nil
	}

	acc.Credit(out.Amount)
	acc.SpecialCounter += out.CounterDelta
	if out.AddScope != "" && !acc.HasSubmitted(out.AddScope) {
		acc.SubmittedScopes = append(acc.SubmittedScopes, out.AddScope)
	}
	change := ledger.Change{Accounts: []ledger.UserAccount{acc}}
	inflow := max(out.Amount, 0)

	if out.Transfer > 0 {
		target, err := s.store.GetAccount(ctx, ev.TargetID)
		if err != nil {
			return s.fail(log, ev.Kind, res, err)
		}
		target.Credit(out.Transfer)
		change.Accounts = append(change.Accounts, target)
		inflow += out.Transfer
		res.Target = &target
		res.Outcome.Args = append(res.Outcome.Args, "<@"+target.UserID+">", target.Balance)
	}

	if inflow > 0 && ev.ScopeID != "" {
		scope, err := s.store.GetScope(ctx, ev.ScopeID)
		if err != nil {
			return s.fail(log, ev.Kind, res, err)
		}
		scope.AddEarnings(inflow)
		change.Scope = &scope
	}

	if err := s.store.Commit(ctx, change); err != nil {
		return s.fail(log, ev.Kind, res, err)
	}
	res.Account = acc
	s.metrics.ObserveGrant(string(ev.Kind), out.Amount+out.Transfer)
	log.Info("outcome applied", "amount", out.Amount, "transfer", out.Transfer, "balance", acc.Balance, "key", out.Key)
	return res, nil
}

func (s *Service) fail(log *slog.Logger, kind rules.Kind, res Result, err error) (Result, error) {
	class := Class(err)
	s.metrics.ObserveFailure(string(kind), class)
	switch class {
	case "invalid", "funds":
		log.Debug("trigger rejected", "error", err)
	default:
		log.Error("trigger failed", "error", err)
	}
	return res, err
}

// Donate moves up to amount from one user to another.
func (s *Service) Donate(ctx context.Context, scopeID, fromID, toID string, amount int64) (Result, error) {
	return s.Trigger(ctx, rules.Event{
		Kind:     rules.KindDonation,
		ActorID:  fromID,
		UserID:   fromID,
		TargetID: toID,
		ScopeID:  scopeID,
		Amount:   amount,
	})
}

// Award applies an admin adjustment to a user's balance.
func (s *Service) Award(ctx context.Context, scopeID, adminID, userID string, amount int64) (Result, error) {
	return s.Trigger(ctx, rules.Event{
		Kind:    rules.KindAward,
		ActorID: adminID,
		UserID:  userID,
		ScopeID: scopeID,
		Amount:  amount,
	})
}

// Balance returns a user's account, creating the default record view if absent.
func (s *Service) Balance(ctx context.Context, userID string) (ledger.UserAccount, error) {
	return s.store.GetAccount(ctx, userID)
}

// Earnings returns the lifetime inflow recorded for a scope.
func (s *Service) Earnings(ctx context.Context, scopeID string) (ledger.GuildScope, error) {
	return s.store.GetScope(ctx, scopeID)
}

// AdjustEarnings corrects a scope's recorded earnings by delta. Unlike award inflow the
// correction may be negative; the total is floored at zero.
func (s *Service) AdjustEarnings(ctx context.Context, scopeID string, delta int64) (ledger.GuildScope, error) {
	unlock := s.locks.lock(scopeLock(scopeID))
	defer unlock()

	scope, err := s.store.GetScope(ctx, scopeID)
	if err != nil {
		return scope, err
	}
	scope.TotalEarnings = max(scope.TotalEarnings+delta, 0)
	if err := s.store.SaveScope(ctx, scope); err != nil {
		s.metrics.ObserveFailure("earnings", Class(err))
		return scope, err
	}
	s.logger.Info("earnings adjusted", "scope_id", scopeID, "delta", delta, "total", scope.TotalEarnings)
	return scope, nil
}
