package commands

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sdvdiscord/sideshow/internal/rules"
)

// Cooldowns enforces use_rate uses per use_per for each user and game.
type Cooldowns struct {
	limits   map[string]rules.Cooldown
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	clockNow func() time.Time
}

func NewCooldowns(limits map[string]rules.Cooldown) *Cooldowns {
	return &Cooldowns{
		limits:   limits,
		visitors: make(map[string]*rate.Limiter),
		clockNow: time.Now,
	}
}

// Allow consumes one use. When the user is still cooling down it returns false and how
// long until the next use.
func (c *Cooldowns) Allow(game, userID string) (bool, time.Duration) {
	if c == nil {
		return true, 0
	}
	limit, ok := c.limits[game]
	if !ok || limit.Rate <= 0 || limit.Per <= 0 {
		return true, 0
	}

	now := c.clockNow()
	r := c.obtainLimiter(game+":"+userID, limit).ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (c *Cooldowns) obtainLimiter(id string, limit rules.Cooldown) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.visitors[id]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(limit.Per/time.Duration(limit.Rate)), limit.Rate)
	c.visitors[id] = l
	return l
}
