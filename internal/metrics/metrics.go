package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EconomyMetrics tracks currency movement and rejected triggers.
type EconomyMetrics struct {
	grants        *prometheus.CounterVec
	currency      *prometheus.CounterVec
	duplicates    *prometheus.CounterVec
	failures      *prometheus.CounterVec
	purchases     *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
	alertFailures prometheus.Counter
}

var (
	economyOnce     sync.Once
	economyRegistry *EconomyMetrics
)

// Economy returns the process-wide metrics, registering them on first use.
func Economy() *EconomyMetrics {
	economyOnce.Do(func() {
		economyRegistry = &EconomyMetrics{
			grants: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sideshow_grants_total",
				Help: "Granted outcomes by event kind.",
			}, []string{"kind"}),
			currency: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sideshow_currency_moved_total",
				Help: "Absolute currency moved by event kind.",
			}, []string{"kind"}),
			duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sideshow_duplicate_triggers_total",
				Help: "Triggers rejected because they were already consumed.",
			}, []string{"category"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sideshow_failures_total",
				Help: "Failed operations by kind and error class.",
			}, []string{"kind", "class"}),
			purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sideshow_shop_purchases_total",
				Help: "Completed shop purchases by offer.",
			}, []string{"offer"}),
			rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sideshow_rate_limited_total",
				Help: "Game uses rejected by the per-user cooldown.",
			}, []string{"game"}),
			alertFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "sideshow_alert_delivery_failures_total",
				Help: "Admin alerts that could not be delivered.",
			}),
		}
		prometheus.MustRegister(
			economyRegistry.grants,
			economyRegistry.currency,
			economyRegistry.duplicates,
			economyRegistry.failures,
			economyRegistry.purchases,
			economyRegistry.rateLimited,
			economyRegistry.alertFailures,
		)
	})
	return economyRegistry
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func (m *EconomyMetrics) ObserveGrant(kind string, amount int64) {
	if m == nil {
		return
	}
	kind = orUnknown(kind)
	m.grants.WithLabelValues(kind).Inc()
	if amount < 0 {
		amount = -amount
	}
	m.currency.WithLabelValues(kind).Add(float64(amount))
}

func (m *EconomyMetrics) ObserveDuplicate(category string) {
	if m == nil {
		return
	}
	m.duplicates.WithLabelValues(orUnknown(category)).Inc()
}

func (m *EconomyMetrics) ObserveFailure(kind, class string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(orUnknown(kind), orUnknown(class)).Inc()
}

func (m *EconomyMetrics) ObservePurchase(offer string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(orUnknown(offer)).Inc()
}

func (m *EconomyMetrics) ObserveRateLimited(game string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(orUnknown(game)).Inc()
}

func (m *EconomyMetrics) ObserveAlertFailure() {
	if m == nil {
		return
	}
	m.alertFailures.Inc()
}
