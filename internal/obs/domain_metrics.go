package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts price quote evaluations by outcome.
	QuoteTotal *prometheus.CounterVec
	// QuoteDuration records end-to-end quote evaluation latency in milliseconds.
	QuoteDuration prometheus.Histogram
	// DiscountsApplied counts discounts applied across all evaluations.
	DiscountsApplied prometheus.Counter
	// DiscountsRejected counts discounts rejected across all evaluations.
	DiscountsRejected prometheus.Counter
	// RuleCacheTotal counts rule forest cache lookups by result.
	RuleCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of price quote evaluations by outcome.",
		}, []string{"result"})
		QuoteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_ms",
			Help:      "Latency for quote evaluation in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})
		DiscountsApplied = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discounts_applied_total",
			Help:      "Total number of discounts applied across quote evaluations.",
		})
		DiscountsRejected = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discounts_rejected_total",
			Help:      "Total number of discounts rejected across quote evaluations.",
		})
		RuleCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_cache_total",
			Help:      "Count of rule forest cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteDuration = v
			}
		})
		mustRegisterCollector(reg, DiscountsApplied, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DiscountsApplied = v
			}
		})
		mustRegisterCollector(reg, DiscountsRejected, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DiscountsRejected = v
			}
		})
		mustRegisterCollector(reg, RuleCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RuleCacheTotal = v
			}
		})
	})
}

// CountQuote records a quote evaluation outcome. Safe before registration;
// unregistered collectors are skipped.
func CountQuote(result string) {
	if QuoteTotal != nil {
		QuoteTotal.WithLabelValues(result).Inc()
	}
}

// CountRuleCache records a rule forest cache lookup result.
func CountRuleCache(result string) {
	if RuleCacheTotal != nil {
		RuleCacheTotal.WithLabelValues(result).Inc()
	}
}

// CountAuditEntries records the audit trail sizes of one evaluation.
func CountAuditEntries(applied, rejected int) {
	if DiscountsApplied != nil && applied > 0 {
		DiscountsApplied.Add(float64(applied))
	}
	if DiscountsRejected != nil && rejected > 0 {
		DiscountsRejected.Add(float64(rejected))
	}
}

// ObserveQuoteDuration records quote latency in milliseconds.
func ObserveQuoteDuration(ms float64) {
	if QuoteDuration != nil {
		QuoteDuration.Observe(ms)
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if collector == nil {
		return
	}
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			reuse(are.ExistingCollector)
			return
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
}
