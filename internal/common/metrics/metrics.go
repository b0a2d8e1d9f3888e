package metrics

import "sync"

// Counter names used across the wizard
const (
	CounterFormMerges           = "form_merges"
	CounterStepAdvances         = "step_advances"
	CounterStepRetreats         = "step_retreats"
	CounterValidationFailures   = "validation_failures"
	CounterPriceRecomputes      = "price_recomputes"
	CounterVerificationAttempts = "verification_attempts"
	CounterPaymentSuccesses     = "payment_successes"
	CounterPaymentFailures      = "payment_failures"
)

// Collector defines the interface for metrics collection
type Collector interface {
	IncrementCounter(name string)
	GetCounter(name string) int64
}

type InMemoryCollector struct {
	counters map[string]int64
	mu       sync.RWMutex
}

func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		counters: make(map[string]int64),
	}
}

func (mc *InMemoryCollector) IncrementCounter(name string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.counters[name]++
}

func (mc *InMemoryCollector) GetCounter(name string) int64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.counters[name]
}

// Snapshot returns a copy of all counters, for the metrics endpoint.
func (mc *InMemoryCollector) Snapshot() map[string]int64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := make(map[string]int64, len(mc.counters))
	for k, v := range mc.counters {
		out[k] = v
	}
	return out
}
