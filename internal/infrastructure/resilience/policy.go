package resilience

import "time"

// Policy bounds retries and circuit breaking for one class of outbound
// dependency. The zero value is usable; Normalize fills in defaults.
type Policy struct {
	Attempts      int
	Backoff       time.Duration
	BackoffCap    time.Duration
	BackoffFactor float64

	Breaker             bool
	BreakerMinCalls     uint32
	BreakerFailureRatio float64
	BreakerCooldown     time.Duration
	BreakerProbeCalls   uint32
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts:      3,
		Backoff:       100 * time.Millisecond,
		BackoffCap:    400 * time.Millisecond,
		BackoffFactor: 2.0,

		Breaker:             true,
		BreakerMinCalls:     10,
		BreakerFailureRatio: 0.5,
		BreakerCooldown:     30 * time.Second,
		BreakerProbeCalls:   2,
	}
}

func (p Policy) Normalize() Policy {
	def := DefaultPolicy()

	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Backoff <= 0 {
		p.Backoff = def.Backoff
	}
	if p.BackoffCap < p.Backoff {
		p.BackoffCap = p.Backoff
	}
	if p.BackoffFactor < 1.0 {
		p.BackoffFactor = def.BackoffFactor
	}
	if p.BreakerMinCalls == 0 {
		p.BreakerMinCalls = def.BreakerMinCalls
	}
	if p.BreakerFailureRatio <= 0 || p.BreakerFailureRatio > 1 {
		p.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if p.BreakerCooldown <= 0 {
		p.BreakerCooldown = def.BreakerCooldown
	}
	if p.BreakerProbeCalls == 0 {
		p.BreakerProbeCalls = def.BreakerProbeCalls
	}
	return p
}
