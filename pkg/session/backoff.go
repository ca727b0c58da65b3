package session

import (
	"math/rand"
	"time"
)

// Backoff defaults.
const (
	// InitialBackoff is the delay before the first retry.
	InitialBackoff = 10 * time.Millisecond

	// MaxBackoff is the maximum delay between retries.
	MaxBackoff = 1 * time.Second

	// BackoffMultiplier is the factor by which backoff increases.
	BackoffMultiplier = 2.0
)

// BackoffConfig tunes the delay between retry attempts. An explicit
// Schedule overrides the exponential parameters: attempt n sleeps
// Schedule[n], with the last entry repeating.
type BackoffConfig struct {
	// Schedule, when non-empty, is the exact delay sequence.
	Schedule []time.Duration

	// Initial is the first exponential delay.
	Initial time.Duration

	// Max caps the exponential delay.
	Max time.Duration

	// Multiplier is the exponential growth factor.
	Multiplier float64

	// Jitter is the maximum random extension as a fraction of the base
	// delay. Zero disables jitter, keeping retry timing deterministic.
	Jitter float64
}

// backoff produces the delay sequence for one logical send. Not safe for
// concurrent use; each dispatch owns its own instance.
type backoff struct {
	cfg      BackoffConfig
	current  time.Duration
	attempts int
	rng      *rand.Rand
}

// newBackoff creates a backoff generator, filling in defaults for unset
// exponential parameters.
func newBackoff(cfg BackoffConfig) *backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &backoff{
		cfg:     cfg,
		current: cfg.Initial,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the delay before the next retry and advances the sequence.
func (b *backoff) Next() time.Duration {
	var delay time.Duration

	if len(b.cfg.Schedule) > 0 {
		i := b.attempts
		if i >= len(b.cfg.Schedule) {
			i = len(b.cfg.Schedule) - 1
		}
		delay = b.cfg.Schedule[i]
	} else {
		delay = b.current
		next := time.Duration(float64(b.current) * b.cfg.Multiplier)
		if next > b.cfg.Max {
			next = b.cfg.Max
		}
		b.current = next
	}

	b.attempts++
	return b.addJitter(delay)
}

// Reset rewinds the sequence to its start.
// Called after a successful write.
func (b *backoff) Reset() {
	b.current = b.cfg.Initial
	b.attempts = 0
}

// addJitter adds random jitter to a delay.
func (b *backoff) addJitter(d time.Duration) time.Duration {
	if b.cfg.Jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.cfg.Jitter*b.rng.Float64())
}
