package dashboard

import (
	"errors"
	"fmt"
	"time"

	"mq-dashboard/internal/domain"
)

type RetentionPolicy string

const (
	RetentionUnbounded RetentionPolicy = "unbounded"
	RetentionRing      RetentionPolicy = "ring"
	RetentionWindow    RetentionPolicy = "window"
)

var ErrInvalidRetention = errors.New("invalid retention policy")

// Retention bounds how many samples a Series keeps. The zero value is unbounded.
type Retention struct {
	Policy RetentionPolicy
	Size   int
	Window time.Duration
}

func (r Retention) Validate() error {
	switch r.Policy {
	case "", RetentionUnbounded:
		return nil
	case RetentionRing:
		if r.Size <= 0 {
			return fmt.Errorf("%w: ring needs a positive size, got %d", ErrInvalidRetention, r.Size)
		}
		return nil
	case RetentionWindow:
		if r.Window <= 0 {
			return fmt.Errorf("%w: window needs a positive duration, got %s", ErrInvalidRetention, r.Window)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRetention, r.Policy)
}

// trim drops the oldest samples that fall outside the policy. samples is in
// arrival order, so everything to drop is a prefix.
func (r Retention) trim(samples []domain.Sample) []domain.Sample {
	switch r.Policy {
	case RetentionRing:
		if r.Size > 0 && len(samples) > r.Size {
			return compact(samples, len(samples)-r.Size)
		}
	case RetentionWindow:
		if r.Window <= 0 || len(samples) == 0 {
			return samples
		}
		cutoff := samples[len(samples)-1].ReceivedAt.Add(-r.Window)
		drop := 0
		for drop < len(samples) && samples[drop].ReceivedAt.Before(cutoff) {
			drop++
		}
		if drop > 0 {
			return compact(samples, drop)
		}
	}
	return samples
}

// compact shifts the tail down so the backing array does not keep growing
// under a bounded policy.
func compact(samples []domain.Sample, drop int) []domain.Sample {
	n := copy(samples, samples[drop:])
	clear(samples[n:])
	return samples[:n]
}
