package dashboard

import (
	"time"

	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/util"
)

// Option configures a Poller.
type Option func(*Poller)

// WithTimeout bounds every fetch. Zero leaves fetches unbounded.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		p.timeout = d
	}
}

func WithOverlap(policy OverlapPolicy) Option {
	return func(p *Poller) {
		p.overlap = policy
	}
}

func WithLogger(logger *util.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithRecorder writes every applied sample to store.
func WithRecorder(store domain.SampleStore) Option {
	return func(p *Poller) {
		p.recorder = store
	}
}

// WithResultHandler is called once per tick outcome, outside the poller's lock.
func WithResultHandler(fn func(Result)) Option {
	return func(p *Poller) {
		p.onResult = fn
	}
}

func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(p *Poller) {
		p.newTicker = newTicker
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}
