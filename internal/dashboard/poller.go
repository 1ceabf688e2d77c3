package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/util"
)

const DefaultInterval = time.Second

var ErrAlreadyRunning = errors.New("poller is already running")

type OverlapPolicy string

const (
	// OverlapLatest lets ticks overlap and drops responses older than the last applied one.
	OverlapLatest OverlapPolicy = "latest"
	// OverlapSkip never starts a fetch while another is outstanding.
	OverlapSkip OverlapPolicy = "skip"
)

func ParseOverlap(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(s) {
	case "", OverlapLatest:
		return OverlapLatest, nil
	case OverlapSkip:
		return OverlapSkip, nil
	}
	return "", fmt.Errorf("unknown overlap policy %q", s)
}

type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeFailed
	OutcomeStale
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeSkipped:
		return "skipped"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the typed outcome of one tick.
type Result struct {
	Seq     uint64
	Outcome Outcome
	Failure FailureKind
	Err     error
	At      time.Time
}

// Ticker is the subset of time.Ticker the loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Poller fetches the combined metrics once per interval and applies each
// successful response to State in request order.
type Poller struct {
	fetcher   Fetcher
	state     *State
	interval  time.Duration
	timeout   time.Duration
	overlap   OverlapPolicy
	logger    *util.Logger
	recorder  domain.SampleStore
	onResult  func(Result)
	newTicker func(time.Duration) Ticker
	now       func() time.Time

	mu          sync.Mutex
	running     bool
	live        bool
	issued      uint64
	lastApplied uint64
	inFlight    int
	cancel      context.CancelFunc
	stopped     chan struct{}
	fetches     sync.WaitGroup
}

func NewPoller(fetcher Fetcher, state *State, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		fetcher:   fetcher,
		state:     state,
		interval:  interval,
		overlap:   OverlapLatest,
		newTicker: newTimeTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ticks until ctx is cancelled or Stop is called. In-flight fetches are
// cancelled and waited for before it returns, so the Fetcher must honor its context.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.running = true
	p.live = true
	p.cancel = cancel
	p.stopped = make(chan struct{})
	stopped := p.stopped
	p.mu.Unlock()

	ticker := p.newTicker(p.interval)

	p.logger.Info("poller started", zap.Duration("interval", p.interval), zap.String("overlap", string(p.overlap)))

	defer func() {
		ticker.Stop()
		p.mu.Lock()
		p.live = false
		p.mu.Unlock()
		cancel()
		p.fetches.Wait()

		p.mu.Lock()
		p.running = false
		p.cancel = nil
		p.mu.Unlock()
		close(stopped)
		p.logger.Info("poller stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			p.tick(ctx)
		}
	}
}

// Stop halts the loop. No fetch is issued once Stop has been called, and
// results still in flight are discarded. It is safe to call more than once,
// but not from the result handler.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.live = false
	cancel := p.cancel
	stopped := p.stopped
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	if !p.live || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	if p.overlap == OverlapSkip && p.inFlight > 0 {
		p.mu.Unlock()
		p.logger.Debug("tick skipped, fetch still in flight")
		p.report(Result{Outcome: OutcomeSkipped, At: p.now()})
		return
	}
	p.issued++
	seq := p.issued
	p.inFlight++
	p.fetches.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.fetches.Done()

		fetchCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		payload, err := p.fetcher.Fetch(fetchCtx)
		if err == nil {
			err = checkPayload(payload)
		}
		p.complete(seq, payload, err)
	}()
}

func (p *Poller) complete(seq uint64, payload domain.Payload, err error) {
	at := p.now()

	p.mu.Lock()
	p.inFlight--
	if !p.live {
		p.mu.Unlock()
		p.logger.Debug("discarding result after stop", zap.Uint64("seq", seq))
		return
	}

	var result Result
	last := p.lastApplied
	switch {
	case err != nil:
		result = Result{Seq: seq, Outcome: OutcomeFailed, Failure: Classify(err), Err: err, At: at}
	case seq < last:
		result = Result{Seq: seq, Outcome: OutcomeStale, At: at}
	default:
		p.lastApplied = seq
		p.state.Apply(payload, at)
		result = Result{Seq: seq, Outcome: OutcomeApplied, At: at}
	}
	p.mu.Unlock()

	switch result.Outcome {
	case OutcomeFailed:
		p.logger.Error("Failed to fetch metrics",
			zap.Uint64("seq", seq),
			zap.String("kind", result.Failure.String()),
			zap.Error(err))
	case OutcomeStale:
		p.logger.Warn("discarding out-of-order response",
			zap.Uint64("seq", seq),
			zap.Uint64("last_applied", last))
	case OutcomeApplied:
		p.record(payload, at)
	}

	p.report(result)
}

func (p *Poller) record(payload domain.Payload, at time.Time) {
	if p.recorder == nil {
		return
	}
	// Detached from the poll context: an applied sample is written even if Stop races us.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, src := range domain.Sources {
		sample := *payload.Get(src)
		sample.ReceivedAt = at
		if err := p.recorder.StoreSample(ctx, src, sample); err != nil {
			p.logger.Error("failed to record sample", zap.String("source", string(src)), zap.Error(err))
		}
	}
}

func (p *Poller) report(r Result) {
	p.state.Record(r)
	if p.onResult != nil {
		p.onResult(r)
	}
}
