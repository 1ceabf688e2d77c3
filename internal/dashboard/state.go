package dashboard

import (
	"sync"
	"time"

	"mq-dashboard/internal/domain"
)

// Series is the history of one source since the view started.
type Series struct {
	Source     domain.Source
	Samples    []domain.Sample
	Current    domain.Sample
	HasCurrent bool
}

func (s *Series) append(sample domain.Sample, retention Retention) {
	s.Samples = retention.trim(append(s.Samples, sample))
	s.Current = sample
	s.HasCurrent = true
}

func (s *Series) clone() Series {
	out := *s
	out.Samples = make([]domain.Sample, len(s.Samples))
	for i, sample := range s.Samples {
		out.Samples[i] = cloneSample(sample)
	}
	out.Current = cloneSample(s.Current)
	return out
}

func cloneSample(s domain.Sample) domain.Sample {
	out := s
	out.MessageCount = cloneFloat(s.MessageCount)
	out.Throughput = cloneFloat(s.Throughput)
	out.Latency = cloneFloat(s.Latency)
	out.CPUUsage = cloneFloat(s.CPUUsage)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v)
}

// State holds both series. It is written by the poller and read by the
// presentation layer through Snapshot.
type State struct {
	mu        sync.RWMutex
	retention Retention
	kafka     Series
	rabbitmq  Series
	last      Result
	hasLast   bool
	applied   int
	failed    int
}

func NewState(retention Retention) *State {
	return &State{
		retention: retention,
		kafka:     Series{Source: domain.SourceKafka},
		rabbitmq:  Series{Source: domain.SourceRabbitMQ},
	}
}

// Apply appends one decoded payload to both series. Callers must have
// validated that both sources are present.
func (s *State) Apply(p domain.Payload, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, src := range domain.Sources {
		sample := cloneSample(*p.Get(src))
		sample.ReceivedAt = at
		s.series(src).append(sample, s.retention)
	}
	s.applied++
}

// Record stores the outcome of a tick for display.
func (s *State) Record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = r
	s.hasLast = true
	if r.Outcome == OutcomeFailed {
		s.failed++
	}
}

func (s *State) series(src domain.Source) *Series {
	if src == domain.SourceRabbitMQ {
		return &s.rabbitmq
	}
	return &s.kafka
}

// Snapshot is a deep copy of State, safe to read without locking.
type Snapshot struct {
	Kafka    Series
	RabbitMQ Series
	Last     Result
	HasLast  bool
	Applied  int
	Failed   int
}

func (s Snapshot) Series(src domain.Source) Series {
	if src == domain.SourceRabbitMQ {
		return s.RabbitMQ
	}
	return s.Kafka
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Kafka:    s.kafka.clone(),
		RabbitMQ: s.rabbitmq.clone(),
		Last:     s.last,
		HasLast:  s.hasLast,
		Applied:  s.applied,
		Failed:   s.failed,
	}
}

// Len reports the number of retained samples for src.
func (s *State) Len(src domain.Source) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series(src).Samples)
}
