package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mq-dashboard/internal/domain"
)

func testPayload(label string, throughput float64) domain.Payload {
	return domain.Payload{
		Kafka: &domain.Sample{
			Timestamp:    domain.Label(label),
			MessageCount: domain.Float(10),
			Throughput:   domain.Float(throughput),
			Latency:      domain.Float(5.5),
			CPUUsage:     domain.Float(20.1),
		},
		RabbitMQ: &domain.Sample{
			Timestamp:    domain.Label(label),
			MessageCount: domain.Float(4),
			Throughput:   domain.Float(throughput / 2),
			Latency:      domain.Float(12.346),
			CPUUsage:     domain.Float(33.33),
		},
	}
}

func TestState_ApplyAppendsAndSetsCurrent(t *testing.T) {
	state := NewState(Retention{})
	at := time.Unix(1700000000, 0)

	state.Apply(testPayload("t1", 100), at)
	state.Apply(testPayload("t2", 200), at.Add(time.Second))

	snap := state.Snapshot()
	require.Len(t, snap.Kafka.Samples, 2)
	require.Len(t, snap.RabbitMQ.Samples, 2)
	assert.Equal(t, 2, snap.Applied)

	assert.True(t, snap.Kafka.HasCurrent)
	assert.Equal(t, snap.Kafka.Samples[1], snap.Kafka.Current, "current is the last appended sample")
	assert.Equal(t, domain.Label("t2"), snap.RabbitMQ.Current.Timestamp)
	assert.Equal(t, at.Add(time.Second), snap.Kafka.Current.ReceivedAt)
	assert.Equal(t, domain.Label("t1"), snap.Kafka.Samples[0].Timestamp, "arrival order is kept")
}

func TestState_SnapshotIsDetached(t *testing.T) {
	state := NewState(Retention{})
	payload := testPayload("t1", 100)
	state.Apply(payload, time.Unix(1, 0))

	// mutating the caller's payload must not reach into the state
	*payload.Kafka.Throughput = 999

	snap := state.Snapshot()
	*snap.Kafka.Current.Latency = 42
	snap.Kafka.Samples[0].Timestamp = "changed"

	again := state.Snapshot()
	assert.Equal(t, 100.0, *again.Kafka.Current.Throughput)
	assert.Equal(t, 5.5, *again.Kafka.Current.Latency)
	assert.Equal(t, domain.Label("t1"), again.Kafka.Samples[0].Timestamp)
}

func TestState_RecordCountsFailures(t *testing.T) {
	state := NewState(Retention{})

	state.Record(Result{Seq: 1, Outcome: OutcomeFailed, Failure: FailureNetwork})
	state.Record(Result{Seq: 2, Outcome: OutcomeApplied})

	snap := state.Snapshot()
	assert.True(t, snap.HasLast)
	assert.Equal(t, OutcomeApplied, snap.Last.Outcome)
	assert.Equal(t, 1, snap.Failed)
	assert.False(t, snap.Kafka.HasCurrent, "recording a result does not touch the series")
}

func TestRetention(t *testing.T) {
	base := time.Unix(1700000000, 0)

	// case 1: ring keeps the newest N
	ring := NewState(Retention{Policy: RetentionRing, Size: 3})
	for i := 0; i < 5; i++ {
		ring.Apply(testPayload(string(rune('a'+i)), float64(i)), base.Add(time.Duration(i)*time.Second))
	}
	snap := ring.Snapshot()
	require.Len(t, snap.Kafka.Samples, 3)
	assert.Equal(t, domain.Label("c"), snap.Kafka.Samples[0].Timestamp)
	assert.Equal(t, domain.Label("e"), snap.Kafka.Current.Timestamp)
	assert.Equal(t, 5, snap.Applied)

	// case 2: window keeps samples within the duration of the newest
	window := NewState(Retention{Policy: RetentionWindow, Window: 2 * time.Second})
	for i := 0; i < 5; i++ {
		window.Apply(testPayload(string(rune('a'+i)), float64(i)), base.Add(time.Duration(i)*time.Second))
	}
	snap = window.Snapshot()
	require.Len(t, snap.RabbitMQ.Samples, 3)
	assert.Equal(t, domain.Label("c"), snap.RabbitMQ.Samples[0].Timestamp)

	// case 3: unbounded keeps everything
	unbounded := NewState(Retention{Policy: RetentionUnbounded})
	for i := 0; i < 50; i++ {
		unbounded.Apply(testPayload("x", 1), base)
	}
	assert.Equal(t, 50, unbounded.Len(domain.SourceKafka))
}

func TestRetention_Validate(t *testing.T) {
	assert.NoError(t, Retention{}.Validate())
	assert.NoError(t, Retention{Policy: RetentionRing, Size: 10}.Validate())
	assert.NoError(t, Retention{Policy: RetentionWindow, Window: time.Minute}.Validate())

	assert.ErrorIs(t, Retention{Policy: RetentionRing}.Validate(), ErrInvalidRetention)
	assert.ErrorIs(t, Retention{Policy: RetentionWindow}.Validate(), ErrInvalidRetention)
	assert.ErrorIs(t, Retention{Policy: "lru"}.Validate(), ErrInvalidRetention)
}
