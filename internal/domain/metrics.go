package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Source string

const (
	SourceKafka    Source = "kafka"
	SourceRabbitMQ Source = "rabbitmq"
)

// Sources lists the compared systems in display order.
var Sources = []Source{SourceKafka, SourceRabbitMQ}

var (
	ErrMissingSource = errors.New("payload is missing a source")
	ErrUnknownSource = errors.New("unknown source")
)

func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceKafka, SourceRabbitMQ:
		return Source(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

func (s Source) DisplayName() string {
	switch s {
	case SourceKafka:
		return "Kafka"
	case SourceRabbitMQ:
		return "RabbitMQ"
	}
	return string(s)
}

// Label is the upstream timestamp. The producer may send it as a string or a number.
type Label string

func (l *Label) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("timestamp must be a string or number: %s", data)
	}
	*l = Label(data)
	return nil
}

type Sample struct {
	Timestamp    Label     `json:"timestamp,omitempty"`
	MessageCount *float64  `json:"messageCount,omitempty"`
	Throughput   *float64  `json:"throughput,omitempty"`
	Latency      *float64  `json:"latency,omitempty"`
	CPUUsage     *float64  `json:"cpuUsage,omitempty"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

type Payload struct {
	Kafka    *Sample `json:"kafka"`
	RabbitMQ *Sample `json:"rabbitmq"`
}

func (p Payload) Get(source Source) *Sample {
	switch source {
	case SourceKafka:
		return p.Kafka
	case SourceRabbitMQ:
		return p.RabbitMQ
	}
	return nil
}

// DecodePayload parses the combined upstream document. Both sources must be
// present; a payload carrying only one of them is rejected as a whole.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("error decoding metrics payload: %w", err)
	}
	for _, src := range Sources {
		if p.Get(src) == nil {
			return Payload{}, fmt.Errorf("%w: %s", ErrMissingSource, src)
		}
	}
	return p, nil
}

func Float(v float64) *float64 {
	return &v
}

type SampleStore interface {
	Init() error
	StoreSample(ctx context.Context, source Source, sample Sample) error
	GetSamples(ctx context.Context, source Source, limit, offset int) ([]Sample, error)
	Close() error
}
