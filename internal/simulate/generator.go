// Package simulate serves fake combined metrics so the dashboard can run
// without a real producer. The numbers are a bounded random walk.
package simulate

import (
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WireSample is one source in the producer's wire format.
type WireSample struct {
	Timestamp    string  `json:"timestamp"`
	MessageCount float64 `json:"messageCount"`
	Throughput   float64 `json:"throughput"`
	Latency      float64 `json:"latency"`
	CPUUsage     float64 `json:"cpuUsage"`
}

type walker struct {
	count      float64
	throughput float64
	latency    float64
	cpu        float64
}

// profile holds the starting point and step sizes for one source.
type profile struct {
	throughput, latency, cpu float64
}

var profiles = map[domain.Source]profile{
	domain.SourceKafka:    {throughput: 900, latency: 4, cpu: 35},
	domain.SourceRabbitMQ: {throughput: 500, latency: 9, cpu: 45},
}

type Generator struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	walkers map[domain.Source]*walker
	now     func() time.Time
}

func NewGenerator(seed int64) *Generator {
	g := &Generator{
		rnd:     rand.New(rand.NewSource(seed)),
		walkers: make(map[domain.Source]*walker, len(domain.Sources)),
		now:     time.Now,
	}
	for _, src := range domain.Sources {
		p := profiles[src]
		g.walkers[src] = &walker{throughput: p.throughput, latency: p.latency, cpu: p.cpu}
	}
	return g
}

// Next advances every source by one step, as if one second had passed.
func (g *Generator) Next() map[domain.Source]WireSample {
	g.mu.Lock()
	defer g.mu.Unlock()

	label := g.now().Format("15:04:05")
	out := make(map[domain.Source]WireSample, len(g.walkers))
	for _, src := range domain.Sources {
		w := g.walkers[src]
		p := profiles[src]

		w.throughput = clamp(w.throughput+g.step(p.throughput*0.05), 0, p.throughput*3)
		w.latency = clamp(w.latency+g.step(p.latency*0.1), 0.1, p.latency*10)
		w.cpu = clamp(w.cpu+g.step(2), 0, 100)
		w.count += math.Round(w.throughput)

		out[src] = WireSample{
			Timestamp:    label,
			MessageCount: w.count,
			Throughput:   w.throughput,
			Latency:      w.latency,
			CPUUsage:     w.cpu,
		}
	}
	return out
}

func (g *Generator) step(scale float64) float64 {
	return (g.rnd.Float64()*2 - 1) * scale
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Handler serves GET /api/metrics in the producer's wire format.
type Handler struct {
	gen    *Generator
	logger *util.Logger
}

func NewHandler(gen *Generator, logger *util.Logger) *Handler {
	return &Handler{gen: gen, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(h.gen.Next())
	if err != nil {
		h.logger.Error("encoding simulated metrics", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
