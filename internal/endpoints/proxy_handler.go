package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mq-dashboard/internal/metrics"
	"mq-dashboard/internal/util"
)

const proxyFailureBody = "Failed to fetch metrics"

// Proxy relays the combined metrics document from the upstream producer.
type Proxy struct {
	upstreamURL string
	client      *http.Client
	logger      *util.Logger
	metrics     *metrics.Manager
}

// Init wires the proxy. A nil client gets one without a timeout; the inbound
// request's context bounds the outbound call.
func (p *Proxy) Init(upstreamURL string, client *http.Client, logger *util.Logger, m *metrics.Manager) {
	if client == nil {
		client = &http.Client{}
	}
	p.upstreamURL = upstreamURL
	p.client = client
	p.logger = logger
	p.metrics = m
}

func (p *Proxy) GetMetricsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, outcome, err := p.fetch(r)
	p.metrics.ObserveUpstream(outcome, time.Since(start))
	if err != nil {
		p.logger.Error("Failed to fetch metrics",
			zap.String("upstream", p.upstreamURL),
			zap.String("outcome", outcome),
			zap.Error(err))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, proxyFailureBody)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (p *Proxy) fetch(r *http.Request) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, p.upstreamURL, nil)
	if err != nil {
		return nil, metrics.UpstreamTransport, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, metrics.UpstreamTransport, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, metrics.UpstreamStatus, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, metrics.UpstreamRead, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, metrics.UpstreamOK, nil
}
