package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mq-dashboard/internal/domain"
)

type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNetwork
	FailureStatus
	FailureDecode
	FailureMissingSource
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNetwork:
		return "network"
	case FailureStatus:
		return "status"
	case FailureDecode:
		return "decode"
	case FailureMissingSource:
		return "missing_source"
	case FailureTimeout:
		return "timeout"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// FetchError carries the failure kind alongside the cause.
type FetchError struct {
	Kind FailureKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Classify maps any fetch error onto a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, domain.ErrMissingSource) {
		return FailureMissingSource
	}
	return FailureNetwork
}

type Fetcher interface {
	Fetch(ctx context.Context) (domain.Payload, error)
}

// HTTPFetcher reads the combined metrics document from the proxy.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{url: url, client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (domain.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return domain.Payload{}, &FetchError{Kind: FailureNetwork, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Payload{}, &FetchError{Kind: networkOrTimeout(ctx), Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Payload{}, &FetchError{Kind: FailureStatus, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Payload{}, &FetchError{Kind: networkOrTimeout(ctx), Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	payload, err := domain.DecodePayload(body)
	if err != nil {
		kind := FailureDecode
		if errors.Is(err, domain.ErrMissingSource) {
			kind = FailureMissingSource
		}
		return domain.Payload{}, &FetchError{Kind: kind, Err: err}
	}
	return payload, nil
}

func networkOrTimeout(ctx context.Context) FailureKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return FailureTimeout
	}
	return FailureNetwork
}

func checkPayload(p domain.Payload) error {
	for _, src := range domain.Sources {
		if p.Get(src) == nil {
			return &FetchError{Kind: FailureMissingSource, Err: fmt.Errorf("%w: %s", domain.ErrMissingSource, src)}
		}
	}
	return nil
}
