package endpoints

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/metrics"
	"mq-dashboard/internal/util"
)

type MockSampleStore struct {
	Samples map[domain.Source][]domain.Sample
	Err     error
}

func (m *MockSampleStore) Init() error {
	m.Samples = make(map[domain.Source][]domain.Sample)
	return m.Err
}

func (m *MockSampleStore) StoreSample(ctx context.Context, source domain.Source, sample domain.Sample) error {
	if m.Err != nil {
		return m.Err
	}
	m.Samples[source] = append(m.Samples[source], sample)
	return nil
}

func (m *MockSampleStore) GetSamples(ctx context.Context, source domain.Source, limit, offset int) ([]domain.Sample, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	filtered := m.Samples[source]
	if offset >= len(filtered) {
		return []domain.Sample{}, nil
	}
	if offset > 0 {
		filtered = filtered[offset:]
	}
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (m *MockSampleStore) Close() error {
	return m.Err
}

func historyRequest(method, source, limit, offset string) *http.Request {
	req, _ := http.NewRequest(method, "/api/history/"+source+"/"+limit+"/"+offset, nil)
	return mux.SetURLVars(req, map[string]string{
		"source": source,
		"limit":  limit,
		"offset": offset,
	})
}

func decodeSamples(t *testing.T, apiResponse APIResponse) []domain.Sample {
	t.Helper()
	var samples []domain.Sample
	valueBytes, err := json.Marshal(apiResponse.Value)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(valueBytes, &samples))
	return samples
}

func TestGetHistoryHandler(t *testing.T) {
	mockStore := &MockSampleStore{}
	mockStore.Init()

	base := time.Unix(1700000000, 0)
	for i := 0; i < 10; i++ {
		mockStore.StoreSample(context.Background(), domain.SourceKafka, domain.Sample{
			Timestamp:  domain.Label(base.Add(time.Duration(i) * time.Second).Format("15:04:05")),
			Throughput: domain.Float(float64(i * 10)),
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	historyHandler := &History{}
	historyHandler.Init(mockStore, &util.Logger{})

	// case 1: everything for kafka
	rr := httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "100", "0"))

	assert.Equal(t, http.StatusOK, rr.Code, "Expected status OK")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"), "Expected Content-Type: application/json")

	var apiResponse APIResponse
	body, err := ioutil.ReadAll(rr.Body)
	assert.NoError(t, err)
	err = json.Unmarshal(body, &apiResponse)
	assert.NoError(t, err)

	assert.True(t, apiResponse.Status, "Expected API status to be true for success")
	assert.Equal(t, API_SUCCESS, apiResponse.ErrorCode, "Expected API_SUCCESS error code")
	assert.Empty(t, apiResponse.Error, "Expected no error message on success")

	returned := decodeSamples(t, apiResponse)
	require.Len(t, returned, 10, "Expected 10 samples (all available) in the response")
	assert.Equal(t, 90.0, *returned[9].Throughput)
	assert.Nil(t, returned[0].Latency, "absent fields stay absent in the response")

	// case 2: unknown source
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "nats", "10", "0"))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected Bad Request for unknown source")
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.False(t, apiResponse.Status)
	assert.Equal(t, INVALID_SOURCE, apiResponse.ErrorCode)

	// case 3: Context cancellation during GetSamples
	mockStoreWithCancel := &MockSampleStore{}
	mockStoreWithCancel.Init()
	mockStoreWithCancel.Err = context.Canceled

	req := historyRequest("GET", "kafka", "10", "0")
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)

	rr = httptest.NewRecorder()
	historyHandlerWithCancel := &History{}
	historyHandlerWithCancel.Init(mockStoreWithCancel, &util.Logger{})
	historyHandlerWithCancel.GetHistoryHandler(rr, req)

	assert.Equal(t, http.StatusRequestTimeout, rr.Code, "Expected Request Timeout for cancelled context")
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.False(t, apiResponse.Status, "Expected API status to be false for error")
	assert.Equal(t, REQUEST_CANCELLED, apiResponse.ErrorCode, "Expected REQUEST_CANCELLED error code")
	assert.Contains(t, apiResponse.Error, ErrRequestCancelled.Error(), "Expected specific error message for cancellation")

	// case 4: POST request is rejected by the handler's method check
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("POST", "kafka", "10", "0"))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "Expected Method Not Allowed for POST request")
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.False(t, apiResponse.Status)
	assert.Equal(t, METHOD_NOT_ALLOWED, apiResponse.ErrorCode)

	// case 5: Limit 5, Offset 5
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "5", "5"))
	assert.Equal(t, http.StatusOK, rr.Code)
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	paged := decodeSamples(t, apiResponse)
	require.Len(t, paged, 5, "Expected 5 samples for limit 5, offset 5")
	assert.Equal(t, mockStore.Samples[domain.SourceKafka][5].Timestamp, paged[0].Timestamp, "First sample should be at offset 5")

	// case 6: Limit 5, Offset 8 (fewer than limit available)
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "5", "8"))
	assert.Equal(t, http.StatusOK, rr.Code)
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.Len(t, decodeSamples(t, apiResponse), 2, "Expected 2 samples for limit 5, offset 8")

	// case 7: Offset beyond total available data
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "5", "100"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.False(t, apiResponse.Status)
	assert.Equal(t, SAMPLES_NOT_AVAILABLE, apiResponse.ErrorCode)
	assert.Contains(t, apiResponse.Error, ErrNoSamplesAvailable.Error())

	// case 8: Limit 0 (should default to 100)
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "0", "0"))
	assert.Equal(t, http.StatusOK, rr.Code)
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.Len(t, decodeSamples(t, apiResponse), 10, "Expected 10 samples for limit 0 (default 100)")

	// case 9: Negative offset (should default to 0)
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "5", "-5"))
	assert.Equal(t, http.StatusOK, rr.Code)
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	negative := decodeSamples(t, apiResponse)
	require.Len(t, negative, 5, "Expected 5 samples for negative offset (default 0)")
	assert.Equal(t, mockStore.Samples[domain.SourceKafka][0].Timestamp, negative[0].Timestamp)

	// case 10: Invalid limit and offset parameters (non-integer)
	for _, params := range [][2]string{{"abc", "0"}, {"10", "xyz"}} {
		rr = httptest.NewRecorder()
		historyHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", params[0], params[1]))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected Bad Request for %v", params)
		apiResponse = APIResponse{}
		json.Unmarshal(rr.Body.Bytes(), &apiResponse)
		assert.Equal(t, INVALID_PARAMETERS, apiResponse.ErrorCode)
		assert.Contains(t, apiResponse.Error, ErrInvalidParameters.Error())
	}

	// case 11: nothing recorded for rabbitmq yet
	rr = httptest.NewRecorder()
	historyHandler.GetHistoryHandler(rr, historyRequest("GET", "rabbitmq", "10", "0"))
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected Not Found for no samples available")

	// case 12: store failure is a generic 500
	failing := &MockSampleStore{}
	failing.Init()
	failing.Err = errors.New("disk I/O error")
	failingHandler := &History{}
	failingHandler.Init(failing, &util.Logger{})
	rr = httptest.NewRecorder()
	failingHandler.GetHistoryHandler(rr, historyRequest("GET", "kafka", "10", "0"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	apiResponse = APIResponse{}
	json.Unmarshal(rr.Body.Bytes(), &apiResponse)
	assert.Equal(t, API_FAILURE, apiResponse.ErrorCode)
}

func TestGetMetricsHandler_Proxy(t *testing.T) {
	const upstreamBody = `{"kafka":{"timestamp":"t1","messageCount":10},"rabbitmq":{"timestamp":"t1"}}`

	tests := []struct {
		name        string
		upstream    http.HandlerFunc
		wantStatus  int
		wantBody    string
		wantType    string
		wantOutcome string
	}{
		{
			name: "upstream ok is relayed verbatim as text",
			upstream: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(upstreamBody))
			},
			wantStatus:  http.StatusOK,
			wantBody:    upstreamBody,
			wantType:    "text/plain",
			wantOutcome: metrics.UpstreamOK,
		},
		{
			name: "non-json body is not validated",
			upstream: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json at all"))
			},
			wantStatus:  http.StatusOK,
			wantBody:    "not json at all",
			wantType:    "text/plain",
			wantOutcome: metrics.UpstreamOK,
		},
		{
			name: "upstream error status",
			upstream: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(upstreamBody))
			},
			wantStatus:  http.StatusInternalServerError,
			wantBody:    "Failed to fetch metrics",
			wantType:    "text/plain; charset=utf-8",
			wantOutcome: metrics.UpstreamStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.upstream)
			defer upstream.Close()

			manager := metrics.NewManager()
			proxy := &Proxy{}
			proxy.Init(upstream.URL+"/api/metrics", upstream.Client(), &util.Logger{}, manager)

			rr := httptest.NewRecorder()
			proxy.GetMetricsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
			assert.Equal(t, tt.wantType, rr.Header().Get("Content-Type"))

			scrape := httptest.NewRecorder()
			manager.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Contains(t, scrape.Body.String(), `mqdash_upstream_requests_total{outcome="`+tt.wantOutcome+`"} 1`)
		})
	}
}

func TestGetMetricsHandler_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	proxy := &Proxy{}
	proxy.Init(url+"/api/metrics", nil, &util.Logger{}, nil)

	rr := httptest.NewRecorder()
	proxy.GetMetricsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch metrics", rr.Body.String())
}

func TestGetHealthHandler(t *testing.T) {
	health := &Health{}
	health.Init(time.Now().Add(-90 * time.Second))

	rr := httptest.NewRecorder()
	health.GetHealthHandler(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var apiResponse APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiResponse))
	assert.True(t, apiResponse.Status)

	value, ok := apiResponse.Value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ok", value["status"])
	assert.Equal(t, "1m30s", value["uptime"])
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, API_SUCCESS, GetErrorCode(nil))
	assert.Equal(t, INVALID_SOURCE, GetErrorCode(domain.ErrUnknownSource))
	assert.Equal(t, API_FAILURE, GetErrorCode(ErrUpstreamStatus))
}
