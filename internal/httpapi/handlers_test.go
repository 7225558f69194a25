package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/httpprobe/internal/domain"
	"github.com/hamed0406/httpprobe/internal/report"
)

// ---- test helpers ----

type captureSink struct {
	mu   sync.Mutex
	runs []domain.RunReport
}

func (c *captureSink) Report(_ context.Context, r domain.RunReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, r)
	return nil
}

func setupAPI(t *testing.T, sink report.Sink) *httptest.Server {
	t.Helper()
	srv := NewServer(zap.NewNop(), sink, 0, 10)
	// very high rate limits to avoid flakiness in tests
	ts := httptest.NewServer(srv.Router([]string{"key_test"}, 10_000, 10_000))
	t.Cleanup(ts.Close)
	return ts
}

func target(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(s.Close)
	return s, &hits
}

func getProbe(t *testing.T, api *httptest.Server, params url.Values, key string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, api.URL+"/api/probe?"+params.Encode(), nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/probe: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// ---- tests ----

func TestProbe_OK(t *testing.T) {
	sink := &captureSink{}
	api := setupAPI(t, sink)
	tgt, hits := target(t, http.StatusOK)

	resp := getProbe(t, api, url.Values{"url": {tgt.URL + "/ok"}, "count": {"3"}}, "key_test")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var rep struct {
		RunID     string  `json:"run_id"`
		Count     int     `json:"count"`
		Latencies []int64 `json:"latencies_ms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Count != 3 || len(rep.Latencies) != 3 || rep.RunID == "" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if hits.Load() != 3 {
		t.Fatalf("want 3 target hits, got %d", hits.Load())
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.runs) != 1 {
		t.Fatalf("want run reported to sink once, got %d", len(sink.runs))
	}
}

func TestProbe_DefaultsAndZeroCount(t *testing.T) {
	api := setupAPI(t, nil)
	tgt, hits := target(t, http.StatusOK)

	resp := getProbe(t, api, url.Values{"url": {tgt.URL}}, "key_test")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if hits.Load() != 5 {
		t.Fatalf("default count should be 5, got %d", hits.Load())
	}

	resp = getProbe(t, api, url.Values{"url": {tgt.URL}, "count": {"0"}}, "key_test")
	var rep map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&rep)
	if lat, ok := rep["latencies_ms"].([]any); !ok || len(lat) != 0 {
		t.Fatalf("want empty array for count=0, got %v", rep["latencies_ms"])
	}
	if hits.Load() != 5 {
		t.Fatalf("count=0 must not hit the target, got %d", hits.Load())
	}
}

func TestProbe_StatusMismatch(t *testing.T) {
	sink := &captureSink{}
	api := setupAPI(t, sink)
	tgt, hits := target(t, http.StatusNotFound)

	resp := getProbe(t, api, url.Values{"url": {tgt.URL + "/notfound"}, "count": {"5"}}, "key_test")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "status_mismatch" || body.Observed != 404 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if hits.Load() != 1 {
		t.Fatalf("want abort after 1 request, got %d", hits.Load())
	}
	if len(sink.runs) != 0 {
		t.Fatalf("failed run must not be reported")
	}
}

func TestProbe_TransportError(t *testing.T) {
	api := setupAPI(t, nil)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	resp := getProbe(t, api, url.Values{"url": {deadURL}, "count": {"2"}}, "key_test")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", resp.StatusCode)
	}
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Error != "transport" || body.Kind != "refused" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestProbe_BadRequests(t *testing.T) {
	api := setupAPI(t, nil)
	cases := []url.Values{
		{"url": {"ftp://bad"}},
		{"url": {""}},
		{"url": {"https://example.test"}, "count": {"-1"}},
		{"url": {"https://example.test"}, "count": {"11"}},
		{"url": {"https://example.test"}, "count": {"x"}},
		{"url": {"https://example.test"}, "status": {"42"}},
	}
	for _, q := range cases {
		resp := getProbe(t, api, q, "key_test")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%v: want 400, got %d", q, resp.StatusCode)
		}
	}
}

func TestProbe_RequiresKey(t *testing.T) {
	api := setupAPI(t, nil)
	resp := getProbe(t, api, url.Values{"url": {"https://example.test"}}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without key, got %d", resp.StatusCode)
	}

	h, err := http.Get(api.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer h.Body.Close()
	if h.StatusCode != http.StatusOK {
		t.Fatalf("healthz should be open, got %d", h.StatusCode)
	}
}
