package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestInitSucceeds verifies that Init() registers metrics without error
func TestInitSucceeds(t *testing.T) {
	// Don't run in parallel since we're testing global state
	reg := prometheus.NewRegistry()

	err := Init(reg)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	// Record some data to make metrics appear in Gather output
	RecordRequest("POST", "/auth/login", "OK")
	RecordRequestDuration("POST", "/auth/login", "OK", 0.05)
	RecordAuthFailure("bad_credentials")
	RecordTokenRotation()
	RecordTokenReuse()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(metrics) == 0 {
		t.Fatal("Expected metrics to be registered, but got none")
	}

	metricNames := make(map[string]bool)
	for _, mf := range metrics {
		metricNames[mf.GetName()] = true
	}

	expectedMetrics := []string{
		"enroll_api_requests_total",
		"enroll_api_request_duration_seconds",
		"enroll_api_auth_failures_total",
		"enroll_api_token_rotations_total",
		"enroll_api_token_reuse_detected_total",
		"enroll_api_info",
	}
	for _, name := range expectedMetrics {
		if !metricNames[name] {
			t.Errorf("metric %s not found in registry. Found: %v", name, metricNames)
		}
	}
}

// TestInitTwiceFails verifies double registration on the same registry errors
func TestInitTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Init(reg); err != nil {
		t.Fatalf("first Init() failed: %v", err)
	}
	if err := Init(reg); err == nil {
		t.Errorf("second Init() on the same registry should fail")
	}
}

// TestRecordFunctionsDoNotPanic verifies that record functions handle nil metrics gracefully
func TestRecordFunctionsDoNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Record function panicked: %v", r)
		}
	}()

	RecordRequest("GET", "/test", "OK")
	RecordRequestDuration("GET", "/test", "OK", 0.1)
	RecordAuthFailure("test_reason")
	RecordTokenRotation()
	RecordTokenReuse()
}

// TestHandlerForServesInitializedRegistry scrapes the handler the server
// actually mounts and checks the domain counters are in the output
func TestHandlerForServesInitializedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Init(reg); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	RecordTokenRotation()
	RecordTokenReuse()
	RecordAuthFailure("bad_credentials")

	w := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()
	for _, name := range []string{
		"enroll_api_token_rotations_total",
		"enroll_api_token_reuse_detected_total",
		"enroll_api_auth_failures_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape output missing %s", name)
		}
	}
}

// TestHandlerReturnsHTTPHandler verifies that Handler() serves the text format
func TestHandlerReturnsHTTPHandler(t *testing.T) {
	handler := Handler()
	if handler == nil {
		t.Fatal("Handler() returned nil")
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
