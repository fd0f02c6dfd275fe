package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bimakw/coin-tracker/internal/testutil"
)

func TestNewHealthHandler(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil)
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestHealthHandler_Health_AllHealthy(t *testing.T) {
	storage := testutil.NewMockHealthChecker(true)
	cache := testutil.NewMockHealthChecker(true)
	priceAPI := testutil.NewMockHealthChecker(true)
	handler := NewHealthHandler(storage, cache, priceAPI)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	response := decodeHealth(t, rec)
	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	for _, name := range []string{"storage", "cache", "price_api"} {
		if response.Services[name] != "healthy" {
			t.Errorf("expected %s healthy, got %s", name, response.Services[name])
		}
	}
	if response.Timestamp == "" {
		t.Error("expected non-empty timestamp")
	}
}

func TestHealthHandler_Health_InProcessStorage(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	response := decodeHealth(t, rec)
	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if _, ok := response.Services["cache"]; ok {
		t.Error("expected no cache entry without a cache checker")
	}
}

func TestHealthHandler_Health_StorageUnhealthy(t *testing.T) {
	storage := testutil.NewMockHealthChecker(false)
	cache := testutil.NewMockHealthChecker(true)
	handler := NewHealthHandler(storage, cache, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	response := decodeHealth(t, rec)
	if response.Status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
	if response.Services["storage"] == "healthy" {
		t.Error("expected storage to be unhealthy")
	}
}

func TestHealthHandler_Health_PriceAPIUnhealthy(t *testing.T) {
	storage := testutil.NewMockHealthChecker(true)
	priceAPI := testutil.NewMockHealthChecker(false)
	handler := NewHealthHandler(storage, nil, priceAPI)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for degraded, got %d", rec.Code)
	}

	response := decodeHealth(t, rec)
	if response.Status != "degraded" {
		t.Errorf("expected status degraded, got %s", response.Status)
	}
	if response.Services["price_api"] == "healthy" {
		t.Error("expected price_api to be unhealthy")
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		healthy    bool
		wantStatus int
		wantBody   string
	}{
		{"ready", true, http.StatusOK, "ready"},
		{"not ready", false, http.StatusServiceUnavailable, "not ready\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(testutil.NewMockHealthChecker(tt.healthy), nil, nil)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()

			handler.Ready(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(false), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()

	handler.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "alive" {
		t.Errorf("expected body 'alive', got %s", rec.Body.String())
	}
}
