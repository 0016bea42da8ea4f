package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	t.Run("basic mode ignores backends", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(&fakePinger{err: errors.New("down")}, nil)

		req := httptest.NewRequest("GET", "/healthz", nil)
		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("extended mode healthy", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(&fakePinger{}, &fakePinger{})

		req := httptest.NewRequest("GET", "/healthz?mode=extended", nil)
		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if resp.Checks["storage"] != "healthy" || resp.Checks["redis"] != "healthy" {
			t.Errorf("checks = %v", resp.Checks)
		}
	})

	t.Run("extended mode unhealthy storage", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(&fakePinger{err: errors.New("connection refused")}, nil)

		req := httptest.NewRequest("GET", "/healthz?mode=extended", nil)
		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("nil redis skipped in extended mode", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(&fakePinger{}, nil)

		req := httptest.NewRequest("GET", "/healthz?mode=extended", nil)
		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, req)

		var resp HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if _, ok := resp.Checks["redis"]; ok {
			t.Error("redis check present without a redis client")
		}
	})
}

func TestVersion(t *testing.T) {
	t.Parallel()

	handler := Version(VersionInfo{Version: "1.2.3", Commit: "abc1234"})
	req := httptest.NewRequest("GET", "/version", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Data VersionInfo `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Data.Version != "1.2.3" {
		t.Errorf("version = %q", resp.Data.Version)
	}
}
