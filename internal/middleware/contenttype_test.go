package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContentType(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ContentType(next)

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json post", "POST", "application/json", http.StatusOK},
		{"json with charset", "POST", "application/json; charset=utf-8", http.StatusOK},
		{"form post", "POST", "application/x-www-form-urlencoded", http.StatusOK},
		{"get needs no content type", "GET", "", http.StatusOK},
		{"delete needs no content type", "DELETE", "", http.StatusOK},
		{"missing on post", "POST", "", http.StatusBadRequest},
		{"xml rejected", "POST", "application/xml", http.StatusUnsupportedMediaType},
		{"put validated", "PUT", "text/plain", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var body *strings.Reader
			if tt.method == "GET" || tt.method == "DELETE" {
				body = strings.NewReader("")
			} else {
				body = strings.NewReader("{}")
			}
			req := httptest.NewRequest(tt.method, "/", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
