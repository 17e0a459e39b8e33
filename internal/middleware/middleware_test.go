package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("generated id not propagated: ctx=%q header=%q", seen, rec.Header().Get("X-Request-ID"))
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "caller-id" {
		t.Errorf("caller id not reused: %q", seen)
	}
}
