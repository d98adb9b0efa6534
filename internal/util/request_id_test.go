package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestIDKeepsIncomingID(t *testing.T) {
	const incoming = "req-abc-123"
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", incoming)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != incoming {
		t.Fatalf("context request id = %q, want %q", seen, incoming)
	}
	if got := rec.Header().Get("X-Request-Id"); got != incoming {
		t.Fatalf("response request id = %q, want %q", got, incoming)
	}
}

func TestWithRequestIDGeneratesOne(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if seen == "" {
		t.Fatal("expected generated request id in context")
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Fatalf("response request id = %q, want %q", got, seen)
	}
}
