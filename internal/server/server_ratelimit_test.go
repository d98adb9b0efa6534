package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"bookventory/internal/app"
	"bookventory/internal/ratelimit"
	"bookventory/pkg/metadata"
	"bookventory/pkg/store"
)

func TestImportEndpointsRateLimited(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	resolver := metadata.NewResolver(nil, nil, time.Second)
	a, err := app.New(app.Config{Store: store.NewMemoryStore(), Resolver: resolver})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	s, err := New(Config{App: a, Limiter: limiter})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	payload := map[string]any{"rows": []map[string]any{{"isbn": "9781111111111", "qty": 1}}}
	doJSON(t, http.MethodPost, srv.URL+"/imports/receiving", payload, http.StatusOK, nil)
	doJSON(t, http.MethodPost, srv.URL+"/imports/receiving", payload, http.StatusOK, nil)
	doJSON(t, http.MethodPost, srv.URL+"/imports/receiving", payload, http.StatusTooManyRequests, nil)

	// unlimited endpoints keep working
	doJSON(t, http.MethodGet, srv.URL+"/dashboard", nil, http.StatusOK, nil)
}
