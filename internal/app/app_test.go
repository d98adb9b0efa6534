package app

import (
	"context"
	"testing"
	"time"

	"bookventory/pkg/domain"
	"bookventory/pkg/metadata"
	"bookventory/pkg/store"
)

type fakeSource struct {
	entries map[string]metadata.Metadata
	calls   int
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Lookup(_ context.Context, isbn string) (metadata.Metadata, bool, error) {
	s.calls++
	meta, ok := s.entries[isbn]
	return meta, ok, nil
}

type testEnv struct {
	app    *App
	store  *store.MemoryStore
	source *fakeSource
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  store.NewMemoryStore(),
		source: &fakeSource{entries: map[string]metadata.Metadata{}},
		now:    time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC),
	}
	resolver := metadata.NewResolver([]metadata.Source{env.source}, nil, time.Second)
	a, err := New(Config{
		Store:    env.store,
		Resolver: resolver,
		Now:      func() time.Time { return env.now },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	env.app = a
	return env
}

func (e *testEnv) addDistributor(t *testing.T, name string, months int) domain.Distributor {
	t.Helper()
	dist, err := e.app.AddDistributor(domain.Distributor{
		Name:               name,
		Emails:             []string{"orders@" + name + ".example"},
		ReturnWindowMonths: months,
	})
	if err != nil {
		t.Fatalf("AddDistributor(%s): %v", name, err)
	}
	return dist
}

func TestNewRequiresResolver(t *testing.T) {
	_, err := New(Config{Store: store.NewMemoryStore()})
	if err == nil {
		t.Fatal("expected error without resolver")
	}
}
