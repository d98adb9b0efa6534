package metadata

import (
	"context"
	"errors"
	"testing"
)

type stubSource struct {
	name  string
	meta  Metadata
	found bool
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(_ context.Context, _ string) (Metadata, bool, error) {
	s.calls++
	return s.meta, s.found, s.err
}

func TestResolveShortISBNShortCircuits(t *testing.T) {
	src := &stubSource{name: "a", found: true, meta: Metadata{Title: "T"}}
	r := NewResolver([]Source{src}, nil, 0)

	if _, ok := r.Resolve(context.Background(), "123-45"); ok {
		t.Fatalf("expected miss for short ISBN")
	}
	if src.calls != 0 {
		t.Fatalf("source called %d times, want 0", src.calls)
	}
}

func TestResolveFallsThroughToSecondSource(t *testing.T) {
	a := &stubSource{name: "a"} // no match
	b := &stubSource{name: "b", found: true, meta: Metadata{Title: "Sample Book", Author: "A. Writer"}}
	r := NewResolver([]Source{a, b}, nil, 0)

	meta, ok := r.Resolve(context.Background(), "978-0000000001")
	if !ok {
		t.Fatalf("expected match from second source")
	}
	if meta.Title != "Sample Book" || meta.Author != "A. Writer" {
		t.Fatalf("meta = %+v, want source b's mapped output", meta)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("calls a=%d b=%d, want 1 each", a.calls, b.calls)
	}
}

func TestResolveSourceErrorIsSilent(t *testing.T) {
	a := &stubSource{name: "a", err: errors.New("connection refused")}
	b := &stubSource{name: "b", found: true, meta: Metadata{Title: "T"}}
	r := NewResolver([]Source{a, b}, nil, 0)

	if _, ok := r.Resolve(context.Background(), "9780000000002"); !ok {
		t.Fatalf("expected error source to fall through to next")
	}
}

func TestResolveFirstMatchWinsAndStopsChain(t *testing.T) {
	a := &stubSource{name: "a", found: true, meta: Metadata{Title: "First"}}
	b := &stubSource{name: "b", found: true, meta: Metadata{Title: "Second"}}
	r := NewResolver([]Source{a, b}, nil, 0)

	meta, _ := r.Resolve(context.Background(), "9780000000003")
	if meta.Title != "First" {
		t.Fatalf("title = %q, want first source's match", meta.Title)
	}
	if b.calls != 0 {
		t.Fatalf("second source called %d times, want 0", b.calls)
	}
}

func TestResolveExhaustedChainIsNotFound(t *testing.T) {
	a := &stubSource{name: "a"}
	b := &stubSource{name: "b", err: errors.New("timeout")}
	r := NewResolver([]Source{a, b}, nil, 0)

	meta, ok := r.Resolve(context.Background(), "9780000000004")
	if ok {
		t.Fatalf("expected not found")
	}
	if meta != (Metadata{}) {
		t.Fatalf("meta = %+v, want no fabricated fields", meta)
	}
}

func TestResolveCachesHitsAndMisses(t *testing.T) {
	hit := &stubSource{name: "hit", found: true, meta: Metadata{Title: "T"}}
	r := NewResolver([]Source{hit}, nil, 0)
	r.Resolve(context.Background(), "9780000000005")
	r.Resolve(context.Background(), "9780000000005")
	if hit.calls != 1 {
		t.Fatalf("source called %d times, want 1 (second resolve cached)", hit.calls)
	}

	miss := &stubSource{name: "miss"}
	r = NewResolver([]Source{miss}, nil, 0)
	r.Resolve(context.Background(), "9780000000006")
	r.Resolve(context.Background(), "9780000000006")
	if miss.calls != 1 {
		t.Fatalf("source called %d times, want 1 (miss cached too)", miss.calls)
	}
}

func TestResolveNormalizesBeforeCaching(t *testing.T) {
	src := &stubSource{name: "a", found: true, meta: Metadata{Title: "T"}}
	r := NewResolver([]Source{src}, nil, 0)
	r.Resolve(context.Background(), "978-0-00-000000-7")
	r.Resolve(context.Background(), "9780000000007")
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1 (same normalized key)", src.calls)
	}
}
