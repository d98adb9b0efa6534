package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleBooksLookupMapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "isbn:9780000000001" {
			t.Fatalf("q = %q, want isbn query", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{
			"title":"Sample Book",
			"authors":["A. Writer","B. Writer"],
			"publisher":"Sample House",
			"categories":["Fiction"],
			"description":"A story.",
			"imageLinks":{"thumbnail":"http://img/cover.jpg"}
		}}]}`))
	}))
	defer srv.Close()

	src := NewGoogleBooksSource(srv.URL, srv.Client())
	meta, ok, err := src.Lookup(context.Background(), "9780000000001")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if meta.Title != "Sample Book" {
		t.Fatalf("title = %q", meta.Title)
	}
	if meta.Author != "A. Writer, B. Writer" {
		t.Fatalf("author = %q, want joined display string", meta.Author)
	}
	if meta.Genre != "Fiction" || meta.Publisher != "Sample House" {
		t.Fatalf("meta = %+v", meta)
	}
	if meta.Summary != "A story." || meta.CoverURL != "http://img/cover.jpg" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestGoogleBooksLookupPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{"title":"Only Title"}}]}`))
	}))
	defer srv.Close()

	src := NewGoogleBooksSource(srv.URL, srv.Client())
	meta, ok, _ := src.Lookup(context.Background(), "9780000000002")
	if !ok {
		t.Fatalf("expected match")
	}
	if meta.Author != "Unknown" || meta.Publisher != "Unknown" || meta.Genre != "Unknown" {
		t.Fatalf("meta = %+v, want placeholders for missing fields", meta)
	}
	if meta.Summary != "" || meta.CoverURL != "" {
		t.Fatalf("meta = %+v, want empty summary/cover", meta)
	}
}

func TestGoogleBooksLookupNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}))
	defer srv.Close()

	src := NewGoogleBooksSource(srv.URL, srv.Client())
	if _, ok, err := src.Lookup(context.Background(), "9780000000003"); ok || err != nil {
		t.Fatalf("ok=%v err=%v, want clean miss", ok, err)
	}
}

func TestGoogleBooksLookupNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewGoogleBooksSource(srv.URL, srv.Client())
	if _, _, err := src.Lookup(context.Background(), "9780000000004"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestOpenLibraryLookupMapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("bibkeys"); got != "ISBN:9780000000005" {
			t.Fatalf("bibkeys = %q", got)
		}
		_, _ = w.Write([]byte(`{"ISBN:9780000000005":{
			"title":"Open Title",
			"authors":[{"name":"C. Writer"}],
			"publishers":[{"name":"Open House"}],
			"subjects":[{"name":"History"},{"name":"Europe"}],
			"excerpts":[{"text":"Opening line."}],
			"cover":{"medium":"http://img/m.jpg"}
		}}`))
	}))
	defer srv.Close()

	src := NewOpenLibrarySource(srv.URL, srv.Client())
	meta, ok, err := src.Lookup(context.Background(), "9780000000005")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if meta.Title != "Open Title" || meta.Author != "C. Writer" {
		t.Fatalf("meta = %+v", meta)
	}
	if meta.Genre != "History, Europe" {
		t.Fatalf("genre = %q, want joined subjects", meta.Genre)
	}
	if meta.Summary != "Opening line." || meta.CoverURL != "http://img/m.jpg" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestOpenLibraryLookupMissingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	src := NewOpenLibrarySource(srv.URL, srv.Client())
	if _, ok, err := src.Lookup(context.Background(), "9780000000006"); ok || err != nil {
		t.Fatalf("ok=%v err=%v, want clean miss", ok, err)
	}
}
