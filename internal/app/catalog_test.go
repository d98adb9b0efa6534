package app

import (
	"errors"
	"testing"
)

func TestReplaceCatalogDropsRowsWithoutISBN(t *testing.T) {
	env := newTestEnv(t)
	dist := env.addDistributor(t, "acme", 6)

	rows := []map[string]any{
		{"isbn": "978-1-111111-11-1", "title": "Alpha", "list_price": "12.50", "qty": "3"},
		{"title": "No identifier"},
		{"ean": 9782222222222, "name": "Beta", "price": 8.0, "quantity": 1},
	}
	count, err := env.app.ReplaceCatalog(dist.ID, rows)
	if err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	entries, err := env.app.ListCatalog(dist.ID)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ISBN != "9781111111111" || entries[0].ListPrice != 12.5 || entries[0].QtyAvailable != 3 {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[1].ISBN != "9782222222222" || entries[1].Title != "Beta" {
		t.Fatalf("aliased columns not read: %+v", entries[1])
	}
}

func TestReplaceCatalogSwapsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	dist := env.addDistributor(t, "acme", 6)

	if _, err := env.app.ReplaceCatalog(dist.ID, []map[string]any{
		{"isbn": "9781111111111", "title": "Old"},
		{"isbn": "9782222222222", "title": "Also Old"},
	}); err != nil {
		t.Fatalf("first ReplaceCatalog: %v", err)
	}
	count, err := env.app.ReplaceCatalog(dist.ID, []map[string]any{
		{"isbn": "9783333333333", "title": "New"},
	})
	if err != nil {
		t.Fatalf("second ReplaceCatalog: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	entries, _ := env.app.ListCatalog(dist.ID)
	if len(entries) != 1 || entries[0].Title != "New" {
		t.Fatalf("snapshot not replaced: %+v", entries)
	}
}

func TestReplaceCatalogUnknownDistributor(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.ReplaceCatalog("missing", nil); !errors.Is(err, ErrDistributorNotFound) {
		t.Fatalf("err = %v, want ErrDistributorNotFound", err)
	}
}
