package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookventory/pkg/domain"
	"bookventory/pkg/metadata"
)

func TestAddBookBackfillsFromSources(t *testing.T) {
	env := newTestEnv(t)
	env.source.entries["9781111111111"] = metadata.Metadata{
		Title: "Sample Book", Author: "A. Writer", Publisher: "Sample House", Genre: "Fiction",
	}

	book, err := env.app.AddBook(context.Background(), domain.Book{ISBN: "978-1-111111-11-1", Stock: 3})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if book.ISBN != "9781111111111" {
		t.Fatalf("ISBN not normalized: %q", book.ISBN)
	}
	if book.Title != "Sample Book" || book.Author != "A. Writer" {
		t.Fatalf("metadata not backfilled: %+v", book)
	}
	if book.Stock != 3 {
		t.Fatalf("stock = %d, want 3", book.Stock)
	}
}

func TestAddBookSuppliedFieldsWin(t *testing.T) {
	env := newTestEnv(t)
	env.source.entries["9781111111111"] = metadata.Metadata{Title: "Resolved Title", Author: "Resolved Author"}

	book, err := env.app.AddBook(context.Background(), domain.Book{
		ISBN: "9781111111111", Title: "Operator Title",
	})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if book.Title != "Operator Title" {
		t.Fatalf("supplied title overwritten: %q", book.Title)
	}
	if book.Author != "Resolved Author" {
		t.Fatalf("blank author not backfilled: %q", book.Author)
	}
}

func TestAddBookPlaceholdersOnMiss(t *testing.T) {
	env := newTestEnv(t)

	book, err := env.app.AddBook(context.Background(), domain.Book{ISBN: "9782222222222"})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if book.Title != domain.Placeholder || book.Author != domain.Placeholder {
		t.Fatalf("placeholders not applied: %+v", book)
	}
	if book.Summary != "" || book.CoverURL != "" {
		t.Fatalf("summary and cover should stay empty on a miss: %+v", book)
	}
}

func TestAddBookRejectsEmptyISBN(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.AddBook(context.Background(), domain.Book{ISBN: " - "}); !errors.Is(err, ErrInvalidISBN) {
		t.Fatalf("err = %v, want ErrInvalidISBN", err)
	}
}

func TestReceiveCreatesUnknownISBN(t *testing.T) {
	env := newTestEnv(t)

	book, err := env.app.Receive(context.Background(), "9781111111111", 5)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if book.Stock != 5 {
		t.Fatalf("stock = %d, want 5", book.Stock)
	}
}

func TestReceivePreservesCuratedFields(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.AddBook(context.Background(), domain.Book{
		ISBN: "9781111111111", Title: "Curated", Author: "Curator", Stock: 2,
	}); err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	env.source.entries["9781111111111"] = metadata.Metadata{Title: "Wrong Title"}

	book, err := env.app.Receive(context.Background(), "9781111111111", 3)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if book.Title != "Curated" {
		t.Fatalf("curated title overwritten: %q", book.Title)
	}
	if book.Stock != 5 {
		t.Fatalf("stock = %d, want 5", book.Stock)
	}
}

func TestReceiveRejectsNonPositiveQty(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.Receive(context.Background(), "9781111111111", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestRecordSaleClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.Receive(context.Background(), "9781111111111", 2); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	remaining, err := env.app.RecordSale(context.Background(), "9781111111111", 5, time.Time{})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	sales, err := env.app.ListSales("9781111111111")
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 1 || sales[0].Qty != 5 {
		t.Fatalf("sale event not recorded as sold: %+v", sales)
	}
	if !sales[0].SoldOn.Equal(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("default sale date = %v", sales[0].SoldOn)
	}
}

func TestRecordSaleCreatesUnknownISBN(t *testing.T) {
	env := newTestEnv(t)

	remaining, err := env.app.RecordSale(context.Background(), "9783333333333", 1, time.Time{})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if _, ok, _ := env.app.GetBook("9783333333333"); !ok {
		t.Fatal("book not created by sale")
	}
}

func TestAdjustSetsExactCount(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.Receive(context.Background(), "9781111111111", 2); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	if err := env.app.Adjust("9781111111111", 5, "A3"); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	book, _, err := env.app.GetBook("9781111111111")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if book.Stock != 5 {
		t.Fatalf("stock = %d, want 5", book.Stock)
	}
	if book.ShelfLocation != "A3" {
		t.Fatalf("shelf location = %q", book.ShelfLocation)
	}
}

func TestAdjustRejectsNegativeCount(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.Receive(context.Background(), "9781111111111", 7); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	if err := env.app.Adjust("9781111111111", -4, "Z9"); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
	book, _, err := env.app.GetBook("9781111111111")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if book.Stock != 7 || book.ShelfLocation != "" {
		t.Fatalf("record mutated: stock=%d shelf=%q", book.Stock, book.ShelfLocation)
	}
}

func TestAdjustUnknownISBN(t *testing.T) {
	env := newTestEnv(t)
	if err := env.app.Adjust("9789999999999", 1, ""); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("err = %v, want ErrBookNotFound", err)
	}
}
