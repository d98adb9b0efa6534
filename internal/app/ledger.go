package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookventory/pkg/domain"
	"bookventory/pkg/metadata"
	"bookventory/pkg/store"
)

// AddBook registers a book, replacing any existing record for the same ISBN.
// Descriptive fields the operator left blank are filled from the metadata
// sources, then from placeholders.
func (a *App) AddBook(ctx context.Context, b domain.Book) (domain.Book, error) {
	b.ISBN = domain.NormalizeISBN(b.ISBN)
	if b.ISBN == "" {
		return domain.Book{}, ErrInvalidISBN
	}
	b = a.fillDescriptive(ctx, b)
	b.Stock = domain.ClampStock(b.Stock)
	if b.AcquiredAt.IsZero() {
		b.AcquiredAt = a.today()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = a.now().UTC()
	}
	if err := a.store.SaveBook(b); err != nil {
		return domain.Book{}, fmt.Errorf("save book: %w", err)
	}
	return b, nil
}

// Receive books units arriving from a shipment. Unknown ISBNs are
// registered on the fly; known ones keep their curated fields and only gain
// stock.
func (a *App) Receive(ctx context.Context, isbn string, qty int) (domain.Book, error) {
	isbn = domain.NormalizeISBN(isbn)
	if isbn == "" {
		return domain.Book{}, ErrInvalidISBN
	}
	if qty <= 0 {
		return domain.Book{}, ErrInvalidQuantity
	}
	if err := a.ensureBook(ctx, domain.Book{ISBN: isbn}); err != nil {
		return domain.Book{}, fmt.Errorf("ensure book: %w", err)
	}
	if _, err := a.store.AddStock(isbn, qty); err != nil {
		return domain.Book{}, fmt.Errorf("add stock: %w", err)
	}
	book, _, err := a.store.GetBook(isbn)
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// RecordSale appends a sale event and decrements stock, clamped at zero.
// The remaining stock after the sale is returned.
func (a *App) RecordSale(ctx context.Context, isbn string, qty int, soldOn time.Time) (int, error) {
	isbn = domain.NormalizeISBN(isbn)
	if isbn == "" {
		return 0, ErrInvalidISBN
	}
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if soldOn.IsZero() {
		soldOn = a.today()
	}
	if err := a.ensureBook(ctx, domain.Book{ISBN: isbn}); err != nil {
		return 0, fmt.Errorf("ensure book: %w", err)
	}
	remaining, err := a.store.RecordSale(domain.SaleEvent{
		ID:     uuid.NewString(),
		ISBN:   isbn,
		Qty:    qty,
		SoldOn: dateOnly(soldOn.UTC()),
	})
	if err != nil {
		return 0, fmt.Errorf("record sale: %w", err)
	}
	return remaining, nil
}

// Adjust sets stock to an exact count after a physical recount. Negative
// counts are rejected before anything is written.
func (a *App) Adjust(isbn string, stock int, shelfLocation string) error {
	isbn = domain.NormalizeISBN(isbn)
	if isbn == "" {
		return ErrInvalidISBN
	}
	if stock < 0 {
		return ErrInvalidQuantity
	}
	err := a.store.SetStock(isbn, stock, shelfLocation)
	if errors.Is(err, store.ErrNotFound) {
		return ErrBookNotFound
	}
	return err
}

// GetBook retrieves a book by ISBN.
func (a *App) GetBook(isbn string) (domain.Book, bool, error) {
	return a.store.GetBook(domain.NormalizeISBN(isbn))
}

// SearchBooks matches ISBN or title against the query.
func (a *App) SearchBooks(query string) ([]domain.Book, error) {
	return a.store.SearchBooks(query)
}

// RemoveBook deletes the book record. Sale events referencing the ISBN are
// kept.
func (a *App) RemoveBook(isbn string) error {
	return a.store.DeleteBook(domain.NormalizeISBN(isbn))
}

// ListSales returns the sale events recorded for an ISBN.
func (a *App) ListSales(isbn string) ([]domain.SaleEvent, error) {
	return a.store.ListSales(domain.NormalizeISBN(isbn))
}

// Lookup resolves descriptive metadata without touching the ledger.
func (a *App) Lookup(ctx context.Context, isbn string) (metadata.Metadata, bool) {
	return a.resolver.Resolve(ctx, isbn)
}

// ensureBook inserts a record when the ISBN is new and leaves an existing
// record untouched. Blank descriptive fields on the new record are filled
// from the metadata sources.
func (a *App) ensureBook(ctx context.Context, b domain.Book) error {
	b = a.fillDescriptive(ctx, b)
	b.Stock = domain.ClampStock(b.Stock)
	if b.AcquiredAt.IsZero() {
		b.AcquiredAt = a.today()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = a.now().UTC()
	}
	_, err := a.store.CreateBook(b)
	return err
}

// fillDescriptive completes blank descriptive fields, preferring supplied
// values, then resolver output, then placeholders.
func (a *App) fillDescriptive(ctx context.Context, b domain.Book) domain.Book {
	if b.Title != "" && b.Author != "" && b.Publisher != "" && b.Genre != "" {
		return b
	}
	meta, _ := a.resolver.Resolve(ctx, b.ISBN)
	if b.Title == "" {
		b.Title = meta.Title
	}
	if b.Author == "" {
		b.Author = meta.Author
	}
	if b.Publisher == "" {
		b.Publisher = meta.Publisher
	}
	if b.Genre == "" {
		b.Genre = meta.Genre
	}
	if b.Summary == "" {
		b.Summary = meta.Summary
	}
	if b.CoverURL == "" {
		b.CoverURL = meta.CoverURL
	}
	b.Title = orPlaceholder(b.Title)
	b.Author = orPlaceholder(b.Author)
	b.Publisher = orPlaceholder(b.Publisher)
	b.Genre = orPlaceholder(b.Genre)
	return b
}

func orPlaceholder(s string) string {
	if s == "" {
		return domain.Placeholder
	}
	return s
}
