package store

import (
	"time"

	"bookventory/pkg/domain"
)

// Store defines persistence operations for books, sales, distributors, and
// catalog snapshots.
//
// Two distinct upsert operations exist on purpose: SaveBook is the explicit
// operator-initiated add that replaces the full record, CreateBook is the
// automated backfill path that never overwrites curated fields of an
// existing record.
type Store interface {
	// books
	SaveBook(b domain.Book) error
	CreateBook(b domain.Book) (bool, error)
	GetBook(isbn string) (domain.Book, bool, error)
	SearchBooks(query string) ([]domain.Book, error)
	SetStock(isbn string, stock int, shelfLocation string) error
	AddStock(isbn string, delta int) (int, error)
	DeleteBook(isbn string) error
	CountBooks() (int, error)
	TotalStock() (int, error)
	OutOfStockCount() (int, error)

	// sales
	RecordSale(sale domain.SaleEvent) (int, error)
	ListSales(isbn string) ([]domain.SaleEvent, error)
	SalesSince(from time.Time) ([]domain.SalesByDay, error)

	// distributors
	SaveDistributor(d domain.Distributor) error
	GetDistributor(id string) (domain.Distributor, bool, error)
	GetDistributorByName(name string) (domain.Distributor, bool, error)
	ListDistributors() ([]domain.Distributor, error)
	DeleteDistributor(id string) error

	// catalog
	ReplaceCatalog(distributorID string, entries []domain.CatalogEntry) (int, error)
	ListCatalog(distributorID string) ([]domain.CatalogEntry, error)

	// returns
	ReturnCandidates() ([]domain.Book, error)
}
