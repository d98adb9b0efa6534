package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"bookventory/pkg/domain"
)

// ErrNotFound is returned by memory-store mutations against unknown rows.
var ErrNotFound = errors.New("store: not found")

// MemoryStore keeps everything in-process. It backs tests and small
// single-operator deployments without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	books   map[string]domain.Book
	order   []string // ISBNs in insertion order, newest appended last
	dists   map[string]domain.Distributor
	sales   []domain.SaleEvent
	catalog map[string][]domain.CatalogEntry // distributor ID -> snapshot
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:   make(map[string]domain.Book),
		dists:   make(map[string]domain.Distributor),
		catalog: make(map[string][]domain.CatalogEntry),
	}
}

var _ Store = (*MemoryStore)(nil)

// SaveBook stores or fully replaces a book record.
func (m *MemoryStore) SaveBook(b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.books[b.ISBN]; ok {
		b.CreatedAt = existing.CreatedAt
	} else {
		m.order = append(m.order, b.ISBN)
	}
	b.Stock = domain.ClampStock(b.Stock)
	m.books[b.ISBN] = b
	return nil
}

// CreateBook inserts only when the ISBN is unknown.
func (m *MemoryStore) CreateBook(b domain.Book) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ISBN]; ok {
		return false, nil
	}
	b.Stock = domain.ClampStock(b.Stock)
	m.books[b.ISBN] = b
	m.order = append(m.order, b.ISBN)
	return true, nil
}

// GetBook retrieves a book by ISBN.
func (m *MemoryStore) GetBook(isbn string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[isbn]
	return b, ok, nil
}

// SearchBooks matches ISBN or title substrings, newest first.
func (m *MemoryStore) SearchBooks(query string) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	res := make([]domain.Book, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		b, ok := m.books[m.order[i]]
		if !ok {
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(b.ISBN), q) ||
			strings.Contains(strings.ToLower(b.Title), q) {
			res = append(res, b)
		}
	}
	return res, nil
}

// SetStock replaces stock and shelf location.
func (m *MemoryStore) SetStock(isbn string, stock int, shelfLocation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok {
		return ErrNotFound
	}
	b.Stock = domain.ClampStock(stock)
	b.ShelfLocation = shelfLocation
	m.books[isbn] = b
	return nil
}

// AddStock increments stock, clamped at zero, and returns the new value.
func (m *MemoryStore) AddStock(isbn string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok {
		return 0, ErrNotFound
	}
	b.Stock = domain.ClampStock(b.Stock + delta)
	m.books[isbn] = b
	return b.Stock, nil
}

// DeleteBook removes the book; sale events are retained.
func (m *MemoryStore) DeleteBook(isbn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, isbn)
	filtered := m.order[:0]
	for _, item := range m.order {
		if item != isbn {
			filtered = append(filtered, item)
		}
	}
	m.order = filtered
	return nil
}

// CountBooks returns the number of distinct titles.
func (m *MemoryStore) CountBooks() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.books), nil
}

// TotalStock sums on-hand units.
func (m *MemoryStore) TotalStock() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, b := range m.books {
		total += b.Stock
	}
	return total, nil
}

// OutOfStockCount counts books at zero stock.
func (m *MemoryStore) OutOfStockCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.books {
		if b.Stock == 0 {
			count++
		}
	}
	return count, nil
}

// RecordSale appends the sale and decrements stock clamped at zero.
func (m *MemoryStore) RecordSale(sale domain.SaleEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[sale.ISBN]
	if !ok {
		return 0, ErrNotFound
	}
	m.sales = append(m.sales, sale)
	b.Stock = domain.ClampStock(b.Stock - sale.Qty)
	m.books[sale.ISBN] = b
	return b.Stock, nil
}

// ListSales returns sale events for one ISBN, oldest first.
func (m *MemoryStore) ListSales(isbn string) ([]domain.SaleEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.SaleEvent, 0)
	for _, s := range m.sales {
		if s.ISBN == isbn {
			res = append(res, s)
		}
	}
	return res, nil
}

// SalesSince aggregates sold quantities per day from the given date on.
func (m *MemoryStore) SalesSince(from time.Time) ([]domain.SalesByDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDay := make(map[time.Time]int)
	for _, s := range m.sales {
		if s.SoldOn.Before(from) {
			continue
		}
		day := s.SoldOn.Truncate(24 * time.Hour)
		byDay[day] += s.Qty
	}
	res := make([]domain.SalesByDay, 0, len(byDay))
	for day, qty := range byDay {
		res = append(res, domain.SalesByDay{Day: day, Qty: qty})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Day.Before(res[j].Day) })
	return res, nil
}

// SaveDistributor stores or updates a distributor.
func (m *MemoryStore) SaveDistributor(d domain.Distributor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ReturnWindowMonths <= 0 {
		d.ReturnWindowMonths = domain.DefaultReturnWindowMonths
	}
	m.dists[d.ID] = d
	return nil
}

// GetDistributor returns a distributor by ID.
func (m *MemoryStore) GetDistributor(id string) (domain.Distributor, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dists[id]
	return d, ok, nil
}

// GetDistributorByName looks a distributor up by exact name.
func (m *MemoryStore) GetDistributorByName(name string) (domain.Distributor, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.dists {
		if d.Name == name {
			return d, true, nil
		}
	}
	return domain.Distributor{}, false, nil
}

// ListDistributors returns all distributors ordered by name.
func (m *MemoryStore) ListDistributors() ([]domain.Distributor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Distributor, 0, len(m.dists))
	for _, d := range m.dists {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// DeleteDistributor removes the distributor, detaches its books, and drops
// its catalog snapshot.
func (m *MemoryStore) DeleteDistributor(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dists, id)
	delete(m.catalog, id)
	for isbn, b := range m.books {
		if b.DistributorID == id {
			b.DistributorID = ""
			m.books[isbn] = b
		}
	}
	return nil
}

// ReplaceCatalog swaps a distributor's offer snapshot wholesale.
func (m *MemoryStore) ReplaceCatalog(distributorID string, entries []domain.CatalogEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]domain.CatalogEntry, len(entries))
	for i, e := range entries {
		e.DistributorID = distributorID
		snapshot[i] = e
	}
	m.catalog[distributorID] = snapshot
	return len(snapshot), nil
}

// ListCatalog returns a distributor's current offer snapshot.
func (m *MemoryStore) ListCatalog(distributorID string) ([]domain.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := m.catalog[distributorID]
	res := make([]domain.CatalogEntry, len(snapshot))
	copy(res, snapshot)
	sort.Slice(res, func(i, j int) bool { return res[i].ISBN < res[j].ISBN })
	return res, nil
}

// ReturnCandidates lists books with a supplying distributor and stock on hand.
func (m *MemoryStore) ReturnCandidates() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0)
	for _, isbn := range m.order {
		b, ok := m.books[isbn]
		if !ok {
			continue
		}
		if b.DistributorID != "" && b.Stock > 0 {
			res = append(res, b)
		}
	}
	return res, nil
}
