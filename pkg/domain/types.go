package domain

import (
	"strings"
	"time"
)

// Placeholder fills descriptive fields that no source could provide.
const Placeholder = "Unknown"

// DefaultReturnWindowMonths applies when a distributor has no explicit policy.
const DefaultReturnWindowMonths = 6

type Book struct {
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Publisher     string    `json:"publisher,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	ListPrice     float64   `json:"listPrice"`
	Stock         int       `json:"stock"`
	ShelfLocation string    `json:"shelfLocation,omitempty"`
	AcquiredAt    time.Time `json:"acquiredAt"`
	DistributorID string    `json:"distributorId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Distributor struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Emails             []string  `json:"emails"`
	CCEmails           []string  `json:"ccEmails"`
	ReturnWindowMonths int       `json:"returnWindowMonths"`
	CreatedAt          time.Time `json:"createdAt"`
}

// SaleEvent is append-only: it is never mutated or deleted once written,
// even when the book it references is removed.
type SaleEvent struct {
	ID     string    `json:"id"`
	ISBN   string    `json:"isbn"`
	Qty    int       `json:"qty"`
	SoldOn time.Time `json:"soldOn"`
}

// CatalogEntry is one row of a distributor's current offer snapshot. The
// whole snapshot is replaced on every upload; entries from older uploads
// never coexist with newer ones.
type CatalogEntry struct {
	ID            string    `json:"id"`
	DistributorID string    `json:"distributorId"`
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Publisher     string    `json:"publisher,omitempty"`
	ListPrice     float64   `json:"listPrice"`
	QtyAvailable  int       `json:"qtyAvailable"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SalesByDay is a per-day quantity total used by the dashboard.
type SalesByDay struct {
	Day time.Time `json:"day"`
	Qty int       `json:"qty"`
}

// NormalizeISBN strips hyphens and whitespace. An empty result means the
// input carries no usable identifier.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ClampStock floors a stock value at zero. Every ledger mutation funnels
// its result through this rule.
func ClampStock(stock int) int {
	if stock < 0 {
		return 0
	}
	return stock
}
