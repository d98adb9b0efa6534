package metadata

import (
	"context"
	"strings"

	"bookventory/pkg/domain"
)

// Metadata is the normalized shape every bibliographic source maps into.
// Title, Author, Publisher, and Genre fall back to the placeholder when the
// source has nothing; Summary and CoverURL may stay empty.
type Metadata struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Genre     string `json:"genre"`
	Summary   string `json:"summary"`
	CoverURL  string `json:"coverUrl"`
}

// Source looks a single ISBN up in one external bibliographic API.
// A failed or empty lookup reports ok=false or an error; the resolver treats
// both the same way and moves on to the next source.
type Source interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (Metadata, bool, error)
}

// Result is what gets cached per normalized ISBN, misses included.
type Result struct {
	Metadata Metadata `json:"metadata"`
	Found    bool     `json:"found"`
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.Placeholder
	}
	return s
}

func joinOrPlaceholder(parts []string) string {
	joined := strings.Join(parts, ", ")
	return orPlaceholder(joined)
}
