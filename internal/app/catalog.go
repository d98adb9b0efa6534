package app

import (
	"fmt"

	"github.com/google/uuid"

	"bookventory/pkg/domain"
)

// ReplaceCatalog swaps a distributor's catalog snapshot for the rows of a
// fresh upload. Rows without a usable ISBN are dropped. The number of entries
// in the new snapshot is returned.
func (a *App) ReplaceCatalog(distributorID string, rows []map[string]any) (int, error) {
	if _, ok, err := a.store.GetDistributor(distributorID); err != nil {
		return 0, err
	} else if !ok {
		return 0, ErrDistributorNotFound
	}
	now := a.now().UTC()
	entries := make([]domain.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		isbn := domain.NormalizeISBN(rowString(row, isbnAliases))
		if isbn == "" {
			continue
		}
		entries = append(entries, domain.CatalogEntry{
			ID:            uuid.NewString(),
			DistributorID: distributorID,
			ISBN:          isbn,
			Title:         rowString(row, titleAliases),
			Author:        rowString(row, authorAliases),
			Publisher:     rowString(row, pubAliases),
			ListPrice:     rowFloat(row, priceAliases),
			QtyAvailable:  rowInt(row, qtyAliases),
			UpdatedAt:     now,
		})
	}
	count, err := a.store.ReplaceCatalog(distributorID, entries)
	if err != nil {
		return 0, fmt.Errorf("replace catalog: %w", err)
	}
	return count, nil
}

// ListCatalog returns the current snapshot for a distributor.
func (a *App) ListCatalog(distributorID string) ([]domain.CatalogEntry, error) {
	if _, ok, err := a.store.GetDistributor(distributorID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrDistributorNotFound
	}
	return a.store.ListCatalog(distributorID)
}
