package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookventory/pkg/domain"
	"bookventory/pkg/queue"
)

// ImportReport summarizes a bulk import. Skipped rows never abort the batch.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportSales records one sale event per row. Rows missing an ISBN or with a
// non-positive quantity are skipped, as are rows the store rejects.
func (a *App) ImportSales(ctx context.Context, rows []map[string]any, soldOn time.Time) ImportReport {
	var report ImportReport
	for _, row := range rows {
		isbn := rowString(row, isbnAliases)
		qty := rowInt(row, qtyAliases)
		if _, err := a.RecordSale(ctx, isbn, qty, soldOn); err != nil {
			slog.Warn("sales import row skipped", "isbn", isbn, "error", err)
			report.Skipped++
			continue
		}
		report.Imported++
	}
	return report
}

// ImportReceiving increments stock per row. Descriptive columns, when
// present, seed records for ISBNs not seen before.
func (a *App) ImportReceiving(ctx context.Context, rows []map[string]any) ImportReport {
	var report ImportReport
	for _, row := range rows {
		isbn := domain.NormalizeISBN(rowString(row, isbnAliases))
		qty := rowInt(row, qtyAliases)
		if isbn == "" || qty <= 0 {
			report.Skipped++
			continue
		}
		err := a.ensureBook(ctx, domain.Book{
			ISBN:          isbn,
			Title:         rowString(row, titleAliases),
			Author:        rowString(row, authorAliases),
			Publisher:     rowString(row, pubAliases),
			Summary:       rowString(row, summaryAliases),
			ListPrice:     rowFloat(row, priceAliases),
			ShelfLocation: rowString(row, shelfAliases),
		})
		if err != nil {
			slog.Warn("receiving import row skipped", "isbn", isbn, "error", err)
			report.Skipped++
			continue
		}
		if _, err := a.store.AddStock(isbn, qty); err != nil {
			slog.Warn("receiving import row skipped", "isbn", isbn, "error", err)
			report.Skipped++
			continue
		}
		report.Imported++
	}
	return report
}

// RunImportJob is the queue handler for async imports.
func (a *App) RunImportJob(ctx context.Context, job queue.Job) (queue.Report, error) {
	switch job.Kind {
	case queue.KindSales:
		report := a.ImportSales(ctx, job.Rows, a.today())
		return queue.Report{Imported: report.Imported, Skipped: report.Skipped}, nil
	case queue.KindReceiving:
		report := a.ImportReceiving(ctx, job.Rows)
		return queue.Report{Imported: report.Imported, Skipped: report.Skipped}, nil
	case queue.KindCatalog:
		count, err := a.ReplaceCatalog(job.DistributorID, job.Rows)
		if err != nil {
			return queue.Report{}, err
		}
		return queue.Report{Imported: count, Skipped: len(job.Rows) - count}, nil
	default:
		return queue.Report{}, fmt.Errorf("unknown import kind %q", job.Kind)
	}
}
