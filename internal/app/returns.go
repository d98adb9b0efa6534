package app

import (
	"sort"
	"time"

	"bookventory/pkg/domain"
)

// Urgency buckets for the returns report.
const (
	UrgencyOverdue   = "overdue"
	UrgencyDueSoon   = "due-soon"
	UrgencyNotUrgent = "not-urgent"
)

// ReturnItem is one stocked, distributor-attached book with its return
// deadline worked out from the distributor's window.
type ReturnItem struct {
	Book            domain.Book `json:"book"`
	DistributorID   string      `json:"distributorId"`
	DistributorName string      `json:"distributorName"`
	DueDate         time.Time   `json:"dueDate"`
	DaysLeft        int         `json:"daysLeft"`
	Urgency         string      `json:"urgency"`
}

// ReturnsReport lists every return candidate ordered most urgent first.
// Due dates use calendar months from the acquisition date, so windows
// crossing month-length boundaries follow time.AddDate semantics.
func (a *App) ReturnsReport() ([]ReturnItem, error) {
	books, err := a.store.ReturnCandidates()
	if err != nil {
		return nil, err
	}
	distributors, err := a.store.ListDistributors()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Distributor, len(distributors))
	for _, d := range distributors {
		byID[d.ID] = d
	}

	today := a.today()
	items := make([]ReturnItem, 0, len(books))
	for _, book := range books {
		months := domain.DefaultReturnWindowMonths
		name := domain.Placeholder
		if dist, ok := byID[book.DistributorID]; ok {
			name = dist.Name
			if dist.ReturnWindowMonths > 0 {
				months = dist.ReturnWindowMonths
			}
		}
		due := dateOnly(book.AcquiredAt.UTC()).AddDate(0, months, 0)
		daysLeft := int(due.Sub(today).Hours() / 24)
		urgency := UrgencyNotUrgent
		switch {
		case daysLeft < 0:
			urgency = UrgencyOverdue
		case daysLeft < a.dueSoonDays:
			urgency = UrgencyDueSoon
		}
		items = append(items, ReturnItem{
			Book:            book,
			DistributorID:   book.DistributorID,
			DistributorName: name,
			DueDate:         due,
			DaysLeft:        daysLeft,
			Urgency:         urgency,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].DaysLeft < items[j].DaysLeft })
	return items, nil
}
