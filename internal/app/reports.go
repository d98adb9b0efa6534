package app

import (
	"bookventory/pkg/domain"
)

// DashboardStats is the landing-page summary: title and unit counts plus a
// 30-day sales series.
type DashboardStats struct {
	Titles     int                 `json:"titles"`
	TotalUnits int                 `json:"totalUnits"`
	OutOfStock int                 `json:"outOfStock"`
	Sales      []domain.SalesByDay `json:"salesLast30Days"`
}

// Dashboard aggregates inventory counters and recent sales.
func (a *App) Dashboard() (DashboardStats, error) {
	titles, err := a.store.CountBooks()
	if err != nil {
		return DashboardStats{}, err
	}
	units, err := a.store.TotalStock()
	if err != nil {
		return DashboardStats{}, err
	}
	outOfStock, err := a.store.OutOfStockCount()
	if err != nil {
		return DashboardStats{}, err
	}
	sales, err := a.store.SalesSince(a.today().AddDate(0, 0, -30))
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		Titles:     titles,
		TotalUnits: units,
		OutOfStock: outOfStock,
		Sales:      sales,
	}, nil
}
