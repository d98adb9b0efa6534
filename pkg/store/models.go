package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type BookModel struct {
	ISBN          string `gorm:"primaryKey"`
	Title         string `gorm:"not null"`
	Author        string
	Publisher     string
	Genre         string
	Summary       string `gorm:"type:text"`
	CoverURL      string
	ListPrice     float64 `gorm:"not null"`
	Stock         int     `gorm:"not null"`
	ShelfLocation string
	AcquiredAt    time.Time
	DistributorID *string   `gorm:"index"`
	CreatedAt     time.Time `gorm:"not null"`
}

type DistributorModel struct {
	ID                 string         `gorm:"primaryKey"`
	Name               string         `gorm:"uniqueIndex;not null"`
	Emails             datatypes.JSON `gorm:"type:jsonb"`
	CCEmails           datatypes.JSON `gorm:"type:jsonb"`
	ReturnWindowMonths int            `gorm:"not null"`
	CreatedAt          time.Time      `gorm:"not null"`
}

type SaleModel struct {
	ID     string    `gorm:"primaryKey"`
	ISBN   string    `gorm:"not null;index"`
	Qty    int       `gorm:"not null"`
	SoldOn time.Time `gorm:"not null;index"`
}

type CatalogEntryModel struct {
	ID            string `gorm:"primaryKey"`
	DistributorID string `gorm:"not null;index"`
	ISBN          string `gorm:"not null"`
	Title         string
	Author        string
	Publisher     string
	ListPrice     float64
	QtyAvailable  int
	UpdatedAt     time.Time `gorm:"not null"`
}
