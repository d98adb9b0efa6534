package app

import (
	"errors"
	"fmt"
	"time"

	"bookventory/pkg/metadata"
	"bookventory/pkg/storage"
	"bookventory/pkg/store"
)

// Sentinel errors returned by application operations. The HTTP layer maps
// these onto stable error codes.
var (
	ErrInvalidISBN          = errors.New("invalid ISBN")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrBookNotFound         = errors.New("book not found")
	ErrDistributorNotFound  = errors.New("distributor not found")
	ErrInvalidDistributor   = errors.New("distributor name required")
	ErrDuplicateDistributor = errors.New("distributor name already in use")
	ErrEmptyCart            = errors.New("cart is empty")
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Resolver    *metadata.Resolver
	Objects     storage.ObjectStore
	DueSoonDays int
	Now         func() time.Time
}

// App is the core application service wiring together storage, metadata
// resolution and domain logic.
type App struct {
	store         store.Store
	resolver      *metadata.Resolver
	objects       storage.ObjectStore
	dueSoonDays   int
	now           func() time.Time
	presignExpiry time.Duration
}

// New constructs the application. When cfg.Store is nil a Postgres-backed
// store is opened from cfg.DatabaseURL.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("metadata resolver required")
	}
	dueSoon := cfg.DueSoonDays
	if dueSoon <= 0 {
		dueSoon = 30
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		store:         dataStore,
		resolver:      cfg.Resolver,
		objects:       cfg.Objects,
		dueSoonDays:   dueSoon,
		now:           now,
		presignExpiry: 15 * time.Minute,
	}, nil
}

// today returns the current date truncated to midnight UTC.
func (a *App) today() time.Time {
	return dateOnly(a.now().UTC())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
