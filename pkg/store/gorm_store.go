package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bookventory/pkg/domain"
)

const migrateLockID int64 = 42114211

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&BookModel{}, &DistributorModel{}, &SaleModel{}, &CatalogEntryModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveBook stores or fully replaces a book record. This is the explicit
// operator add path; automated paths use CreateBook instead.
func (s *GormStore) SaveBook(b domain.Book) error {
	model := bookToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "isbn"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "author", "publisher", "genre", "summary", "cover_url",
			"list_price", "stock", "shelf_location", "acquired_at", "distributor_id",
		}),
	}).Create(&model).Error
}

// CreateBook inserts a book only when the ISBN is unknown. Existing records
// keep their curated fields untouched. Reports whether a row was created.
func (s *GormStore) CreateBook(b domain.Book) (bool, error) {
	model := bookToModel(b)
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "isbn"}},
		DoNothing: true,
	}).Create(&model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetBook retrieves a book by ISBN.
func (s *GormStore) GetBook(isbn string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "isbn = ?", isbn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// SearchBooks returns books whose ISBN or title contains query, newest
// first. An empty query lists everything.
func (s *GormStore) SearchBooks(query string) ([]domain.Book, error) {
	var models []BookModel
	tx := s.db.Order("created_at DESC")
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + q + "%"
		tx = tx.Where("isbn ILIKE ? OR title ILIKE ?", pattern, pattern)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	books := make([]domain.Book, 0, len(models))
	for _, m := range models {
		books = append(books, bookFromModel(m))
	}
	return books, nil
}

// SetStock replaces stock and shelf location directly.
func (s *GormStore) SetStock(isbn string, stock int, shelfLocation string) error {
	res := s.db.Model(&BookModel{}).
		Where("isbn = ?", isbn).
		Updates(map[string]any{
			"stock":          stock,
			"shelf_location": shelfLocation,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddStock increments stock and returns the new value.
func (s *GormStore) AddStock(isbn string, delta int) (int, error) {
	var stock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec("UPDATE book_models SET stock = GREATEST(stock + ?, 0) WHERE isbn = ?", delta, isbn)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&BookModel{}).Where("isbn = ?", isbn).Select("stock").Scan(&stock).Error
	})
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// DeleteBook removes the book row. Sale events are retained for reporting.
func (s *GormStore) DeleteBook(isbn string) error {
	return s.db.Delete(&BookModel{}, "isbn = ?", isbn).Error
}

// CountBooks returns the number of distinct titles.
func (s *GormStore) CountBooks() (int, error) {
	var count int64
	if err := s.db.Model(&BookModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// TotalStock returns the total on-hand units across all books.
func (s *GormStore) TotalStock() (int, error) {
	var total sql.NullInt64
	if err := s.db.Model(&BookModel{}).Select("SUM(stock)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}

// OutOfStockCount returns how many books sit at zero stock.
func (s *GormStore) OutOfStockCount() (int, error) {
	var count int64
	if err := s.db.Model(&BookModel{}).Where("stock = 0").Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// RecordSale appends the sale event and decrements stock clamped at zero,
// both inside one transaction. Returns the resulting stock.
func (s *GormStore) RecordSale(sale domain.SaleEvent) (int, error) {
	var stock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		model := saleToModel(sale)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE book_models SET stock = GREATEST(stock - ?, 0) WHERE isbn = ?", sale.Qty, sale.ISBN).Error; err != nil {
			return err
		}
		return tx.Model(&BookModel{}).Where("isbn = ?", sale.ISBN).Select("stock").Scan(&stock).Error
	})
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// ListSales returns sale events for one ISBN, oldest first.
func (s *GormStore) ListSales(isbn string) ([]domain.SaleEvent, error) {
	var models []SaleModel
	if err := s.db.Where("isbn = ?", isbn).Order("sold_on ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	sales := make([]domain.SaleEvent, 0, len(models))
	for _, m := range models {
		sales = append(sales, saleFromModel(m))
	}
	return sales, nil
}

// SalesSince aggregates sold quantities per day from the given date on.
func (s *GormStore) SalesSince(from time.Time) ([]domain.SalesByDay, error) {
	type row struct {
		Day time.Time
		Qty int
	}
	var rows []row
	err := s.db.Raw(`
		SELECT DATE(sold_on) AS day, SUM(qty) AS qty
		FROM sale_models
		WHERE sold_on >= ?
		GROUP BY DATE(sold_on)
		ORDER BY day ASC
	`, from).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.SalesByDay, 0, len(rows))
	for _, r := range rows {
		res = append(res, domain.SalesByDay{Day: r.Day, Qty: r.Qty})
	}
	return res, nil
}

// SaveDistributor stores or updates a distributor.
func (s *GormStore) SaveDistributor(d domain.Distributor) error {
	model := distributorToModel(d)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "emails", "cc_emails", "return_window_months"}),
	}).Create(&model).Error
}

// GetDistributor returns a distributor by ID.
func (s *GormStore) GetDistributor(id string) (domain.Distributor, bool, error) {
	var model DistributorModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Distributor{}, false, nil
		}
		return domain.Distributor{}, false, err
	}
	return distributorFromModel(model), true, nil
}

// GetDistributorByName looks a distributor up by exact name.
func (s *GormStore) GetDistributorByName(name string) (domain.Distributor, bool, error) {
	var model DistributorModel
	if err := s.db.First(&model, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Distributor{}, false, nil
		}
		return domain.Distributor{}, false, err
	}
	return distributorFromModel(model), true, nil
}

// ListDistributors returns all distributors ordered by name.
func (s *GormStore) ListDistributors() ([]domain.Distributor, error) {
	var models []DistributorModel
	if err := s.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Distributor, 0, len(models))
	for _, m := range models {
		res = append(res, distributorFromModel(m))
	}
	return res, nil
}

// DeleteDistributor removes the distributor, detaches its books, and drops
// its catalog snapshot in one transaction. Books themselves are kept.
func (s *GormStore) DeleteDistributor(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BookModel{}).Where("distributor_id = ?", id).
			Update("distributor_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&CatalogEntryModel{}, "distributor_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&DistributorModel{}, "id = ?", id).Error
	})
}

// ReplaceCatalog swaps a distributor's offer snapshot wholesale. Delete and
// insert run in one transaction so a failed upload never leaves the
// distributor with an empty catalog.
func (s *GormStore) ReplaceCatalog(distributorID string, entries []domain.CatalogEntry) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&CatalogEntryModel{}, "distributor_id = ?", distributorID).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		models := make([]CatalogEntryModel, 0, len(entries))
		for _, e := range entries {
			model := catalogEntryToModel(e)
			model.DistributorID = distributorID
			models = append(models, model)
		}
		return tx.CreateInBatches(&models, 200).Error
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ListCatalog returns a distributor's current offer snapshot.
func (s *GormStore) ListCatalog(distributorID string) ([]domain.CatalogEntry, error) {
	var models []CatalogEntryModel
	if err := s.db.Where("distributor_id = ?", distributorID).Order("isbn ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CatalogEntry, 0, len(models))
	for _, m := range models {
		res = append(res, catalogEntryFromModel(m))
	}
	return res, nil
}

// ReturnCandidates lists books with a supplying distributor and stock on
// hand. Zero-stock books have nothing to return.
func (s *GormStore) ReturnCandidates() ([]domain.Book, error) {
	var models []BookModel
	if err := s.db.Where("distributor_id IS NOT NULL AND stock > 0").
		Order("acquired_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	books := make([]domain.Book, 0, len(models))
	for _, m := range models {
		books = append(books, bookFromModel(m))
	}
	return books, nil
}

func bookToModel(b domain.Book) BookModel {
	var distributorID *string
	if strings.TrimSpace(b.DistributorID) != "" {
		value := strings.TrimSpace(b.DistributorID)
		distributorID = &value
	}
	return BookModel{
		ISBN:          b.ISBN,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		Genre:         b.Genre,
		Summary:       b.Summary,
		CoverURL:      b.CoverURL,
		ListPrice:     b.ListPrice,
		Stock:         b.Stock,
		ShelfLocation: b.ShelfLocation,
		AcquiredAt:    b.AcquiredAt,
		DistributorID: distributorID,
		CreatedAt:     b.CreatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	distributorID := ""
	if m.DistributorID != nil {
		distributorID = *m.DistributorID
	}
	return domain.Book{
		ISBN:          m.ISBN,
		Title:         m.Title,
		Author:        m.Author,
		Publisher:     m.Publisher,
		Genre:         m.Genre,
		Summary:       m.Summary,
		CoverURL:      m.CoverURL,
		ListPrice:     m.ListPrice,
		Stock:         m.Stock,
		ShelfLocation: m.ShelfLocation,
		AcquiredAt:    m.AcquiredAt,
		DistributorID: distributorID,
		CreatedAt:     m.CreatedAt,
	}
}

func distributorToModel(d domain.Distributor) DistributorModel {
	emails, _ := json.Marshal(d.Emails)
	ccEmails, _ := json.Marshal(d.CCEmails)
	return DistributorModel{
		ID:                 d.ID,
		Name:               d.Name,
		Emails:             emails,
		CCEmails:           ccEmails,
		ReturnWindowMonths: d.ReturnWindowMonths,
		CreatedAt:          d.CreatedAt,
	}
}

func distributorFromModel(m DistributorModel) domain.Distributor {
	var emails, ccEmails []string
	if len(m.Emails) > 0 {
		_ = json.Unmarshal(m.Emails, &emails)
	}
	if len(m.CCEmails) > 0 {
		_ = json.Unmarshal(m.CCEmails, &ccEmails)
	}
	months := m.ReturnWindowMonths
	if months <= 0 {
		months = domain.DefaultReturnWindowMonths
	}
	return domain.Distributor{
		ID:                 m.ID,
		Name:               m.Name,
		Emails:             emails,
		CCEmails:           ccEmails,
		ReturnWindowMonths: months,
		CreatedAt:          m.CreatedAt,
	}
}

func saleToModel(s domain.SaleEvent) SaleModel {
	return SaleModel{
		ID:     s.ID,
		ISBN:   s.ISBN,
		Qty:    s.Qty,
		SoldOn: s.SoldOn,
	}
}

func saleFromModel(m SaleModel) domain.SaleEvent {
	return domain.SaleEvent{
		ID:     m.ID,
		ISBN:   m.ISBN,
		Qty:    m.Qty,
		SoldOn: m.SoldOn,
	}
}

func catalogEntryToModel(e domain.CatalogEntry) CatalogEntryModel {
	return CatalogEntryModel{
		ID:            e.ID,
		DistributorID: e.DistributorID,
		ISBN:          e.ISBN,
		Title:         e.Title,
		Author:        e.Author,
		Publisher:     e.Publisher,
		ListPrice:     e.ListPrice,
		QtyAvailable:  e.QtyAvailable,
		UpdatedAt:     e.UpdatedAt,
	}
}

func catalogEntryFromModel(m CatalogEntryModel) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:            m.ID,
		DistributorID: m.DistributorID,
		ISBN:          m.ISBN,
		Title:         m.Title,
		Author:        m.Author,
		Publisher:     m.Publisher,
		ListPrice:     m.ListPrice,
		QtyAvailable:  m.QtyAvailable,
		UpdatedAt:     m.UpdatedAt,
	}
}
