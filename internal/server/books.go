package server

import (
	"net/http"
	"strings"
	"time"

	"bookventory/pkg/domain"
)

type bookRequest struct {
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Publisher     string  `json:"publisher"`
	Genre         string  `json:"genre"`
	Summary       string  `json:"summary"`
	CoverURL      string  `json:"coverUrl"`
	ListPrice     float64 `json:"listPrice"`
	Stock         int     `json:"stock"`
	ShelfLocation string  `json:"shelfLocation"`
	DistributorID string  `json:"distributorId"`
	AcquiredAt    string  `json:"acquiredAt"`
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleSearchBooks(w, r)
	case http.MethodPost:
		s.handleAddBook(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.app.SearchBooks(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": books,
		"count": len(books),
	})
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	book := domain.Book{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		Genre:         req.Genre,
		Summary:       req.Summary,
		CoverURL:      req.CoverURL,
		ListPrice:     req.ListPrice,
		Stock:         req.Stock,
		ShelfLocation: req.ShelfLocation,
		DistributorID: req.DistributorID,
	}
	if req.AcquiredAt != "" {
		acquired, err := time.Parse("2006-01-02", req.AcquiredAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		book.AcquiredAt = acquired
	}
	saved, err := s.app.AddBook(r.Context(), book)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// /books/{isbn}, /books/{isbn}/receive and /books/{isbn}/sales
func (s *Server) handleBookByISBN(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/books/")
	parts := strings.SplitN(path, "/", 2)
	isbn := parts[0]
	if isbn == "" {
		notFound(w, "not found")
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "receive":
			s.handleReceive(w, r, isbn)
		case "sales":
			s.handleBookSales(w, r, isbn)
		default:
			notFound(w, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		book, ok, err := s.app.GetBook(isbn)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			notFound(w, "book not found")
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodPatch:
		s.handleAdjust(w, r, isbn)
	case http.MethodDelete:
		if err := s.app.RemoveBook(isbn); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request, isbn string) {
	var req struct {
		Stock         *int   `json:"stock"`
		ShelfLocation string `json:"shelfLocation"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Stock == nil {
		writeError(w, http.StatusBadRequest, "stock is required")
		return
	}
	if err := s.app.Adjust(isbn, *req.Stock, req.ShelfLocation); err != nil {
		writeAppError(w, err)
		return
	}
	book, _, err := s.app.GetBook(isbn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request, isbn string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Qty int `json:"qty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	book, err := s.app.Receive(r.Context(), isbn, req.Qty)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleBookSales(w http.ResponseWriter, r *http.Request, isbn string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sales, err := s.app.ListSales(isbn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": sales,
		"count": len(sales),
	})
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		ISBN   string `json:"isbn"`
		Qty    int    `json:"qty"`
		SoldOn string `json:"soldOn"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var soldOn time.Time
	if req.SoldOn != "" {
		parsed, err := time.Parse("2006-01-02", req.SoldOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		soldOn = parsed
	}
	remaining, err := s.app.RecordSale(r.Context(), req.ISBN, req.Qty, soldOn)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"isbn":      domain.NormalizeISBN(req.ISBN),
		"remaining": remaining,
	})
}
