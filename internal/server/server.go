package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bookventory/internal/app"
	"bookventory/internal/ratelimit"
	"bookventory/internal/util"
	"bookventory/pkg/queue"
)

const maxBodyBytes = 8 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App     *app.App
	Carts   *app.Carts
	Queue   *queue.ImportQueue
	Limiter *ratelimit.FixedWindowLimiter
}

// Server exposes the inventory HTTP API.
type Server struct {
	app     *app.App
	carts   *app.Carts
	queue   *queue.ImportQueue
	limiter *ratelimit.FixedWindowLimiter
	mux     *http.ServeMux
}

// New constructs the server with routes configured. Queue is optional; when
// absent, async imports report as unavailable.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	carts := cfg.Carts
	if carts == nil {
		carts = app.NewCarts()
	}
	s := &Server{
		app:     cfg.App,
		carts:   carts,
		queue:   cfg.Queue,
		limiter: cfg.Limiter,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/returns", s.handleReturns)
	s.mux.HandleFunc("/metadata/", s.handleMetadata)

	// inventory
	s.mux.HandleFunc("/books", s.handleBooks)
	s.mux.HandleFunc("/books/", s.handleBookByISBN)
	s.mux.HandleFunc("/sales", s.handleSales)

	// bulk imports
	s.mux.HandleFunc("/imports/sales", s.withImportLimit(s.handleImport(queue.KindSales)))
	s.mux.HandleFunc("/imports/receiving", s.withImportLimit(s.handleImport(queue.KindReceiving)))
	s.mux.HandleFunc("/imports/", s.handleImportStatus)

	// distributors and catalogs
	s.mux.HandleFunc("/distributors", s.handleDistributors)
	s.mux.HandleFunc("/distributors/", s.handleDistributorByID)

	// ordering sessions
	s.mux.HandleFunc("/carts", s.handleCarts)
	s.mux.HandleFunc("/carts/", s.handleCartByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.app.Dashboard()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReturns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items, err := s.app.ReturnsReport()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// /metadata/{isbn}
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	isbn := strings.TrimPrefix(r.URL.Path, "/metadata/")
	if isbn == "" || strings.Contains(isbn, "/") {
		notFound(w, "not found")
		return
	}
	meta, found := s.app.Lookup(r.Context(), isbn)
	writeJSON(w, http.StatusOK, map[string]any{
		"found":    found,
		"metadata": meta,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeAppError maps application sentinel errors onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidISBN):
		writeError(w, http.StatusBadRequest, "invalid ISBN")
	case errors.Is(err, app.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, app.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "book not found")
	case errors.Is(err, app.ErrDistributorNotFound):
		writeError(w, http.StatusNotFound, "distributor not found")
	case errors.Is(err, app.ErrInvalidDistributor):
		writeError(w, http.StatusBadRequest, "distributor name required")
	case errors.Is(err, app.ErrDuplicateDistributor):
		writeError(w, http.StatusConflict, "distributor name already in use")
	case errors.Is(err, app.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCode(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCode(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "invalid isbn":
		return "INVENTORY_INVALID_ISBN"
	case message == "quantity must be positive":
		return "INVENTORY_INVALID_QUANTITY"
	case message == "stock is required":
		return "INVENTORY_STOCK_REQUIRED"
	case message == "book not found":
		return "BOOK_NOT_FOUND"
	case message == "distributor not found":
		return "DISTRIBUTOR_NOT_FOUND"
	case message == "distributor name required":
		return "DISTRIBUTOR_NAME_REQUIRED"
	case message == "distributor name already in use":
		return "DISTRIBUTOR_DUPLICATE_NAME"
	case message == "cart not found":
		return "CART_NOT_FOUND"
	case message == "cart is empty":
		return "CART_EMPTY"
	case message == "rows are required":
		return "IMPORT_ROWS_REQUIRED"
	case message == "import job not found":
		return "IMPORT_NOT_FOUND"
	case message == "async imports not configured":
		return "IMPORT_QUEUE_UNAVAILABLE"
	case message == "too many requests":
		return "IMPORT_RATE_LIMITED"
	case message == "invalid json body":
		return "REQUEST_INVALID_BODY"
	case message == "invalid date":
		return "REQUEST_INVALID_DATE"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case message == "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "REQUEST_ERROR"
	case http.StatusNotFound:
		return "SYSTEM_NOT_FOUND"
	case http.StatusConflict:
		return "REQUEST_CONFLICT"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
