package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookventory/pkg/queue"
)

type importRequest struct {
	Rows   []map[string]any `json:"rows"`
	SoldOn string           `json:"soldOn,omitempty"`
}

// withImportLimit applies the per-client quota on bulk endpoints.
func (s *Server) withImportLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.allowImport(w, r) {
			return
		}
		next(w, r)
	}
}

func (s *Server) allowImport(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	if !s.limiter.Allow(clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isAsync(r *http.Request) bool {
	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	return async
}

// handleImport serves the synchronous sales and receiving imports and, with
// ?async=1, hands the batch to the queue instead.
func (s *Server) handleImport(kind queue.ImportKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req importRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Rows) == 0 {
			writeError(w, http.StatusBadRequest, "rows are required")
			return
		}
		if isAsync(r) {
			s.enqueueImport(w, r, kind, "", req.Rows)
			return
		}
		switch kind {
		case queue.KindSales:
			var soldOn time.Time
			if req.SoldOn != "" {
				parsed, err := time.Parse("2006-01-02", req.SoldOn)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid date")
					return
				}
				soldOn = parsed
			}
			writeJSON(w, http.StatusOK, s.app.ImportSales(r.Context(), req.Rows, soldOn))
		case queue.KindReceiving:
			writeJSON(w, http.StatusOK, s.app.ImportReceiving(r.Context(), req.Rows))
		default:
			notFound(w, "not found")
		}
	}
}

func (s *Server) enqueueImport(w http.ResponseWriter, r *http.Request, kind queue.ImportKind, distributorID string, rows []map[string]any) {
	if s.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "async imports not configured")
		return
	}
	status, err := s.queue.Enqueue(r.Context(), kind, distributorID, rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}

// /imports/{id}
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/imports/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	if s.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "async imports not configured")
		return
	}
	status, ok, err := s.queue.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		notFound(w, "import job not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
