package server

import (
	"net/http"
	"strings"

	"bookventory/pkg/domain"
	"bookventory/pkg/queue"
)

type distributorRequest struct {
	Name               string   `json:"name"`
	Emails             []string `json:"emails"`
	CCEmails           []string `json:"ccEmails"`
	ReturnWindowMonths int      `json:"returnWindowMonths"`
}

func (req distributorRequest) toDomain() domain.Distributor {
	return domain.Distributor{
		Name:               req.Name,
		Emails:             req.Emails,
		CCEmails:           req.CCEmails,
		ReturnWindowMonths: req.ReturnWindowMonths,
	}
}

func (s *Server) handleDistributors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		distributors, err := s.app.ListDistributors()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": distributors,
			"count": len(distributors),
		})
	case http.MethodPost:
		var req distributorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dist, err := s.app.AddDistributor(req.toDomain())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, dist)
	default:
		methodNotAllowed(w)
	}
}

// /distributors/{id} and /distributors/{id}/catalog
func (s *Server) handleDistributorByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/distributors/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		notFound(w, "not found")
		return
	}
	if len(parts) == 2 {
		if parts[1] == "catalog" {
			s.handleCatalog(w, r, id)
			return
		}
		notFound(w, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		dist, ok, err := s.app.GetDistributor(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			notFound(w, "distributor not found")
			return
		}
		writeJSON(w, http.StatusOK, dist)
	case http.MethodPatch:
		var req distributorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dist, err := s.app.UpdateDistributor(id, req.toDomain())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dist)
	case http.MethodDelete:
		if err := s.app.RemoveDistributor(id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.app.ListCatalog(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": entries,
			"count": len(entries),
		})
	case http.MethodPut:
		if !s.allowImport(w, r) {
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
			s.enqueueImport(w, r, queue.KindCatalog, id, req.Rows)
			return
		}
		count, err := s.app.ReplaceCatalog(id, req.Rows)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   count,
			"skipped": len(req.Rows) - count,
		})
	default:
		methodNotAllowed(w)
	}
}
