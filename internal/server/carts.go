package server

import (
	"net/http"
	"strings"

	"bookventory/internal/app"
)

func (s *Server) handleCarts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, _ := s.carts.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// /carts/{id}, /carts/{id}/items, /carts/{id}/clear, /carts/{id}/orders
func (s *Server) handleCartByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/carts/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		notFound(w, "not found")
		return
	}
	cart, ok := s.carts.Get(id)
	if !ok {
		notFound(w, "cart not found")
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "items":
			s.handleCartItems(w, r, cart)
		case "clear":
			s.handleCartClear(w, r, cart)
		case "orders":
			s.handleCartOrders(w, r, cart)
		default:
			notFound(w, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		lines := cart.Lines()
		writeJSON(w, http.StatusOK, map[string]any{
			"id":    id,
			"items": lines,
			"count": len(lines),
		})
	case http.MethodDelete:
		s.carts.Delete(id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCartItems(w http.ResponseWriter, r *http.Request, cart *app.Cart) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		ISBN string `json:"isbn"`
		Qty  int    `json:"qty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	line, err := s.app.AddToCart(cart, req.ISBN, req.Qty)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request, cart *app.Cart) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	cart.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleCartOrders(w http.ResponseWriter, r *http.Request, cart *app.Cart) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	orders, err := s.app.GeneratePurchaseOrders(r.Context(), cart)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}
