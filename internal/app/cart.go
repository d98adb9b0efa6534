package app

import (
	"sync"

	"bookventory/internal/util"
	"bookventory/pkg/domain"
)

// CartLine is one title in an order-in-progress. The distributor is captured
// at add time so grouping stays stable even if the book record changes later.
type CartLine struct {
	ISBN            string  `json:"isbn"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ListPrice       float64 `json:"listPrice"`
	Qty             int     `json:"qty"`
	DistributorID   string  `json:"distributorId,omitempty"`
	DistributorName string  `json:"distributorName"`
}

// Cart accumulates lines for one ordering session. Adding the same ISBN
// twice merges quantities.
type Cart struct {
	mu    sync.Mutex
	lines map[string]CartLine
	order []string
}

func newCart() *Cart {
	return &Cart{lines: make(map[string]CartLine)}
}

func (c *Cart) add(line CartLine) CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.lines[line.ISBN]; ok {
		existing.Qty += line.Qty
		c.lines[line.ISBN] = existing
		return existing
	}
	c.lines[line.ISBN] = line
	c.order = append(c.order, line.ISBN)
	return line
}

// Lines returns the cart contents in insertion order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, 0, len(c.order))
	for _, isbn := range c.order {
		out = append(out, c.lines[isbn])
	}
	return out
}

// Clear empties the cart but keeps the session alive.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[string]CartLine)
	c.order = nil
}

// AddToCart looks the book up and appends it to the session cart.
func (a *App) AddToCart(c *Cart, isbn string, qty int) (CartLine, error) {
	isbn = domain.NormalizeISBN(isbn)
	if isbn == "" {
		return CartLine{}, ErrInvalidISBN
	}
	if qty <= 0 {
		return CartLine{}, ErrInvalidQuantity
	}
	book, ok, err := a.store.GetBook(isbn)
	if err != nil {
		return CartLine{}, err
	}
	if !ok {
		return CartLine{}, ErrBookNotFound
	}
	line := CartLine{
		ISBN:            book.ISBN,
		Title:           book.Title,
		Author:          book.Author,
		ListPrice:       book.ListPrice,
		Qty:             qty,
		DistributorID:   book.DistributorID,
		DistributorName: domain.Placeholder,
	}
	if book.DistributorID != "" {
		if dist, ok, err := a.store.GetDistributor(book.DistributorID); err == nil && ok {
			line.DistributorName = dist.Name
		}
	}
	return c.add(line), nil
}

// Carts tracks live ordering sessions by ID.
type Carts struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewCarts() *Carts {
	return &Carts{carts: make(map[string]*Cart)}
}

// Create opens a new session and returns its ID.
func (r *Carts) Create() (string, *Cart) {
	id := util.NewID()
	cart := newCart()
	r.mu.Lock()
	r.carts[id] = cart
	r.mu.Unlock()
	return id, cart
}

func (r *Carts) Get(id string) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[id]
	return cart, ok
}

// Delete ends a session.
func (r *Carts) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, id)
}
