package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"bookventory/pkg/domain"
)

// EmailDraft is a ready-to-send purchase order email. Nothing is sent by the
// system; the operator copies the draft into their mail client.
type EmailDraft struct {
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// PurchaseOrder is the per-distributor output of an ordering session: the
// grouped lines, a CSV rendition, and an email draft.
type PurchaseOrder struct {
	DistributorID   string     `json:"distributorId,omitempty"`
	DistributorName string     `json:"distributorName"`
	Lines           []CartLine `json:"lines"`
	CSV             string     `json:"csv"`
	Email           EmailDraft `json:"email"`
	DocumentKey     string     `json:"documentKey,omitempty"`
	DocumentURL     string     `json:"documentUrl,omitempty"`
}

// GeneratePurchaseOrders groups the cart by distributor and produces one
// purchase order per group. The cart is left intact; clearing is a separate
// session operation.
func (a *App) GeneratePurchaseOrders(ctx context.Context, c *Cart) ([]PurchaseOrder, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	groups := make(map[string][]CartLine)
	var names []string
	for _, line := range lines {
		name := line.DistributorName
		if name == "" {
			name = domain.Placeholder
		}
		if _, seen := groups[name]; !seen {
			names = append(names, name)
		}
		groups[name] = append(groups[name], line)
	}

	orders := make([]PurchaseOrder, 0, len(names))
	for _, name := range names {
		group := groups[name]
		order := PurchaseOrder{
			DistributorID:   group[0].DistributorID,
			DistributorName: name,
			Lines:           group,
			CSV:             renderOrderCSV(group),
		}
		order.Email = a.draftOrderEmail(name, order.DistributorID, group)
		a.archiveOrder(ctx, &order)
		orders = append(orders, order)
	}
	return orders, nil
}

func renderOrderCSV(lines []CartLine) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"isbn", "title", "author", "qty"})
	for _, line := range lines {
		_ = w.Write([]string{line.ISBN, line.Title, line.Author, strconv.Itoa(line.Qty)})
	}
	w.Flush()
	return buf.String()
}

func (a *App) draftOrderEmail(name, distributorID string, lines []CartLine) EmailDraft {
	draft := EmailDraft{Subject: fmt.Sprintf("Purchase order: %s", name)}
	if distributorID != "" {
		if dist, ok, err := a.store.GetDistributor(distributorID); err == nil && ok {
			draft.To = dist.Emails
			draft.CC = dist.CCEmails
		}
	}
	var b strings.Builder
	b.WriteString("Hello,\n\nPlease supply the following titles:\n\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "- %s by %s (ISBN %s) x %d\n", line.Title, line.Author, line.ISBN, line.Qty)
	}
	b.WriteString("\nThank you.\n")
	draft.Body = b.String()
	return draft
}

// archiveOrder writes the CSV to object storage when a store is configured.
// Archive failures are logged and do not fail order generation.
func (a *App) archiveOrder(ctx context.Context, order *PurchaseOrder) {
	if a.objects == nil {
		return
	}
	key := path.Join("orders", a.today().Format("2006-01-02"), orderSlug(order.DistributorName)+"-"+uuid.NewString()+".csv")
	data := []byte(order.CSV)
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "text/csv"); err != nil {
		slog.Warn("archive purchase order", "distributor", order.DistributorName, "error", err)
		return
	}
	order.DocumentKey = key
	if url, err := a.objects.PresignGet(ctx, key, a.presignExpiry); err == nil {
		order.DocumentURL = url
	}
}

func orderSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "order"
	}
	return slug
}
