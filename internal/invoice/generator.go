package invoice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
)

// Generator renders invoice documents for corporate orders and returns a
// URL the admin UI can hand to the customer. Rendering is deliberately
// simple text here; the accounting system picks the artifact up from the
// shared directory.
type Generator struct {
	Dir     string
	BaseURL string
	Logger  *logger.Logger
}

func NewGenerator(dir, baseURL string, log *logger.Logger) *Generator {
	return &Generator{Dir: dir, BaseURL: baseURL, Logger: log}
}

// GenerateInvoiceDocument writes the invoice file for the order and returns
// its URL. Regenerating overwrites the previous artifact for the same order,
// so repeated calls are idempotent.
func (g *Generator) GenerateInvoiceDocument(ctx context.Context, order *models.B2BOrder) (string, error) {
	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice-%s.txt", order.OrderNumber)
	path := filepath.Join(g.Dir, fileName)

	var b strings.Builder
	fmt.Fprintf(&b, "INVOICE %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Date: %s\n\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "%s\n", order.CompanyName)
	if order.CompanyVATID != "" {
		fmt.Fprintf(&b, "VAT: %s\n", order.CompanyVATID)
	}
	fmt.Fprintf(&b, "Attn: %s <%s>\n\n", order.ContactName, order.ContactEmail)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%-36s x%-4d %10s\n", item.TicketTypeID, item.Quantity, formatCents(item.LineTotal, order.Currency))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", formatCents(order.Subtotal, order.Currency))
	fmt.Fprintf(&b, "Discount (%d%%): -%s\n", order.DiscountPercent, formatCents(order.DiscountAmount, order.Currency))
	fmt.Fprintf(&b, "Total due: %s\n", formatCents(order.FinalAmount, order.Currency))

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write invoice for order %s: %w", order.ID, err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(g.BaseURL, "/"), fileName)
	g.Logger.Info("INVOICE", fmt.Sprintf("Generated invoice for order %s: %s", order.ID, url))
	return url, nil
}

func formatCents(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, currency)
}
