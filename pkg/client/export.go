package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// exportColumns is the fixed CSV column order.
var exportColumns = []string{
	"id", "productName", "customerName", "phone", "reference",
	"quantity", "totalPrice", "status", "createdAt", "notes",
}

// ExportFilename names the download with the current date.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("order-inquiries-%s.csv", now.Format("2006-01-02"))
}

// ExportCSV serializes the selected inquiries. Each record is fetched
// individually through the cache-aware read path; records that fail to load
// are skipped rather than aborting the export. Every field is quoted.
// Returns how many records were written.
func (s *Inquiries) ExportCSV(ctx context.Context, ids []string, w io.Writer) (int, error) {
	if err := writeCSVRow(w, exportColumns); err != nil {
		return 0, err
	}

	exported := 0
	for _, id := range ids {
		inquiry, err := s.Get(ctx, id)
		if err != nil {
			s.notify.Error(fmt.Sprintf("Skipping inquiry %s: %v", id, err))
			continue
		}

		quantity := ""
		if inquiry.Quantity != nil {
			quantity = fmt.Sprintf("%d", *inquiry.Quantity)
		}
		totalPrice := ""
		if inquiry.TotalPrice != nil {
			totalPrice = inquiry.TotalPrice.String()
		}

		row := []string{
			inquiry.ID,
			inquiry.ProductName,
			inquiry.Customer.Name,
			inquiry.Customer.Phone,
			inquiry.Customer.Reference,
			quantity,
			totalPrice,
			string(inquiry.Status),
			inquiry.CreatedAt.UTC().Format(time.RFC3339),
			inquiry.Notes,
		}
		if err := writeCSVRow(w, row); err != nil {
			return exported, err
		}
		exported++
	}

	return exported, nil
}

// writeCSVRow quotes every field unconditionally, doubling embedded quotes.
func writeCSVRow(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
