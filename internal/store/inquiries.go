package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

const inquiryColumns = `id, product_id, product_name, customer, quantity,
	selected_variants, total_price, status, notes, created_at, updated_at`

func (s *Store) CreateInquiry(ctx context.Context, q *models.OrderInquiry) (*models.OrderInquiry, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.Status == "" {
		q.Status = models.InquiryPending
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	customer, err := marshalJSONB(q.Customer)
	if err != nil {
		return nil, err
	}
	variants, err := marshalJSONBObject(q.SelectedVariants)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO order_inquiries (id, product_id, product_name, customer, quantity,
			selected_variants, total_price, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = s.db.ExecContext(ctx, query,
		q.ID, q.ProductID, q.ProductName, customer, q.Quantity,
		variants, decimalOrNil(q.TotalPrice), q.Status, q.Notes, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}

	return q, nil
}

func (s *Store) GetInquiry(ctx context.Context, id string) (*models.OrderInquiry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inquiryColumns+` FROM order_inquiries WHERE id = $1`, id)
	q, err := scanInquiry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInquiryNotFound
		}
		return nil, fmt.Errorf("get inquiry: %w", err)
	}
	return q, nil
}

func (s *Store) ListInquiries(ctx context.Context, filter models.InquiryFilter) ([]models.OrderInquiry, int, error) {
	where, args := buildInquiryWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_inquiries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM order_inquiries%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		inquiryColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := []models.OrderInquiry{}
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inquiry: %w", err)
		}
		inquiries = append(inquiries, *q)
	}
	return inquiries, total, rows.Err()
}

func (s *Store) UpdateInquiry(ctx context.Context, q *models.OrderInquiry) (*models.OrderInquiry, error) {
	q.UpdatedAt = time.Now().UTC()

	customer, err := marshalJSONB(q.Customer)
	if err != nil {
		return nil, err
	}
	variants, err := marshalJSONBObject(q.SelectedVariants)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE order_inquiries
		SET product_id = $2, product_name = $3, customer = $4, quantity = $5,
			selected_variants = $6, total_price = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		q.ID, q.ProductID, q.ProductName, customer, q.Quantity,
		variants, decimalOrNil(q.TotalPrice), q.Status, q.Notes, q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update inquiry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, database.ErrInquiryNotFound
	}

	return s.GetInquiry(ctx, q.ID)
}

// UpdateInquiryStatus changes only the status (and optionally appends notes).
// Transitions are unconstrained: any status may move to any other.
func (s *Store) UpdateInquiryStatus(ctx context.Context, id string, update models.InquiryStatusUpdate) (*models.OrderInquiry, error) {
	query := `
		UPDATE order_inquiries
		SET status = $2,
			notes = CASE WHEN $3 <> '' THEN $3 ELSE notes END,
			updated_at = NOW()
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, update.Status, update.Notes)
	if err != nil {
		return nil, fmt.Errorf("update inquiry status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, database.ErrInquiryNotFound
	}
	return s.GetInquiry(ctx, id)
}

func (s *Store) DeleteInquiry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM order_inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return database.ErrInquiryNotFound
	}
	return nil
}

// BulkUpdateInquiryStatus moves every selected inquiry to one status in a
// single statement.
func (s *Store) BulkUpdateInquiryStatus(ctx context.Context, update models.InquiryBulkStatusUpdate) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE order_inquiries SET status = $2, updated_at = NOW() WHERE id = ANY($1)`,
		pq.Array(update.IDs), update.Status)
	if err != nil {
		return 0, fmt.Errorf("bulk update inquiry status: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) BulkDeleteInquiries(ctx context.Context, ids []string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM order_inquiries WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete inquiries: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) InquiryStats(ctx context.Context) (*models.InquiryStats, error) {
	stats := &models.InquiryStats{ByStatus: make(map[models.InquiryStatus]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM order_inquiries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("inquiry stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status models.InquiryStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("inquiry stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inquiry stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_inquiries WHERE created_at >= NOW() - INTERVAL '7 days'`).
		Scan(&stats.LastSevenDays)
	if err != nil {
		return nil, fmt.Errorf("inquiry stats: %w", err)
	}

	return stats, nil
}

// buildInquiryWhere translates an inquiry filter into a WHERE clause and its
// positional arguments. Name and phone match as substrings against the
// customer snapshot.
func buildInquiryWhere(f models.InquiryFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", arg(string(f.Status))))
	}
	if f.ProductID != "" {
		conds = append(conds, fmt.Sprintf("product_id = $%d", arg(f.ProductID)))
	}
	if f.Phone != "" {
		conds = append(conds, fmt.Sprintf("customer->>'phone' ILIKE $%d", arg("%"+f.Phone+"%")))
	}
	if f.Name != "" {
		conds = append(conds, fmt.Sprintf("customer->>'name' ILIKE $%d", arg("%"+f.Name+"%")))
	}
	if f.StartDate != nil {
		conds = append(conds, fmt.Sprintf("created_at >= $%d", arg(*f.StartDate)))
	}
	if f.EndDate != nil {
		conds = append(conds, fmt.Sprintf("created_at <= $%d", arg(*f.EndDate)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanInquiry(row rowScanner) (*models.OrderInquiry, error) {
	q := &models.OrderInquiry{}
	var customer, variants []byte
	var quantity sql.NullInt64
	var total sql.NullString

	err := row.Scan(&q.ID, &q.ProductID, &q.ProductName, &customer, &quantity,
		&variants, &total, &q.Status, &q.Notes, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(customer, &q.Customer); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(variants, &q.SelectedVariants); err != nil {
		return nil, err
	}
	if quantity.Valid {
		n := int(quantity.Int64)
		q.Quantity = &n
	}
	if total.Valid {
		d, err := decimal.NewFromString(total.String)
		if err != nil {
			return nil, fmt.Errorf("parse total price: %w", err)
		}
		q.TotalPrice = &d
	}
	return q, nil
}
