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

const productColumns = `id, name, price, discount_price, description, images,
	dynamic_fields, predefined_fields, offers, hidden_fields, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	images, err := marshalJSONB(p.Images)
	if err != nil {
		return nil, err
	}
	dynamic, err := marshalJSONB(p.DynamicFields)
	if err != nil {
		return nil, err
	}
	predefined, err := marshalJSONB(p.PredefinedFields)
	if err != nil {
		return nil, err
	}
	offers, err := marshalJSONB(p.Offers)
	if err != nil {
		return nil, err
	}
	hidden, err := marshalJSONB(p.HiddenFields)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO products (id, name, price, discount_price, description, images,
			dynamic_fields, predefined_fields, offers, hidden_fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Price, decimalOrNil(p.DiscountPrice), p.Description,
		images, dynamic, predefined, offers, hidden, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	where, args := buildProductWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM products` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.UpdatedAt = time.Now().UTC()

	images, err := marshalJSONB(p.Images)
	if err != nil {
		return nil, err
	}
	dynamic, err := marshalJSONB(p.DynamicFields)
	if err != nil {
		return nil, err
	}
	predefined, err := marshalJSONB(p.PredefinedFields)
	if err != nil {
		return nil, err
	}
	offers, err := marshalJSONB(p.Offers)
	if err != nil {
		return nil, err
	}
	hidden, err := marshalJSONB(p.HiddenFields)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET name = $2, price = $3, discount_price = $4, description = $5, images = $6,
			dynamic_fields = $7, predefined_fields = $8, offers = $9, hidden_fields = $10,
			updated_at = $11
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Price, decimalOrNil(p.DiscountPrice), p.Description,
		images, dynamic, predefined, offers, hidden, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, database.ErrProductNotFound
	}

	return s.GetProduct(ctx, p.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return database.ErrProductNotFound
	}
	return nil
}

// BulkUpdateProducts applies one patch across a selection in a single
// statement per affected column group. Returns how many rows changed.
func (s *Store) BulkUpdateProducts(ctx context.Context, update models.ProductBulkUpdate) (int, error) {
	var affected int64

	if update.ClearDiscount {
		res, err := s.db.ExecContext(ctx,
			`UPDATE products SET discount_price = NULL, updated_at = NOW() WHERE id = ANY($1)`,
			pq.Array(update.IDs))
		if err != nil {
			return 0, fmt.Errorf("bulk clear discount: %w", err)
		}
		affected, _ = res.RowsAffected()
	}

	if update.DiscountPercent != nil {
		factor := decimal.NewFromInt(int64(100 - *update.DiscountPercent)).Div(decimal.NewFromInt(100))
		res, err := s.db.ExecContext(ctx,
			`UPDATE products SET discount_price = ROUND(price * $2, 2), updated_at = NOW() WHERE id = ANY($1)`,
			pq.Array(update.IDs), factor)
		if err != nil {
			return 0, fmt.Errorf("bulk apply discount: %w", err)
		}
		affected, _ = res.RowsAffected()
	}

	if update.OffersActive != nil {
		// Flip the active flag on every offer of every selected product.
		res, err := s.db.ExecContext(ctx, `
			UPDATE products
			SET offers = (
				SELECT COALESCE(jsonb_agg(o || jsonb_build_object('active', $2::bool)), '[]'::jsonb)
				FROM jsonb_array_elements(offers) o
			), updated_at = NOW()
			WHERE id = ANY($1)`,
			pq.Array(update.IDs), *update.OffersActive)
		if err != nil {
			return 0, fmt.Errorf("bulk toggle offers: %w", err)
		}
		affected, _ = res.RowsAffected()
	}

	return int(affected), nil
}

func (s *Store) ProductStats(ctx context.Context) (*models.ProductStats, error) {
	stats := &models.ProductStats{}
	var avg sql.NullString

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE discount_price IS NOT NULL AND discount_price < price),
			COUNT(*) FILTER (WHERE jsonb_array_length(offers) > 0),
			AVG(price)
		FROM products`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalProducts, &stats.OnSale, &stats.WithOffers, &avg)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	if avg.Valid {
		d, err := decimal.NewFromString(avg.String)
		if err != nil {
			return nil, fmt.Errorf("product stats: parse average: %w", err)
		}
		stats.AveragePrice = d.Round(2)
	}
	return stats, nil
}

// buildProductWhere translates a product filter into a WHERE clause and its
// positional arguments.
func buildProductWhere(f models.ProductFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	if f.Category != "" {
		conds = append(conds, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM jsonb_array_elements(predefined_fields) g
				WHERE g->>'category' = $%d AND (g->>'active')::bool)`, arg(f.Category)))
	}
	if f.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= $%d", arg(*f.MinPrice)))
	}
	if f.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= $%d", arg(*f.MaxPrice)))
	}
	if f.OnSale != nil {
		if *f.OnSale {
			conds = append(conds, "discount_price IS NOT NULL AND discount_price < price")
		} else {
			conds = append(conds, "(discount_price IS NULL OR discount_price >= price)")
		}
	}
	if f.HasOffers != nil {
		if *f.HasOffers {
			conds = append(conds, "jsonb_array_length(offers) > 0")
		} else {
			conds = append(conds, "jsonb_array_length(offers) = 0")
		}
	}
	if f.Query != "" {
		n := arg("%" + f.Query + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var discount sql.NullString
	var images, dynamic, predefined, offers, hidden []byte

	err := row.Scan(&p.ID, &p.Name, &p.Price, &discount, &p.Description,
		&images, &dynamic, &predefined, &offers, &hidden, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if discount.Valid {
		d, err := decimal.NewFromString(discount.String)
		if err != nil {
			return nil, fmt.Errorf("parse discount price: %w", err)
		}
		p.DiscountPrice = &d
	}
	if err := unmarshalJSONB(images, &p.Images); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(dynamic, &p.DynamicFields); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(predefined, &p.PredefinedFields); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(offers, &p.Offers); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(hidden, &p.HiddenFields); err != nil {
		return nil, err
	}
	return p, nil
}
