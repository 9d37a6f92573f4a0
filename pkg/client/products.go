package client

import (
	"context"
	"net/http"

	"github.com/creeeasy/online-store-sub000/internal/validate"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

const (
	productListPrefix = "products:list:"
	productItemPrefix = "products:item:"
	productStatsKey   = "products:stats"
)

// ProductPage is one cached page of the catalog.
type ProductPage struct {
	Items      []models.Product
	Pagination *models.Pagination
}

// Products is the catalog service: cache-aware reads, invalidating
// mutations.
type Products struct {
	client *Client
	cache  *Cache
	notify Notifier
}

func NewProducts(client *Client, cache *Cache, notify Notifier) *Products {
	return &Products{client: client, cache: cache, notify: notify}
}

func (s *Products) List(ctx context.Context, filter models.ProductFilter) (*ProductPage, error) {
	key := productListPrefix + filter.Values().Encode()
	data, err := s.cache.Get(ctx, key, ProductListPolicy, func(ctx context.Context) (interface{}, error) {
		var items []models.Product
		envelope, err := s.client.do(ctx, http.MethodGet, "/products", filter.Values(), nil, &items)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Items: items, Pagination: envelope.Pagination}, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*ProductPage), nil
}

func (s *Products) Get(ctx context.Context, id string) (*models.Product, error) {
	key := productItemPrefix + id
	data, err := s.cache.Get(ctx, key, ProductListPolicy, func(ctx context.Context) (interface{}, error) {
		var product models.Product
		if _, err := s.client.do(ctx, http.MethodGet, "/products/"+id, nil, nil, &product); err != nil {
			return nil, err
		}
		return &product, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.Product), nil
}

func (s *Products) Stats(ctx context.Context) (*models.ProductStats, error) {
	data, err := s.cache.Get(ctx, productStatsKey, ProductStatsPolicy, func(ctx context.Context) (interface{}, error) {
		var stats models.ProductStats
		if _, err := s.client.do(ctx, http.MethodGet, "/products/stats/overview", nil, nil, &stats); err != nil {
			return nil, err
		}
		return &stats, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.ProductStats), nil
}

// Create validates the draft locally first: a bad price never reaches the
// network.
func (s *Products) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if errs := validate.Product(product); len(errs) > 0 {
		return nil, &APIError{Kind: KindValidation, Message: "validation failed", Fields: errs}
	}

	var created models.Product
	if _, err := s.client.do(ctx, http.MethodPost, "/products", nil, product, &created); err != nil {
		notifyError(s.notify, err)
		return nil, err
	}

	s.invalidateProduct(created.ID)
	s.notify.Success("Product created")
	return &created, nil
}

func (s *Products) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if errs := validate.Product(product); len(errs) > 0 {
		return nil, &APIError{Kind: KindValidation, Message: "validation failed", Fields: errs}
	}

	var updated models.Product
	if _, err := s.client.do(ctx, http.MethodPut, "/products/"+product.ID, nil, product, &updated); err != nil {
		notifyError(s.notify, err)
		return nil, err
	}

	s.invalidateProduct(product.ID)
	s.notify.Success("Product updated")
	return &updated, nil
}

func (s *Products) Delete(ctx context.Context, id string) error {
	if _, err := s.client.do(ctx, http.MethodDelete, "/products/"+id, nil, nil, nil); err != nil {
		notifyError(s.notify, err)
		return err
	}

	s.invalidateProduct(id)
	s.notify.Success("Product deleted")
	return nil
}

// BulkUpdate patches a whole selection in one call.
func (s *Products) BulkUpdate(ctx context.Context, update models.ProductBulkUpdate) (int, error) {
	var result struct {
		Affected int `json:"affected"`
	}
	if _, err := s.client.do(ctx, http.MethodPatch, "/products/bulk", nil, update, &result); err != nil {
		notifyError(s.notify, err)
		return 0, err
	}

	s.cache.InvalidatePrefix(productListPrefix)
	s.cache.Invalidate(productStatsKey)
	for _, id := range update.IDs {
		s.cache.Invalidate(productItemPrefix + id)
	}
	s.notify.Success("Products updated")
	return result.Affected, nil
}

func (s *Products) invalidateProduct(id string) {
	s.cache.InvalidatePrefix(productListPrefix)
	s.cache.Invalidate(productStatsKey)
	if id != "" {
		s.cache.Invalidate(productItemPrefix + id)
	}
}
