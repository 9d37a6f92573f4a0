package client

import (
	"context"
	"net/http"

	"github.com/creeeasy/online-store-sub000/internal/validate"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

const (
	inquiryListPrefix = "inquiries:list:"
	inquiryItemPrefix = "inquiries:item:"
	inquiryStatsKey   = "inquiries:stats"
)

// InquiryPage is one cached page of the inquiry list.
type InquiryPage struct {
	Items      []models.OrderInquiry
	Pagination *models.Pagination
}

type Inquiries struct {
	client *Client
	cache  *Cache
	notify Notifier
}

func NewInquiries(client *Client, cache *Cache, notify Notifier) *Inquiries {
	return &Inquiries{client: client, cache: cache, notify: notify}
}

func (s *Inquiries) List(ctx context.Context, filter models.InquiryFilter) (*InquiryPage, error) {
	key := inquiryListPrefix + filter.Values().Encode()
	data, err := s.cache.Get(ctx, key, InquiryListPolicy, func(ctx context.Context) (interface{}, error) {
		var items []models.OrderInquiry
		envelope, err := s.client.do(ctx, http.MethodGet, "/order-inquiries", filter.Values(), nil, &items)
		if err != nil {
			return nil, err
		}
		return &InquiryPage{Items: items, Pagination: envelope.Pagination}, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*InquiryPage), nil
}

func (s *Inquiries) Get(ctx context.Context, id string) (*models.OrderInquiry, error) {
	key := inquiryItemPrefix + id
	data, err := s.cache.Get(ctx, key, InquiryListPolicy, func(ctx context.Context) (interface{}, error) {
		var inquiry models.OrderInquiry
		if _, err := s.client.do(ctx, http.MethodGet, "/order-inquiries/"+id, nil, nil, &inquiry); err != nil {
			return nil, err
		}
		return &inquiry, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.OrderInquiry), nil
}

func (s *Inquiries) Stats(ctx context.Context) (*models.InquiryStats, error) {
	data, err := s.cache.Get(ctx, inquiryStatsKey, InquiryStatsPolicy, func(ctx context.Context) (interface{}, error) {
		var stats models.InquiryStats
		if _, err := s.client.do(ctx, http.MethodGet, "/order-inquiries/stats", nil, nil, &stats); err != nil {
			return nil, err
		}
		return &stats, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.InquiryStats), nil
}

// Create is the storefront submission; it validates locally before any
// network traffic.
func (s *Inquiries) Create(ctx context.Context, inquiry *models.OrderInquiry) (*models.OrderInquiry, error) {
	if errs := validate.Inquiry(inquiry); len(errs) > 0 {
		return nil, &APIError{Kind: KindValidation, Message: "validation failed", Fields: errs}
	}

	var created models.OrderInquiry
	if _, err := s.client.do(ctx, http.MethodPost, "/order-inquiries/create", nil, inquiry, &created); err != nil {
		notifyError(s.notify, err)
		return nil, err
	}

	s.cache.InvalidatePrefix(inquiryListPrefix)
	s.cache.Invalidate(inquiryStatsKey)
	s.notify.Success("Inquiry submitted")
	return &created, nil
}

func (s *Inquiries) Update(ctx context.Context, inquiry *models.OrderInquiry) (*models.OrderInquiry, error) {
	if errs := validate.Inquiry(inquiry); len(errs) > 0 {
		return nil, &APIError{Kind: KindValidation, Message: "validation failed", Fields: errs}
	}

	var updated models.OrderInquiry
	if _, err := s.client.do(ctx, http.MethodPut, "/order-inquiries/"+inquiry.ID, nil, inquiry, &updated); err != nil {
		notifyError(s.notify, err)
		return nil, err
	}

	s.invalidateInquiries(inquiry.ID)
	s.notify.Success("Inquiry updated")
	return &updated, nil
}

func (s *Inquiries) UpdateStatus(ctx context.Context, id string, update models.InquiryStatusUpdate) (*models.OrderInquiry, error) {
	var updated models.OrderInquiry
	if _, err := s.client.do(ctx, http.MethodPatch, "/order-inquiries/"+id+"/status", nil, update, &updated); err != nil {
		notifyError(s.notify, err)
		return nil, err
	}

	s.invalidateInquiries(id)
	s.notify.Success("Inquiry status updated")
	return &updated, nil
}

func (s *Inquiries) Delete(ctx context.Context, id string) error {
	if _, err := s.client.do(ctx, http.MethodDelete, "/order-inquiries/"+id, nil, nil, nil); err != nil {
		notifyError(s.notify, err)
		return err
	}

	s.invalidateInquiries(id)
	s.notify.Success("Inquiry deleted")
	return nil
}

// BulkUpdateStatus moves the whole selection with exactly one PATCH; the
// list, the stats aggregate, and every selected item entry are invalidated
// afterwards.
func (s *Inquiries) BulkUpdateStatus(ctx context.Context, update models.InquiryBulkStatusUpdate) (int, error) {
	var result struct {
		Affected int `json:"affected"`
	}
	if _, err := s.client.do(ctx, http.MethodPatch, "/order-inquiries/bulk/status", nil, update, &result); err != nil {
		notifyError(s.notify, err)
		return 0, err
	}

	s.invalidateInquiries(update.IDs...)
	s.notify.Success("Inquiries updated")
	return result.Affected, nil
}

// BulkDelete removes the whole selection with exactly one call.
func (s *Inquiries) BulkDelete(ctx context.Context, ids []string) (int, error) {
	var result struct {
		Affected int `json:"affected"`
	}
	if _, err := s.client.do(ctx, http.MethodDelete, "/order-inquiries/bulk/delete", nil,
		models.InquiryBulkDelete{IDs: ids}, &result); err != nil {
		notifyError(s.notify, err)
		return 0, err
	}

	s.invalidateInquiries(ids...)
	s.notify.Success("Inquiries deleted")
	return result.Affected, nil
}

func (s *Inquiries) invalidateInquiries(ids ...string) {
	s.cache.InvalidatePrefix(inquiryListPrefix)
	s.cache.Invalidate(inquiryStatsKey)
	for _, id := range ids {
		s.cache.Invalidate(inquiryItemPrefix + id)
	}
}
