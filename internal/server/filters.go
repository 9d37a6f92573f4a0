package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

func parseProductFilter(r *http.Request) models.ProductFilter {
	q := r.URL.Query()
	f := models.ProductFilter{
		Page:     parseIntParam(q.Get("page"), 1),
		Limit:    parseIntParam(q.Get("limit"), 10),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}
	if v := q.Get("minPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			f.MinPrice = &d
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			f.MaxPrice = &d
		}
	}
	if v := q.Get("onSale"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.OnSale = &b
		}
	}
	if v := q.Get("hasOffers"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.HasOffers = &b
		}
	}
	return f
}

func parseInquiryFilter(r *http.Request) models.InquiryFilter {
	q := r.URL.Query()
	f := models.InquiryFilter{
		Page:      parseIntParam(q.Get("page"), 1),
		Limit:     parseIntParam(q.Get("limit"), 10),
		Status:    models.InquiryStatus(q.Get("status")),
		ProductID: q.Get("productId"),
		Phone:     q.Get("phone"),
		Name:      q.Get("name"),
	}
	if v := q.Get("startDate"); v != "" {
		if t, err := parseDateParam(v); err == nil {
			f.StartDate = &t
		}
	}
	if v := q.Get("endDate"); v != "" {
		if t, err := parseDateParam(v); err == nil {
			f.EndDate = &t
		}
	}
	return f
}

func parseIntParam(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseDateParam accepts RFC 3339 timestamps and plain dates.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
