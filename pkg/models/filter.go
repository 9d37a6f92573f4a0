package models

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ProductFilter are the query parameters accepted by the product list
// endpoint. Zero values are omitted from the encoded query.
type ProductFilter struct {
	Page      int
	Limit     int
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	OnSale    *bool
	HasOffers *bool
	Query     string
}

func (f ProductFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		v.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", f.MaxPrice.String())
	}
	if f.OnSale != nil {
		v.Set("onSale", strconv.FormatBool(*f.OnSale))
	}
	if f.HasOffers != nil {
		v.Set("hasOffers", strconv.FormatBool(*f.HasOffers))
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	return v
}

// InquiryFilter are the query parameters accepted by the inquiry list
// endpoint.
type InquiryFilter struct {
	Page      int
	Limit     int
	Status    InquiryStatus
	ProductID string
	Phone     string
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

func (f InquiryFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.ProductID != "" {
		v.Set("productId", f.ProductID)
	}
	if f.Phone != "" {
		v.Set("phone", f.Phone)
	}
	if f.Name != "" {
		v.Set("name", f.Name)
	}
	if f.StartDate != nil {
		v.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		v.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	return v
}
