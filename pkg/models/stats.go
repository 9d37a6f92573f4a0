package models

import "github.com/shopspring/decimal"

// ProductStats is the catalog overview aggregate shown on the admin
// dashboard.
type ProductStats struct {
	TotalProducts int             `json:"totalProducts"`
	OnSale        int             `json:"onSale"`
	WithOffers    int             `json:"withOffers"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
}

// InquiryStats aggregates inquiries by status plus recent volume.
type InquiryStats struct {
	Total         int                   `json:"total"`
	ByStatus      map[InquiryStatus]int `json:"byStatus"`
	LastSevenDays int                   `json:"lastSevenDays"`
}
