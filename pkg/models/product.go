package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Description   string           `json:"description,omitempty"`
	Images        []string         `json:"images"`

	DynamicFields    []DynamicField         `json:"dynamicFields,omitempty"`
	PredefinedFields []PredefinedFieldGroup `json:"predefinedFields,omitempty"`
	Offers           []Offer                `json:"offers,omitempty"`
	HiddenFields     []HiddenField          `json:"hiddenFields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DynamicField is an admin-defined extra input shown on the inquiry form.
type DynamicField struct {
	Key         string `json:"key"`
	Placeholder string `json:"placeholder"`
}

// PredefinedFieldGroup is a fixed category with an admin-chosen subset of
// options, shown to customers as selectable variants when active.
type PredefinedFieldGroup struct {
	Category string   `json:"category"`
	Options  []string `json:"options"`
	Selected []string `json:"selected"`
	Active   bool     `json:"active"`
}

type Offer struct {
	Title           string     `json:"title"`
	DiscountPercent int        `json:"discountPercent"`
	Active          bool       `json:"active"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

// HiddenField is carried through to inquiry records for tracking and is
// never shown to customers.
type HiddenField struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// OnSale reports whether the product currently has a discount price below
// the regular price.
func (p *Product) OnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// DisplayPrice returns the price a customer should see: the discount price
// when it is set and lower than the regular price, the regular price otherwise.
func (p *Product) DisplayPrice() decimal.Decimal {
	if p.OnSale() {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductBulkUpdate applies one change across a set of products.
type ProductBulkUpdate struct {
	IDs             []string `json:"ids"`
	OffersActive    *bool    `json:"offersActive,omitempty"`
	DiscountPercent *int     `json:"discountPercent,omitempty"`
	ClearDiscount   bool     `json:"clearDiscount,omitempty"`
}
