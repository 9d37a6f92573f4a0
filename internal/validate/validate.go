// Package validate holds the field-level validation rules shared by the
// server handlers and the admin client, producing errors keyed by dotted
// field paths so they can be rendered next to the offending input.
package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

// Product checks a product draft before it is created or updated.
func Product(p *models.Product) []models.FieldError {
	var errs []models.FieldError

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "name is required", Location: "body"})
	}
	if p.Price.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, models.FieldError{
			Field:    "price",
			Message:  "price must be greater than zero",
			Value:    p.Price.String(),
			Location: "body",
		})
	}
	if p.DiscountPrice != nil {
		if p.DiscountPrice.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, models.FieldError{
				Field:    "discountPrice",
				Message:  "discount price must be greater than zero",
				Value:    p.DiscountPrice.String(),
				Location: "body",
			})
		} else if !p.DiscountPrice.LessThan(p.Price) {
			errs = append(errs, models.FieldError{
				Field:    "discountPrice",
				Message:  "discount price must be less than the regular price",
				Value:    p.DiscountPrice.String(),
				Location: "body",
			})
		}
	}

	for i, f := range p.DynamicFields {
		if strings.TrimSpace(f.Key) == "" {
			errs = append(errs, models.FieldError{
				Field:    fmt.Sprintf("dynamicFields.%d.key", i),
				Message:  "field key is required",
				Location: "body",
			})
		}
	}

	for i, g := range p.PredefinedFields {
		if strings.TrimSpace(g.Category) == "" {
			errs = append(errs, models.FieldError{
				Field:    fmt.Sprintf("predefinedFields.%d.category", i),
				Message:  "category is required",
				Location: "body",
			})
		}
		options := make(map[string]bool, len(g.Options))
		for _, o := range g.Options {
			options[o] = true
		}
		for j, sel := range g.Selected {
			if !options[sel] {
				errs = append(errs, models.FieldError{
					Field:    fmt.Sprintf("predefinedFields.%d.selected.%d", i, j),
					Message:  "selected option is not in the option list",
					Value:    sel,
					Location: "body",
				})
			}
		}
	}

	for i, o := range p.Offers {
		if strings.TrimSpace(o.Title) == "" {
			errs = append(errs, models.FieldError{
				Field:    fmt.Sprintf("offers.%d.title", i),
				Message:  "offer title is required",
				Location: "body",
			})
		}
		if o.DiscountPercent < 1 || o.DiscountPercent > 99 {
			errs = append(errs, models.FieldError{
				Field:    fmt.Sprintf("offers.%d.discountPercent", i),
				Message:  "discount percent must be between 1 and 99",
				Value:    o.DiscountPercent,
				Location: "body",
			})
		}
	}

	for i, h := range p.HiddenFields {
		if strings.TrimSpace(h.Key) == "" {
			errs = append(errs, models.FieldError{
				Field:    fmt.Sprintf("hiddenFields.%d.key", i),
				Message:  "field key is required",
				Location: "body",
			})
		}
	}

	return errs
}

// Inquiry checks an inquiry submission from the storefront.
func Inquiry(q *models.OrderInquiry) []models.FieldError {
	var errs []models.FieldError

	if q.ProductID == "" {
		errs = append(errs, models.FieldError{Field: "productId", Message: "product is required", Location: "body"})
	}
	if strings.TrimSpace(q.Customer.Name) == "" {
		errs = append(errs, models.FieldError{Field: "customerData.name", Message: "name is required", Location: "body"})
	}
	if strings.TrimSpace(q.Customer.Phone) == "" {
		errs = append(errs, models.FieldError{Field: "customerData.phone", Message: "phone is required", Location: "body"})
	}
	if q.Quantity != nil && *q.Quantity < 1 {
		errs = append(errs, models.FieldError{
			Field:    "quantity",
			Message:  "quantity must be at least 1",
			Value:    *q.Quantity,
			Location: "body",
		})
	}
	if q.Status != "" && !q.Status.Valid() {
		errs = append(errs, models.FieldError{
			Field:    "status",
			Message:  "unknown status",
			Value:    string(q.Status),
			Location: "body",
		})
	}

	return errs
}

// Login checks credential shape before the password is even looked at.
func Login(req *models.LoginRequest) []models.FieldError {
	var errs []models.FieldError
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, models.FieldError{Field: "email", Message: "a valid email is required", Location: "body"})
	}
	if req.Password == "" {
		errs = append(errs, models.FieldError{Field: "password", Message: "password is required", Location: "body"})
	}
	return errs
}

// Register checks a registration request.
func Register(req *models.RegisterRequest) []models.FieldError {
	var errs []models.FieldError
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, models.FieldError{Field: "email", Message: "a valid email is required", Location: "body"})
	}
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, models.FieldError{Field: "username", Message: "username is required", Location: "body"})
	}
	if len(req.Password) < 8 {
		errs = append(errs, models.FieldError{Field: "password", Message: "password must be at least 8 characters", Location: "body"})
	}
	return errs
}
