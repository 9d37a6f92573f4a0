package models

import "encoding/json"

// Response is the envelope every endpoint returns. Data is kept raw so
// callers can decode it into the type they expect for the request they made.
type Response struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Timestamp  string          `json:"timestamp"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Errors     []FieldError    `json:"errors,omitempty"`
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPagination derives the page metadata for an offset-paginated list.
// Pages past the end stay at their requested number with empty contents.
func NewPagination(page, limit, totalItems int) *Pagination {
	if limit < 1 {
		limit = 1
	}
	totalPages := (totalItems + limit - 1) / limit
	return &Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1 && totalItems > 0,
	}
}

// FieldError is one field-level validation failure. Field uses dotted paths
// for nested values, e.g. "offers.0.title".
type FieldError struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Value    interface{} `json:"value,omitempty"`
	Location string      `json:"location,omitempty"`
}
