package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type InquiryStatus string

const (
	InquiryPending   InquiryStatus = "pending"
	InquiryContacted InquiryStatus = "contacted"
	InquiryConverted InquiryStatus = "converted"
	InquiryCancelled InquiryStatus = "cancelled"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryPending, InquiryContacted, InquiryConverted, InquiryCancelled:
		return true
	}
	return false
}

// ExtraField is one customer-supplied answer to an admin-defined dynamic
// field. Extras keep their submission order.
type ExtraField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CustomerData is the contact snapshot captured with an inquiry. Name, phone
// and reference are always present; Extra holds the dynamic-field answers as
// an ordered list of key/value pairs.
type CustomerData struct {
	Name      string
	Phone     string
	Reference string
	Extra     []ExtraField
}

// MarshalJSON flattens CustomerData into a single JSON object, the shape the
// inquiry endpoints exchange: required keys first, then extras in order.
func (c CustomerData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writePair := func(k, v string, first bool) error {
		if !first {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}
	if err := writePair("name", c.Name, true); err != nil {
		return nil, err
	}
	if err := writePair("phone", c.Phone, false); err != nil {
		return nil, err
	}
	if err := writePair("reference", c.Reference, false); err != nil {
		return nil, err
	}
	for _, f := range c.Extra {
		if f.Key == "name" || f.Key == "phone" || f.Key == "reference" {
			continue
		}
		if err := writePair(f.Key, f.Value, false); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON walks the object token by token so extras keep the order they
// arrived in.
func (c *CustomerData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("customer data: expected object, got %v", tok)
	}
	*c = CustomerData{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("customer data: non-string key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("customer data: field %q: %w", key, err)
		}
		switch key {
		case "name":
			c.Name = value
		case "phone":
			c.Phone = value
		case "reference":
			c.Reference = value
		default:
			c.Extra = append(c.Extra, ExtraField{Key: key, Value: value})
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

// Get returns the value for key, looking at the fixed fields first and the
// extras second.
func (c CustomerData) Get(key string) (string, bool) {
	switch key {
	case "name":
		return c.Name, true
	case "phone":
		return c.Phone, true
	case "reference":
		return c.Reference, true
	}
	for _, f := range c.Extra {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

type OrderInquiry struct {
	ID               string            `json:"id"`
	ProductID        string            `json:"productId"`
	ProductName      string            `json:"productName"`
	Customer         CustomerData      `json:"customerData"`
	Quantity         *int              `json:"quantity,omitempty"`
	SelectedVariants map[string]string `json:"selectedVariants,omitempty"`
	TotalPrice       *decimal.Decimal  `json:"totalPrice,omitempty"`
	Status           InquiryStatus     `json:"status"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// InquiryStatusUpdate is the body of the single-inquiry status patch.
type InquiryStatusUpdate struct {
	Status InquiryStatus `json:"status"`
	Notes  string        `json:"notes,omitempty"`
}

// InquiryBulkStatusUpdate moves a whole selection to one status in a single
// call.
type InquiryBulkStatusUpdate struct {
	IDs    []string      `json:"ids"`
	Status InquiryStatus `json:"status"`
}

type InquiryBulkDelete struct {
	IDs []string `json:"ids"`
}
