package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Store is the Postgres persistence layer shared by all handlers.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

func New(db *sql.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// marshalJSONB encodes v for a jsonb column, mapping nil slices to the empty
// array so scans never see SQL NULL.
func marshalJSONB(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}

// marshalJSONBObject is marshalJSONB for map-shaped columns, where nil maps
// to the empty object instead.
func marshalJSONBObject(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	if string(data) == "null" {
		return []byte("{}"), nil
	}
	return data, nil
}

func unmarshalJSONB(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode jsonb: %w", err)
	}
	return nil
}
