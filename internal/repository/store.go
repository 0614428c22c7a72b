package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/estimation-engine/internal/service"
)

// Store is the postgres implementation of the service persistence port.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ service.Store = (*Store)(nil)

// Atomically runs fn inside one database transaction. The Store handed to fn
// is bound to that transaction, so row locks taken via
// CurrentVersionForUpdate hold until commit.
func (s *Store) Atomically(ctx context.Context, fn func(service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func wrapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	return err
}

func marshalJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(raw), nil
}

func unmarshalJSON(raw string, dest interface{}) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	return nil
}
