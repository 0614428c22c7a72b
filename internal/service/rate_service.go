package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

// RateService manages the BU-wide default rate card. Rates here back every
// team member that has no explicit rate of its own.
type RateService struct {
	store Store
}

func NewRateService(store Store) *RateService {
	return &RateService{store: store}
}

func (s *RateService) List(ctx context.Context) ([]model.RoleDefaultRate, error) {
	return s.store.ListRoleRates(ctx)
}

type RoleRateInput struct {
	Role              string
	CostRatePerDay    decimal.Decimal
	BillingRatePerDay decimal.Decimal
}

// Upsert creates or replaces the default rate for a role. Role identity is
// case-insensitive; the store enforces the uniqueness.
func (s *RateService) Upsert(
	ctx context.Context,
	actor model.Principal,
	input RoleRateInput,
) (*model.RoleDefaultRate, error) {
	role := model.NewRole(input.Role)
	if role.IsZero() {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	if input.CostRatePerDay.IsNegative() || input.BillingRatePerDay.IsNegative() {
		return nil, fmt.Errorf("%w: rates must not be negative", ErrInvalidInput)
	}

	rate := &model.RoleDefaultRate{
		ID:                uuid.New(),
		Role:              role.Display(),
		CostRatePerDay:    input.CostRatePerDay,
		BillingRatePerDay: input.BillingRatePerDay,
	}
	err := s.store.Atomically(ctx, func(tx Store) error {
		if err := tx.UpsertRoleRate(ctx, rate); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditLog{
			ID:         uuid.New(),
			UserID:     actor.UserID,
			Action:     "upsert_role_rate",
			EntityType: "role_default_rate",
			EntityID:   &rate.ID,
			NewValue: strPtr(fmt.Sprintf("%s: cost %s / billing %s",
				rate.Role, rate.CostRatePerDay, rate.BillingRatePerDay)),
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *RateService) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	return s.store.Atomically(ctx, func(tx Store) error {
		rates, err := tx.ListRoleRates(ctx)
		if err != nil {
			return err
		}
		var name string
		for _, r := range rates {
			if r.ID == id {
				name = r.Role
				break
			}
		}
		if strings.TrimSpace(name) == "" {
			return ErrNotFound
		}
		if err := tx.DeleteRoleRate(ctx, id); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditLog{
			ID:         uuid.New(),
			UserID:     actor.UserID,
			Action:     "delete_role_rate",
			EntityType: "role_default_rate",
			EntityID:   &id,
			OldValue:   strPtr(name),
			CreatedAt:  time.Now().UTC(),
		})
	})
}
