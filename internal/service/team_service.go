package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

type TeamService struct {
	store Store
}

func NewTeamService(store Store) *TeamService {
	return &TeamService{store: store}
}

func (s *TeamService) List(ctx context.Context, projectID uuid.UUID) ([]model.TeamMember, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.store.ListTeamMembers(ctx, version.ID)
}

type TeamMemberInput struct {
	Role                string
	MemberName          *string
	CostRatePerDay      *decimal.Decimal
	BillingRatePerDay   *decimal.Decimal
	MonthlyCostRate     *decimal.Decimal
	UtilizationPct      decimal.Decimal
	WorkingDaysPerMonth int
	HoursPerDay         int
}

func (s *TeamService) Add(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	input TeamMemberInput,
) (*model.TeamMember, error) {
	if strings.TrimSpace(input.Role) == "" {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}

	member := &model.TeamMember{
		ID:                  uuid.New(),
		Role:                strings.TrimSpace(input.Role),
		MemberName:          input.MemberName,
		CostRatePerDay:      input.CostRatePerDay,
		BillingRatePerDay:   input.BillingRatePerDay,
		MonthlyCostRate:     input.MonthlyCostRate,
		UtilizationPct:      input.UtilizationPct,
		WorkingDaysPerMonth: defaultInt(input.WorkingDaysPerMonth, 20),
		HoursPerDay:         defaultInt(input.HoursPerDay, 8),
	}
	if err := engine.ValidateTeamMember(*member); err != nil {
		return nil, err
	}

	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		member.VersionID = v.ID
		if err := tx.InsertTeamMember(ctx, member); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, "add_team_member", "team_member", &member.ID, nil, strPtr(member.Role)))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *TeamService) Update(
	ctx context.Context,
	actor model.Principal,
	projectID, memberID uuid.UUID,
	input TeamMemberInput,
) (*model.TeamMember, error) {
	var updated *model.TeamMember
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		member, err := tx.GetTeamMember(ctx, memberID)
		if err != nil {
			return err
		}
		if member.VersionID != v.ID {
			return ErrNotFound
		}
		if strings.TrimSpace(input.Role) != "" {
			member.Role = strings.TrimSpace(input.Role)
		}
		if input.MemberName != nil {
			member.MemberName = input.MemberName
		}
		if input.CostRatePerDay != nil {
			member.CostRatePerDay = input.CostRatePerDay
		}
		if input.BillingRatePerDay != nil {
			member.BillingRatePerDay = input.BillingRatePerDay
		}
		if input.MonthlyCostRate != nil {
			member.MonthlyCostRate = input.MonthlyCostRate
		}
		if !input.UtilizationPct.IsZero() {
			member.UtilizationPct = input.UtilizationPct
		}
		if input.WorkingDaysPerMonth > 0 {
			member.WorkingDaysPerMonth = input.WorkingDaysPerMonth
		}
		if input.HoursPerDay > 0 {
			member.HoursPerDay = input.HoursPerDay
		}
		if err := engine.ValidateTeamMember(*member); err != nil {
			return err
		}
		if err := tx.UpdateTeamMember(ctx, member); err != nil {
			return err
		}
		updated = member
		return audit(ctx, tx, actor, projectID, v.ID, "update_team_member", "team_member", &member.ID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TeamService) Delete(
	ctx context.Context,
	actor model.Principal,
	projectID, memberID uuid.UUID,
) error {
	return editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		member, err := tx.GetTeamMember(ctx, memberID)
		if err != nil {
			return err
		}
		if member.VersionID != v.ID {
			return ErrNotFound
		}
		if err := tx.DeleteTeamMember(ctx, memberID); err != nil {
			return err
		}
		return audit(ctx, tx, actor, projectID, v.ID, "delete_team_member", "team_member", &memberID)
	})
}

func defaultInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func auditEntry(
	actor model.Principal,
	projectID, versionID uuid.UUID,
	action, entityType string,
	entityID *uuid.UUID,
	oldValue, newValue *string,
) *model.AuditLog {
	return &model.AuditLog{
		ID:         uuid.New(),
		ProjectID:  &projectID,
		VersionID:  &versionID,
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  time.Now().UTC(),
	}
}
