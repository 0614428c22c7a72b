package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

// SprintPlanService serves the role-by-sprint allocation grid. Reads always
// return a normalized grid, generating one from team capacity when the
// version has none yet; legacy per-week rows are migrated on the fly.
type SprintPlanService struct {
	store Store
	cfg   engine.Defaults
}

func NewSprintPlanService(store Store, cfg engine.Defaults) *SprintPlanService {
	return &SprintPlanService{store: store, cfg: cfg}
}

func (s *SprintPlanService) Get(ctx context.Context, projectID uuid.UUID) ([]model.SprintPlanRow, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListTeamMembers(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	roles := model.DistinctRoles(members)
	roleFTE := engine.ProjectRoleFTE(members)

	rows, err := s.store.ListSprintPlanRows(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return s.seedPlan(ctx, version, members, roles, roleFTE)
	}
	return engine.NormalizePlan(rows, engine.PlanRoles(rows, roles), roleFTE)
}

// seedPlan builds a fresh grid sized to the sprint count the current feature
// effort requires. Without enough data for a sprint count it falls back to a
// single sprint.
func (s *SprintPlanService) seedPlan(
	ctx context.Context,
	version *model.ProjectVersion,
	members []model.TeamMember,
	roles []model.Role,
	roleFTE map[string]decimal.Decimal,
) ([]model.SprintPlanRow, error) {
	features, err := s.store.ListFeatures(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	calc := s.calculator(ctx)
	sprints := 1
	if summary, err := calc.SprintAllocationSummary(
		members, features, version.ContingencyPct,
		version.SprintDurationWeeks, version.WorkingDaysPerMonth,
	); err == nil {
		sprints = summary.SprintsRequired
	}
	return engine.BuildPlan(sprints, roles, roleFTE), nil
}

func (s *SprintPlanService) calculator(ctx context.Context) *engine.Calculator {
	rates, err := s.store.ListRoleRates(ctx)
	if err != nil {
		rates = nil
	}
	return engine.New(s.cfg, engine.NewRateBook(rates))
}

// Put replaces the whole grid. The incoming rows are normalized first, so a
// write can never persist a denormalized or negative plan.
func (s *SprintPlanService) Put(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	rows []model.SprintPlanRow,
) ([]model.SprintPlanRow, error) {
	var saved []model.SprintPlanRow
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		members, err := tx.ListTeamMembers(ctx, v.ID)
		if err != nil {
			return err
		}
		roles := model.DistinctRoles(members)
		normalized, err := engine.NormalizePlan(rows, engine.PlanRoles(rows, roles), engine.ProjectRoleFTE(members))
		if err != nil {
			return err
		}
		for i := range normalized {
			if normalized[i].ID == uuid.Nil {
				normalized[i].ID = uuid.New()
			}
			normalized[i].VersionID = v.ID
		}
		if err := tx.ReplaceSprintPlan(ctx, v.ID, normalized); err != nil {
			return err
		}
		saved = normalized
		return audit(ctx, tx, actor, projectID, v.ID, "update_sprint_plan", "sprint_plan", nil)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// AddRole re-keys every row with the role at zero allocation.
func (s *SprintPlanService) AddRole(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	roleName string,
) ([]model.SprintPlanRow, error) {
	role := model.NewRole(roleName)
	if role.IsZero() {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	return s.rekeyPlan(ctx, actor, projectID, "add_plan_role", role,
		func(rows []model.SprintPlanRow, existing []model.Role) []model.SprintPlanRow {
			return engine.AddPlanRole(rows, role, existing)
		})
}

// RemoveRole drops the role's column from every row.
func (s *SprintPlanService) RemoveRole(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	roleName string,
) ([]model.SprintPlanRow, error) {
	role := model.NewRole(roleName)
	if role.IsZero() {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	return s.rekeyPlan(ctx, actor, projectID, "remove_plan_role", role,
		func(rows []model.SprintPlanRow, existing []model.Role) []model.SprintPlanRow {
			return engine.RemovePlanRole(rows, role, existing)
		})
}

func (s *SprintPlanService) rekeyPlan(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	action string,
	role model.Role,
	apply func(rows []model.SprintPlanRow, existing []model.Role) []model.SprintPlanRow,
) ([]model.SprintPlanRow, error) {
	var saved []model.SprintPlanRow
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		rows, err := tx.ListSprintPlanRows(ctx, v.ID)
		if err != nil {
			return err
		}
		members, err := tx.ListTeamMembers(ctx, v.ID)
		if err != nil {
			return err
		}
		existing := engine.PlanRoles(rows, model.DistinctRoles(members))
		updated := apply(rows, existing)
		if err := tx.ReplaceSprintPlan(ctx, v.ID, updated); err != nil {
			return err
		}
		saved = updated
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, action, "sprint_plan", nil, nil, strPtr(role.Display())))
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
