package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

// ProjectService owns the project repository: creation with the automatic
// first version and frozen currency snapshot, version cloning, milestones,
// and the portfolio summary.
type ProjectService struct {
	store Store
	cfg   engine.Defaults
}

func NewProjectService(store Store, cfg engine.Defaults) *ProjectService {
	return &ProjectService{store: store, cfg: cfg}
}

type ProjectInput struct {
	Name                string
	ClientName          *string
	RevenueModel        model.RevenueModel
	Currency            string
	BaseCurrency        string
	FXRate              *decimal.Decimal
	SprintDurationWeeks int
	FixedRevenue        *decimal.Decimal
}

// Create inserts the project, its draft version 1 and the currency snapshot
// in one transaction. The snapshot freezes the FX rate; later rate movements
// never change the project's numbers unless a refresh is explicitly approved.
func (s *ProjectService) Create(
	ctx context.Context,
	actor model.Principal,
	input ProjectInput,
) (*model.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if !input.RevenueModel.Valid() {
		return nil, fmt.Errorf("%w: unknown revenue model %q", ErrInvalidInput, input.RevenueModel)
	}
	if input.FixedRevenue != nil && input.FixedRevenue.IsNegative() {
		return nil, fmt.Errorf("%w: fixed revenue must not be negative", ErrInvalidInput)
	}

	now := time.Now().UTC()
	project := &model.Project{
		ID:                  uuid.New(),
		Name:                strings.TrimSpace(input.Name),
		ClientName:          input.ClientName,
		RevenueModel:        input.RevenueModel,
		Currency:            defaultCurrency(input.Currency),
		SprintDurationWeeks: defaultInt(input.SprintDurationWeeks, s.cfg.SprintDurationWeeks),
		FixedRevenue:        input.FixedRevenue,
		CreatedByUserID:     actor.UserID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := s.store.Atomically(ctx, func(tx Store) error {
		if err := tx.InsertProject(ctx, project); err != nil {
			return err
		}
		version := s.newVersion(project, 1, actor.UserID, now)
		if err := tx.InsertVersion(ctx, version); err != nil {
			return err
		}
		rate := decimal.NewFromInt(1)
		if input.FXRate != nil {
			rate = *input.FXRate
		}
		if err := tx.InsertCurrencySnapshot(ctx, &model.CurrencySnapshot{
			ID:             uuid.New(),
			ProjectID:      project.ID,
			BaseCurrency:   defaultCurrency(input.BaseCurrency),
			TargetCurrency: project.Currency,
			Rate:           rate,
			SnapshotAt:     now,
		}); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, auditEntry(actor, project.ID, version.ID, "create_project", "project", &project.ID, nil, strPtr(project.Name)))
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) newVersion(p *model.Project, number int, actor uuid.UUID, at time.Time) *model.ProjectVersion {
	return &model.ProjectVersion{
		ID:                  uuid.New(),
		ProjectID:           p.ID,
		VersionNumber:       number,
		Status:              model.StatusDraft,
		ContingencyPct:      decimal.Zero,
		SprintDurationWeeks: p.SprintDurationWeeks,
		WorkingDaysPerMonth: s.cfg.WorkingDaysPerMonth,
		HoursPerDay:         s.cfg.HoursPerDay,
		CreatedByUserID:     actor,
		CreatedAt:           at,
	}
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	return s.store.ListProjects(ctx)
}

type ProjectUpdateInput struct {
	Name                *string
	ClientName          *string
	RevenueModel        *model.RevenueModel
	FixedRevenue        *decimal.Decimal
	SprintDurationWeeks *int
}

func (s *ProjectService) Update(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	input ProjectUpdateInput,
) (*model.Project, error) {
	if input.RevenueModel != nil && !input.RevenueModel.Valid() {
		return nil, fmt.Errorf("%w: unknown revenue model %q", ErrInvalidInput, *input.RevenueModel)
	}
	if input.FixedRevenue != nil && input.FixedRevenue.IsNegative() {
		return nil, fmt.Errorf("%w: fixed revenue must not be negative", ErrInvalidInput)
	}

	var updated *model.Project
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
			project.Name = strings.TrimSpace(*input.Name)
		}
		if input.ClientName != nil {
			project.ClientName = input.ClientName
		}
		if input.RevenueModel != nil {
			project.RevenueModel = *input.RevenueModel
		}
		if input.FixedRevenue != nil {
			project.FixedRevenue = input.FixedRevenue
		}
		if input.SprintDurationWeeks != nil && *input.SprintDurationWeeks > 0 {
			project.SprintDurationWeeks = *input.SprintDurationWeeks
		}
		project.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateProject(ctx, project); err != nil {
			return err
		}
		updated = project
		return audit(ctx, tx, actor, projectID, v.ID, "update_project", "project", &projectID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor model.Principal, projectID uuid.UUID) error {
	return s.store.Atomically(ctx, func(tx Store) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if err := tx.DeleteProject(ctx, projectID); err != nil {
			return err
		}
		// The audit trail outlives the project row.
		return tx.AppendAudit(ctx, &model.AuditLog{
			ID:         uuid.New(),
			ProjectID:  &projectID,
			UserID:     actor.UserID,
			Action:     "delete_project",
			EntityType: "project",
			EntityID:   &projectID,
			OldValue:   strPtr(project.Name),
			CreatedAt:  time.Now().UTC(),
		})
	})
}

func (s *ProjectService) SetMilestones(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	items []model.Milestone,
) error {
	for _, m := range items {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: milestone name is required", ErrInvalidInput)
		}
		if m.Amount.IsNegative() {
			return fmt.Errorf("%w: milestone amount must not be negative", ErrInvalidInput)
		}
	}
	return editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		for i := range items {
			if items[i].ID == uuid.Nil {
				items[i].ID = uuid.New()
			}
			items[i].ProjectID = projectID
			items[i].SortOrder = i
		}
		if err := tx.ReplaceMilestones(ctx, projectID, items); err != nil {
			return err
		}
		return audit(ctx, tx, actor, projectID, v.ID, "set_milestones", "milestone", nil)
	})
}

// NewVersion clones the current version, its team, features and sprint plan
// into a fresh draft. The source version stays untouched; a locked source is
// the normal case, since cloning is how a won estimate gets revised.
func (s *ProjectService) NewVersion(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
) (*model.ProjectVersion, error) {
	var clone *model.ProjectVersion
	err := s.store.Atomically(ctx, func(tx Store) error {
		source, err := tx.CurrentVersionForUpdate(ctx, projectID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		clone = &model.ProjectVersion{
			ID:                   uuid.New(),
			ProjectID:            projectID,
			VersionNumber:        source.VersionNumber + 1,
			Status:               model.StatusDraft,
			ContingencyPct:       source.ContingencyPct,
			ManagementReservePct: source.ManagementReservePct,
			EstimationAuthority:  source.EstimationAuthority,
			Notes:                source.Notes,
			SprintDurationWeeks:  source.SprintDurationWeeks,
			WorkingDaysPerMonth:  source.WorkingDaysPerMonth,
			HoursPerDay:          source.HoursPerDay,
			CreatedByUserID:      actor.UserID,
			CreatedAt:            now,
		}
		if err := tx.InsertVersion(ctx, clone); err != nil {
			return err
		}

		members, err := tx.ListTeamMembers(ctx, source.ID)
		if err != nil {
			return err
		}
		for i := range members {
			members[i].ID = uuid.New()
			members[i].VersionID = clone.ID
			if err := tx.InsertTeamMember(ctx, &members[i]); err != nil {
				return err
			}
		}

		features, err := tx.ListFeatures(ctx, source.ID)
		if err != nil {
			return err
		}
		for i := range features {
			features[i].ID = uuid.New()
			features[i].VersionID = clone.ID
			if err := tx.InsertFeature(ctx, &features[i]); err != nil {
				return err
			}
		}

		rows, err := tx.ListSprintPlanRows(ctx, source.ID)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].ID = uuid.New()
			rows[i].VersionID = clone.ID
		}
		if len(rows) > 0 {
			if err := tx.ReplaceSprintPlan(ctx, clone.ID, rows); err != nil {
				return err
			}
		}

		return tx.AppendAudit(ctx, auditEntry(actor, projectID, clone.ID, "create_version", "project_version", &clone.ID,
			strPtr(fmt.Sprintf("v%d", source.VersionNumber)), strPtr(fmt.Sprintf("v%d", clone.VersionNumber))))
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// ProjectSummary is the portfolio line for a project's current version.
// Undefined revenue or margin renders as absent, never as zero.
type ProjectSummary struct {
	Project       model.Project
	VersionNumber int
	Status        model.VersionStatus
	IsLocked      bool
	TotalCost     decimal.Decimal
	Revenue       *decimal.Decimal
	GrossMargin   *decimal.Decimal
	MarginWarning bool
}

func (s *ProjectService) Summary(ctx context.Context, projectID uuid.UUID) (*ProjectSummary, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListTeamMembers(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	features, err := s.store.ListFeatures(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.store.ListMilestones(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rates, err := s.store.ListRoleRates(ctx)
	if err != nil {
		return nil, err
	}

	calc := engine.New(s.cfg, engine.NewRateBook(rates))
	cost := calc.Cost(members, features, version.ContingencyPct, version.ManagementReservePct)

	summary := &ProjectSummary{
		Project:       *project,
		VersionNumber: version.VersionNumber,
		Status:        version.Status,
		IsLocked:      version.IsLocked,
		TotalCost:     cost.TotalCost,
	}

	revenue, err := calc.Revenue(*project, members, features, milestones)
	var undefined *engine.UndefinedResultError
	if err != nil {
		if !errors.As(err, &undefined) {
			return nil, err
		}
		return summary, nil
	}
	summary.Revenue = &revenue.Revenue

	margin, err := calc.NetMarginPct(revenue.Revenue, cost.TotalCost)
	if err != nil {
		if !errors.As(err, &undefined) {
			return nil, err
		}
		return summary, nil
	}
	summary.GrossMargin = &margin
	summary.MarginWarning = calc.MarginBelowThreshold(margin)
	return summary, nil
}

// RefreshCurrencySnapshot replaces the frozen FX rate with a newly approved
// one. The refresh is always explicit and audited; there is no automatic
// rate drift.
func (s *ProjectService) RefreshCurrencySnapshot(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	rate decimal.Decimal,
) (*model.CurrencySnapshot, error) {
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: fx rate must be positive", ErrInvalidInput)
	}

	var snapshot *model.CurrencySnapshot
	err := s.store.Atomically(ctx, func(tx Store) error {
		previous, err := tx.LatestCurrencySnapshot(ctx, projectID)
		if err != nil {
			return err
		}
		snapshot = &model.CurrencySnapshot{
			ID:               uuid.New(),
			ProjectID:        projectID,
			BaseCurrency:     previous.BaseCurrency,
			TargetCurrency:   previous.TargetCurrency,
			Rate:             rate,
			SnapshotAt:       time.Now().UTC(),
			ApprovedByUserID: &actor.UserID,
		}
		if err := tx.InsertCurrencySnapshot(ctx, snapshot); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditLog{
			ID:         uuid.New(),
			ProjectID:  &projectID,
			UserID:     actor.UserID,
			Action:     "refresh_currency_snapshot",
			EntityType: "currency_snapshot",
			EntityID:   &snapshot.ID,
			OldValue:   strPtr(previous.Rate.String()),
			NewValue:   strPtr(rate.String()),
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *ProjectService) CurrencySnapshot(ctx context.Context, projectID uuid.UUID) (*model.CurrencySnapshot, error) {
	return s.store.LatestCurrencySnapshot(ctx, projectID)
}

func defaultCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USD"
	}
	return c
}
