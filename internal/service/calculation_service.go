package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

// CalculationService exposes the read-only computation surface: cost,
// revenue, profitability, reverse margin and sprint allocation over the
// current version's data. Nothing here mutates state, so these run against
// locked versions too.
type CalculationService struct {
	store Store
	cfg   engine.Defaults
}

func NewCalculationService(store Store, cfg engine.Defaults) *CalculationService {
	return &CalculationService{store: store, cfg: cfg}
}

// EstimateSnapshot is everything the computations and the document exports
// need, loaded in one pass over the current version.
type EstimateSnapshot struct {
	Project    model.Project
	Version    model.ProjectVersion
	Members    []model.TeamMember
	Features   []model.Feature
	Milestones []model.Milestone
	PlanRows   []model.SprintPlanRow
	Rates      []model.RoleDefaultRate
	Currency   *model.CurrencySnapshot
}

func (s *CalculationService) Snapshot(ctx context.Context, projectID uuid.UUID) (*EstimateSnapshot, error) {
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
	rows, err := s.store.ListSprintPlanRows(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	rates, err := s.store.ListRoleRates(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := &EstimateSnapshot{
		Project:    *project,
		Version:    *version,
		Members:    members,
		Features:   features,
		Milestones: milestones,
		PlanRows:   rows,
		Rates:      rates,
	}
	currency, err := s.store.LatestCurrencySnapshot(ctx, projectID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err == nil {
		snapshot.Currency = currency
	}
	return snapshot, nil
}

func (s *CalculationService) calculator(snap *EstimateSnapshot) *engine.Calculator {
	return engine.New(s.cfg, engine.NewRateBook(snap.Rates))
}

func (s *CalculationService) Cost(ctx context.Context, projectID uuid.UUID) (engine.CostBreakdown, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return engine.CostBreakdown{}, err
	}
	calc := s.calculator(snap)
	return calc.Cost(snap.Members, snap.Features, snap.Version.ContingencyPct, snap.Version.ManagementReservePct), nil
}

// SprintPlanCost is the capacity-commitment cost path over the allocation
// grid. It is reported next to the task-effort cost, never reconciled with it.
func (s *CalculationService) SprintPlanCost(ctx context.Context, projectID uuid.UUID) (engine.CostBreakdown, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return engine.CostBreakdown{}, err
	}
	calc := s.calculator(snap)
	return calc.SprintPlanCost(
		snap.PlanRows, snap.Members,
		snap.Version.SprintDurationWeeks, snap.Version.WorkingDaysPerMonth,
		snap.Version.ContingencyPct, snap.Version.ManagementReservePct,
	), nil
}

func (s *CalculationService) Revenue(ctx context.Context, projectID uuid.UUID) (engine.RevenueBreakdown, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return engine.RevenueBreakdown{}, err
	}
	calc := s.calculator(snap)
	return calc.Revenue(snap.Project, snap.Members, snap.Features, snap.Milestones)
}

// Profitability is the combined cost, revenue and margin view. Undefined
// revenue or margin surfaces as nil fields, not as an error: a draft without
// an agreed price is a normal state, not a failure.
type Profitability struct {
	Cost           engine.CostBreakdown
	Revenue        *decimal.Decimal
	RevenueModel   model.RevenueModel
	GrossMarginPct *decimal.Decimal
	NetMarginPct   *decimal.Decimal
	MarginWarning  bool
	UncoveredRoles []string
}

func (s *CalculationService) Profitability(ctx context.Context, projectID uuid.UUID) (*Profitability, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	calc := s.calculator(snap)
	cost := calc.Cost(snap.Members, snap.Features, snap.Version.ContingencyPct, snap.Version.ManagementReservePct)

	result := &Profitability{
		Cost:           cost,
		RevenueModel:   snap.Project.RevenueModel,
		UncoveredRoles: cost.UncoveredRoles,
	}

	var undefined *engine.UndefinedResultError
	revenue, err := calc.Revenue(snap.Project, snap.Members, snap.Features, snap.Milestones)
	if err != nil {
		if errors.As(err, &undefined) {
			return result, nil
		}
		return nil, err
	}
	result.Revenue = &revenue.Revenue
	for _, role := range revenue.UncoveredRoles {
		result.UncoveredRoles = appendMissing(result.UncoveredRoles, role)
	}

	gross, err := calc.GrossMarginPct(revenue.Revenue, cost.TotalCost)
	if err != nil {
		if errors.As(err, &undefined) {
			return result, nil
		}
		return nil, err
	}
	result.GrossMarginPct = &gross

	net, err := calc.NetMarginPct(revenue.Revenue, cost.TotalCost)
	if err == nil {
		result.NetMarginPct = &net
		result.MarginWarning = calc.MarginBelowThreshold(net)
	}
	return result, nil
}

func (s *CalculationService) ReverseMargin(
	ctx context.Context,
	projectID uuid.UUID,
	targetMarginPct decimal.Decimal,
) (engine.ReverseMarginResult, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return engine.ReverseMarginResult{}, err
	}
	calc := s.calculator(snap)
	cost := calc.Cost(snap.Members, snap.Features, snap.Version.ContingencyPct, snap.Version.ManagementReservePct)
	return calc.ReverseMargin(cost.TotalCost, targetMarginPct, calc.TotalEffortHours(snap.Features))
}

func (s *CalculationService) SprintSummary(ctx context.Context, projectID uuid.UUID) (engine.SprintAllocation, error) {
	snap, err := s.Snapshot(ctx, projectID)
	if err != nil {
		return engine.SprintAllocation{}, err
	}
	calc := s.calculator(snap)
	return calc.SprintAllocationSummary(
		snap.Members, snap.Features, snap.Version.ContingencyPct,
		snap.Version.SprintDurationWeeks, snap.Version.WorkingDaysPerMonth,
	)
}

// RoleFTE is the project-level FTE per role, the seed values of the
// allocation grid.
func (s *CalculationService) RoleFTE(ctx context.Context, projectID uuid.UUID) (map[string]decimal.Decimal, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListTeamMembers(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	return engine.ProjectRoleFTE(members), nil
}

func appendMissing(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
