package http

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

// Response shapes for the JSON API. Monetary and effort figures are rounded
// to 2 decimals here; the engine keeps full precision internally.

type teamMemberResponse struct {
	ID                  uuid.UUID        `json:"id"`
	Role                string           `json:"role"`
	MemberName          *string          `json:"member_name,omitempty"`
	CostRatePerDay      *decimal.Decimal `json:"cost_rate_per_day,omitempty"`
	BillingRatePerDay   *decimal.Decimal `json:"billing_rate_per_day,omitempty"`
	MonthlyCostRate     *decimal.Decimal `json:"monthly_cost_rate,omitempty"`
	UtilizationPct      decimal.Decimal  `json:"utilization_pct"`
	WorkingDaysPerMonth int              `json:"working_days_per_month"`
	HoursPerDay         int              `json:"hours_per_day"`
}

func toTeamMemberResponse(m *model.TeamMember) teamMemberResponse {
	return teamMemberResponse{
		ID:                  m.ID,
		Role:                m.Role,
		MemberName:          m.MemberName,
		CostRatePerDay:      round2Ptr(m.CostRatePerDay),
		BillingRatePerDay:   round2Ptr(m.BillingRatePerDay),
		MonthlyCostRate:     round2Ptr(m.MonthlyCostRate),
		UtilizationPct:      m.UtilizationPct,
		WorkingDaysPerMonth: m.WorkingDaysPerMonth,
		HoursPerDay:         m.HoursPerDay,
	}
}

type featureBody struct {
	ID                uuid.UUID           `json:"id"`
	Name              string              `json:"name"`
	Description       *string             `json:"description,omitempty"`
	Priority          int                 `json:"priority"`
	EffortHours       decimal.Decimal     `json:"effort_hours"`
	EffortStoryPoints *int                `json:"effort_story_points,omitempty"`
	Tasks             []model.FeatureTask `json:"tasks"`
}

func toFeatureBody(f *model.Feature) featureBody {
	tasks := f.Tasks
	if tasks == nil {
		tasks = []model.FeatureTask{}
	}
	return featureBody{
		ID:                f.ID,
		Name:              f.Name,
		Description:       f.Description,
		Priority:          f.Priority,
		EffortHours:       engine.Round2(f.EffortHours),
		EffortStoryPoints: f.EffortStoryPoints,
		Tasks:             tasks,
	}
}

type auditEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	VersionID  *uuid.UUID `json:"version_id,omitempty"`
	UserID     uuid.UUID  `json:"user_id"`
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	OldValue   *string    `json:"old_value,omitempty"`
	NewValue   *string    `json:"new_value,omitempty"`
	Reason     *string    `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toAuditResponse(entries []model.AuditLog) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			VersionID:  e.VersionID,
			UserID:     e.UserID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			Reason:     e.Reason,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

type currencyResponse struct {
	ID               uuid.UUID       `json:"id"`
	BaseCurrency     string          `json:"base_currency"`
	TargetCurrency   string          `json:"target_currency"`
	Rate             decimal.Decimal `json:"rate"`
	SnapshotAt       time.Time       `json:"snapshot_at"`
	ApprovedByUserID *uuid.UUID      `json:"approved_by_user_id,omitempty"`
}

func toCurrencyResponse(s *model.CurrencySnapshot) currencyResponse {
	return currencyResponse{
		ID:               s.ID,
		BaseCurrency:     s.BaseCurrency,
		TargetCurrency:   s.TargetCurrency,
		Rate:             s.Rate,
		SnapshotAt:       s.SnapshotAt,
		ApprovedByUserID: s.ApprovedByUserID,
	}
}

type featureDraftResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	Priority    int                 `json:"priority"`
	EffortHours decimal.Decimal     `json:"effort_hours"`
	Tasks       []model.FeatureTask `json:"tasks"`
	Promoted    bool                `json:"promoted"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toFeatureDraftResponses(drafts []model.FeatureDraft) []featureDraftResponse {
	out := make([]featureDraftResponse, 0, len(drafts))
	for _, d := range drafts {
		tasks := d.Tasks
		if tasks == nil {
			tasks = []model.FeatureTask{}
		}
		out = append(out, featureDraftResponse{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Priority:    d.Priority,
			EffortHours: engine.Round2(d.EffortHours),
			Tasks:       tasks,
			Promoted:    d.Promoted,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out
}

type teamDraftResponse struct {
	ID                uuid.UUID        `json:"id"`
	Role              string           `json:"role"`
	UtilizationPct    decimal.Decimal  `json:"utilization_pct"`
	CostRatePerDay    *decimal.Decimal `json:"cost_rate_per_day,omitempty"`
	BillingRatePerDay *decimal.Decimal `json:"billing_rate_per_day,omitempty"`
	Promoted          bool             `json:"promoted"`
	CreatedAt         time.Time        `json:"created_at"`
}

func toTeamDraftResponses(drafts []model.TeamMemberDraft) []teamDraftResponse {
	out := make([]teamDraftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, teamDraftResponse{
			ID:                d.ID,
			Role:              d.Role,
			UtilizationPct:    d.UtilizationPct,
			CostRatePerDay:    round2Ptr(d.CostRatePerDay),
			BillingRatePerDay: round2Ptr(d.BillingRatePerDay),
			Promoted:          d.Promoted,
			CreatedAt:         d.CreatedAt,
		})
	}
	return out
}

type planRowResponse struct {
	ID          uuid.UUID                  `json:"id"`
	RowType     string                     `json:"row_type"`
	SprintNum   *int                       `json:"sprint_num,omitempty"`
	WeekNum     *int                       `json:"week_num,omitempty"`
	Phase       *string                    `json:"phase,omitempty"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
	SortOrder   int                        `json:"sort_order"`
}

type sprintPlanResponse struct {
	Rows  []planRowResponse `json:"rows"`
	Roles []string          `json:"roles"`
}

func toSprintPlanResponse(rows []model.SprintPlanRow) sprintPlanResponse {
	return sprintPlanResponse{
		Rows:  toPlanRowResponses(rows),
		Roles: planRoleNames(rows),
	}
}

// planRoleNames reads the column set from the grid itself. Normalization
// keeps every row on the same key set, so the first row is authoritative.
func planRoleNames(rows []model.SprintPlanRow) []string {
	if len(rows) == 0 {
		return []string{}
	}
	names := make([]string, 0, len(rows[0].Allocations))
	for role := range rows[0].Allocations {
		names = append(names, role)
	}
	sort.Strings(names)
	return names
}

func toPlanRowResponses(rows []model.SprintPlanRow) []planRowResponse {
	out := make([]planRowResponse, 0, len(rows))
	for _, row := range rows {
		var phase *string
		if row.Phase != nil {
			p := string(*row.Phase)
			phase = &p
		}
		out = append(out, planRowResponse{
			ID:          row.ID,
			RowType:     string(row.RowType),
			SprintNum:   row.SprintNum,
			WeekNum:     row.WeekNum,
			Phase:       phase,
			Allocations: row.Allocations,
			SortOrder:   row.SortOrder,
		})
	}
	return out
}

type costResponse struct {
	BaseCost             decimal.Decimal `json:"base_cost"`
	RiskBuffer           decimal.Decimal `json:"risk_buffer"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	ContingencyPct       decimal.Decimal `json:"contingency_pct"`
	ManagementReservePct decimal.Decimal `json:"management_reserve_pct"`
	UncoveredRoles       []string        `json:"uncovered_roles,omitempty"`
}

func toCostResponse(b engine.CostBreakdown) costResponse {
	return costResponse{
		BaseCost:             engine.Round2(b.BaseCost),
		RiskBuffer:           engine.Round2(b.RiskBuffer),
		TotalCost:            engine.Round2(b.TotalCost),
		ContingencyPct:       b.ContingencyPct,
		ManagementReservePct: b.ManagementReservePct,
		UncoveredRoles:       b.UncoveredRoles,
	}
}
