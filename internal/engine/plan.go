package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

// BuildPlan generates a fresh allocation grid: one row per sprint plus the
// three fixed phase rows. Cells start at the project-level FTE for the role,
// not zero; users then edit per period.
func BuildPlan(sprints int, roles []model.Role, roleFTE map[string]decimal.Decimal) []model.SprintPlanRow {
	rows := make([]model.SprintPlanRow, 0, sprints+len(model.PhaseOrder))
	for i := 1; i <= sprints; i++ {
		num := i
		rows = append(rows, model.SprintPlanRow{
			RowType:     model.RowTypeSprint,
			SprintNum:   &num,
			Allocations: seedAllocations(roles, roleFTE),
		})
	}
	for _, phase := range model.PhaseOrder {
		p := phase
		rows = append(rows, model.SprintPlanRow{
			RowType:     model.RowTypePhase,
			Phase:       &p,
			Allocations: seedAllocations(roles, roleFTE),
		})
	}
	renumber(rows)
	return rows
}

func seedAllocations(roles []model.Role, roleFTE map[string]decimal.Decimal) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal, len(roles))
	for _, role := range roles {
		values[role.Display()] = lookupFTE(roleFTE, role)
	}
	return values
}

func lookupFTE(roleFTE map[string]decimal.Decimal, role model.Role) decimal.Decimal {
	for name, fte := range roleFTE {
		if model.NewRole(name).Equal(role) {
			return fte
		}
	}
	return decimal.Zero
}

// NormalizePlan enforces every grid invariant on a set of rows:
// legacy per-week rows collapse to one row per sprint (first week wins, weeks
// within a sprint are uniform), all-zero collapsed sprints re-seed from
// current role capacity, duplicate sprint or phase rows keep the first,
// phase rows sort after all sprint rows, and every row is re-keyed to exactly
// the given role set. Negative cells reject the whole write.
func NormalizePlan(
	rows []model.SprintPlanRow,
	roles []model.Role,
	roleFTE map[string]decimal.Decimal,
) ([]model.SprintPlanRow, error) {
	if err := validateCells(rows); err != nil {
		return nil, err
	}

	sprintRows := make([]model.SprintPlanRow, 0, len(rows))
	phaseRows := make([]model.SprintPlanRow, 0, len(model.PhaseOrder))
	seenSprint := make(map[int]int)
	seenPhase := make(map[model.SprintPhase]struct{})

	for _, row := range rows {
		switch row.RowType {
		case model.RowTypeSprint, model.RowTypeSprintWeek:
			if row.SprintNum == nil {
				continue
			}
			num := *row.SprintNum
			if idx, ok := seenSprint[num]; ok {
				// Legacy per-week rows: keep the earliest week for the sprint.
				if row.RowType == model.RowTypeSprintWeek && earlierWeek(row, sprintRows[idx]) {
					sprintRows[idx] = row
				}
				continue
			}
			seenSprint[num] = len(sprintRows)
			sprintRows = append(sprintRows, row)
		case model.RowTypePhase:
			if row.Phase == nil {
				continue
			}
			if _, ok := seenPhase[*row.Phase]; ok {
				continue
			}
			seenPhase[*row.Phase] = struct{}{}
			phaseRows = append(phaseRows, row)
		}
	}

	// Week numbers stay visible through the dedup loop so the earliest-week
	// comparison works; collapse only once every sprint has its winner.
	for i := range sprintRows {
		sprintRows[i] = collapseToSprint(sprintRows[i])
	}

	sort.SliceStable(sprintRows, func(i, j int) bool {
		return *sprintRows[i].SprintNum < *sprintRows[j].SprintNum
	})
	sort.SliceStable(phaseRows, func(i, j int) bool {
		return phaseIndex(*phaseRows[i].Phase) < phaseIndex(*phaseRows[j].Phase)
	})

	normalized := append(sprintRows, phaseRows...)
	for i := range normalized {
		normalized[i].Allocations = rekey(normalized[i].Allocations, roles)
		// An all-zero collapsed sprint is almost certainly an uninitialized
		// legacy row, not an intentional zero-allocation sprint.
		if normalized[i].RowType == model.RowTypeSprint && allZero(normalized[i].Allocations) {
			normalized[i].Allocations = seedAllocations(roles, roleFTE)
		}
	}
	renumber(normalized)
	return normalized, nil
}

func validateCells(rows []model.SprintPlanRow) error {
	for _, row := range rows {
		for name, fte := range row.Allocations {
			if fte.IsNegative() {
				return validationErr(CodeNegativeAllocation,
					"allocation for role %q must not be negative, got %s", name, fte)
			}
		}
	}
	return nil
}

func collapseToSprint(row model.SprintPlanRow) model.SprintPlanRow {
	row.RowType = model.RowTypeSprint
	row.WeekNum = nil
	return row
}

func earlierWeek(candidate, current model.SprintPlanRow) bool {
	if candidate.WeekNum == nil {
		return false
	}
	if current.WeekNum == nil {
		return false
	}
	return *candidate.WeekNum < *current.WeekNum
}

func phaseIndex(p model.SprintPhase) int {
	for i, phase := range model.PhaseOrder {
		if phase == p {
			return i
		}
	}
	return len(model.PhaseOrder)
}

// rekey maps a row's cells onto exactly the given role set: missing roles
// fill with zero, stale keys drop. Existing values match case-insensitively.
func rekey(values map[string]decimal.Decimal, roles []model.Role) map[string]decimal.Decimal {
	byKey := make(map[string]decimal.Decimal, len(values))
	for name, fte := range values {
		key := model.NewRole(name).Key()
		if _, ok := byKey[key]; !ok {
			byKey[key] = fte
		}
	}
	rekeyed := make(map[string]decimal.Decimal, len(roles))
	for _, role := range roles {
		rekeyed[role.Display()] = byKey[role.Key()]
	}
	return rekeyed
}

func allZero(values map[string]decimal.Decimal) bool {
	for _, fte := range values {
		if !fte.IsZero() {
			return false
		}
	}
	return true
}

func renumber(rows []model.SprintPlanRow) {
	for i := range rows {
		rows[i].SortOrder = i
	}
}

// AddPlanRole re-keys every row with the role added at zero allocation.
func AddPlanRole(rows []model.SprintPlanRow, role model.Role, existing []model.Role) []model.SprintPlanRow {
	roles := appendRole(existing, role)
	for i := range rows {
		rows[i].Allocations = rekey(rows[i].Allocations, roles)
	}
	return rows
}

// RemovePlanRole drops the role's key from every row; no row keeps a stale
// key, and grand totals recompute over the remaining roles only.
func RemovePlanRole(rows []model.SprintPlanRow, role model.Role, existing []model.Role) []model.SprintPlanRow {
	roles := make([]model.Role, 0, len(existing))
	for _, r := range existing {
		if !r.Equal(role) {
			roles = append(roles, r)
		}
	}
	for i := range rows {
		rows[i].Allocations = rekey(rows[i].Allocations, roles)
	}
	return rows
}

func appendRole(roles []model.Role, role model.Role) []model.Role {
	for _, r := range roles {
		if r.Equal(role) {
			return roles
		}
	}
	return append(roles, role)
}

// PlanRoles derives the grid's role set: the rows' own keys joined with the
// team's distinct roles, in row-first order.
func PlanRoles(rows []model.SprintPlanRow, team []model.Role) []model.Role {
	roles := make([]model.Role, 0, len(team))
	for _, row := range rows {
		names := make([]string, 0, len(row.Allocations))
		for name := range row.Allocations {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			roles = appendRole(roles, model.NewRole(name))
		}
	}
	for _, role := range team {
		roles = appendRole(roles, role)
	}
	return roles
}
