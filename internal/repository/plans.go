package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
)

type planRow struct {
	ID          uuid.UUID
	VersionID   uuid.UUID
	RowType     string
	SprintNum   *int
	WeekNum     *int
	Phase       *string
	Allocations string
	SortOrder   int
}

func (r planRow) toModel() (model.SprintPlanRow, error) {
	row := model.SprintPlanRow{
		ID:        r.ID,
		VersionID: r.VersionID,
		RowType:   model.SprintRowType(r.RowType),
		SprintNum: r.SprintNum,
		WeekNum:   r.WeekNum,
		SortOrder: r.SortOrder,
	}
	if r.Phase != nil {
		if phase, ok := model.ParseSprintPhase(*r.Phase); ok {
			row.Phase = &phase
		}
	}
	allocations := make(map[string]decimal.Decimal)
	if err := unmarshalJSON(r.Allocations, &allocations); err != nil {
		return model.SprintPlanRow{}, err
	}
	row.Allocations = allocations
	return row, nil
}

func (s *Store) ListSprintPlanRows(ctx context.Context, versionID uuid.UUID) ([]model.SprintPlanRow, error) {
	var rows []planRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, row_type, sprint_num, week_num, phase,
			allocations::text AS allocations, sort_order
		FROM sprint_plan_rows
		WHERE version_id = ?
		ORDER BY sort_order
	`, versionID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]model.SprintPlanRow, 0, len(rows))
	for _, r := range rows {
		row, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) ReplaceSprintPlan(ctx context.Context, versionID uuid.UUID, rows []model.SprintPlanRow) error {
	if err := s.db.WithContext(ctx).Exec(`
		DELETE FROM sprint_plan_rows WHERE version_id = ?
	`, versionID).Error; err != nil {
		return wrapErr(err)
	}
	for _, row := range rows {
		allocations, err := marshalJSON(row.Allocations)
		if err != nil {
			return err
		}
		var phase *string
		if row.Phase != nil {
			p := string(*row.Phase)
			phase = &p
		}
		if err := s.db.WithContext(ctx).Exec(`
			INSERT INTO sprint_plan_rows (
				id, version_id, row_type, sprint_num, week_num, phase,
				allocations, sort_order
			) VALUES (?, ?, ?, ?, ?, ?, ?::jsonb, ?)
		`, row.ID, versionID, string(row.RowType), row.SprintNum,
			row.WeekNum, phase, allocations, row.SortOrder).Error; err != nil {
			return wrapErr(err)
		}
	}
	return nil
}
