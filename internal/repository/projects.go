package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

func (s *Store) InsertProject(ctx context.Context, p *model.Project) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO projects (
			id, name, client_name, revenue_model, currency,
			sprint_duration_weeks, fixed_revenue, created_by_user_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?::revenue_model, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.ClientName, p.RevenueModel, p.Currency,
		p.SprintDurationWeeks, p.FixedRevenue, p.CreatedByUserID,
		p.CreatedAt, p.UpdatedAt).Error
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var rows []model.Project
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, name, client_name, revenue_model, currency,
			sprint_duration_weeks, fixed_revenue, created_by_user_id,
			created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	var rows []model.Project
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, name, client_name, revenue_model, currency,
			sprint_duration_weeks, fixed_revenue, created_by_user_id,
			created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE projects SET
			name = ?,
			client_name = ?,
			revenue_model = ?::revenue_model,
			currency = ?,
			sprint_duration_weeks = ?,
			fixed_revenue = ?,
			updated_at = ?
		WHERE id = ?
	`, p.Name, p.ClientName, p.RevenueModel, p.Currency,
		p.SprintDurationWeeks, p.FixedRevenue, p.UpdatedAt, p.ID)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(`DELETE FROM projects WHERE id = ?`, id)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]model.Milestone, error) {
	var rows []model.Milestone
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, project_id, name, amount, sort_order
		FROM milestones
		WHERE project_id = ?
		ORDER BY sort_order
	`, projectID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

func (s *Store) ReplaceMilestones(ctx context.Context, projectID uuid.UUID, items []model.Milestone) error {
	if err := s.db.WithContext(ctx).Exec(`DELETE FROM milestones WHERE project_id = ?`, projectID).Error; err != nil {
		return wrapErr(err)
	}
	for _, m := range items {
		if err := s.db.WithContext(ctx).Exec(`
			INSERT INTO milestones (id, project_id, name, amount, sort_order)
			VALUES (?, ?, ?, ?, ?)
		`, m.ID, m.ProjectID, m.Name, m.Amount, m.SortOrder).Error; err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

func (s *Store) InsertCurrencySnapshot(ctx context.Context, snap *model.CurrencySnapshot) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO currency_snapshots (
			id, project_id, base_currency, target_currency, rate,
			snapshot_at, approved_by_user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.ProjectID, snap.BaseCurrency, snap.TargetCurrency,
		snap.Rate, snap.SnapshotAt, snap.ApprovedByUserID).Error
}

func (s *Store) LatestCurrencySnapshot(ctx context.Context, projectID uuid.UUID) (*model.CurrencySnapshot, error) {
	var rows []model.CurrencySnapshot
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, project_id, base_currency, target_currency, rate,
			snapshot_at, approved_by_user_id
		FROM currency_snapshots
		WHERE project_id = ?
		ORDER BY snapshot_at DESC
		LIMIT 1
	`, projectID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	return &rows[0], nil
}
