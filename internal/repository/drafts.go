package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

type featureDraftRow struct {
	ID          uuid.UUID
	VersionID   uuid.UUID
	Name        string
	Description *string
	Priority    int
	EffortHours decimal.Decimal
	Tasks       string
	RawSource   *string
	Promoted    bool
	CreatedAt   time.Time
}

func (r featureDraftRow) toModel() (model.FeatureDraft, error) {
	d := model.FeatureDraft{
		ID:          r.ID,
		VersionID:   r.VersionID,
		Name:        r.Name,
		Description: r.Description,
		Priority:    r.Priority,
		EffortHours: r.EffortHours,
		RawSource:   r.RawSource,
		Promoted:    r.Promoted,
		CreatedAt:   r.CreatedAt,
	}
	if err := unmarshalJSON(r.Tasks, &d.Tasks); err != nil {
		return model.FeatureDraft{}, err
	}
	return d, nil
}

func (s *Store) InsertFeatureDrafts(ctx context.Context, drafts []model.FeatureDraft) error {
	for _, d := range drafts {
		tasks, err := marshalJSON(d.Tasks)
		if err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Exec(`
			INSERT INTO feature_drafts (
				id, version_id, name, description, priority, effort_hours,
				tasks, raw_source, promoted, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?::jsonb, ?, ?, ?)
		`, d.ID, d.VersionID, d.Name, d.Description, d.Priority,
			d.EffortHours, tasks, d.RawSource, d.Promoted, d.CreatedAt).Error; err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

func (s *Store) ListFeatureDrafts(ctx context.Context, versionID uuid.UUID) ([]model.FeatureDraft, error) {
	var rows []featureDraftRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, name, description, priority, effort_hours,
			tasks::text AS tasks, raw_source, promoted, created_at
		FROM feature_drafts
		WHERE version_id = ?
		ORDER BY created_at
	`, versionID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]model.FeatureDraft, 0, len(rows))
	for _, r := range rows {
		d, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) GetFeatureDraft(ctx context.Context, id uuid.UUID) (*model.FeatureDraft, error) {
	var rows []featureDraftRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, name, description, priority, effort_hours,
			tasks::text AS tasks, raw_source, promoted, created_at
		FROM feature_drafts
		WHERE id = ?
	`, id).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	d, err := rows[0].toModel()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) MarkFeatureDraftPromoted(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE feature_drafts SET promoted = TRUE WHERE id = ?
	`, id)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) InsertTeamMemberDrafts(ctx context.Context, drafts []model.TeamMemberDraft) error {
	for _, d := range drafts {
		if err := s.db.WithContext(ctx).Exec(`
			INSERT INTO team_member_drafts (
				id, version_id, role, utilization_pct, cost_rate_per_day,
				billing_rate_per_day, raw_source, promoted, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.VersionID, d.Role, d.UtilizationPct, d.CostRatePerDay,
			d.BillingRatePerDay, d.RawSource, d.Promoted, d.CreatedAt).Error; err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

func (s *Store) ListTeamMemberDrafts(ctx context.Context, versionID uuid.UUID) ([]model.TeamMemberDraft, error) {
	var rows []model.TeamMemberDraft
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, role, utilization_pct, cost_rate_per_day,
			billing_rate_per_day, raw_source, promoted, created_at
		FROM team_member_drafts
		WHERE version_id = ?
		ORDER BY created_at
	`, versionID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return rows, nil
}

func (s *Store) GetTeamMemberDraft(ctx context.Context, id uuid.UUID) (*model.TeamMemberDraft, error) {
	var rows []model.TeamMemberDraft
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, role, utilization_pct, cost_rate_per_day,
			billing_rate_per_day, raw_source, promoted, created_at
		FROM team_member_drafts
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

func (s *Store) MarkTeamMemberDraftPromoted(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE team_member_drafts SET promoted = TRUE WHERE id = ?
	`, id)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}
