package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/estimation-engine/internal/model"
	"github.com/nurpe/estimation-engine/internal/service"
)

// featureRow is the scan target; the JSONB task breakdown arrives as text.
type featureRow struct {
	ID                uuid.UUID
	VersionID         uuid.UUID
	Name              string
	Description       *string
	Priority          int
	EffortHours       decimal.Decimal
	EffortStoryPoints *int
	Tasks             string
}

func (r featureRow) toModel() (model.Feature, error) {
	f := model.Feature{
		ID:                r.ID,
		VersionID:         r.VersionID,
		Name:              r.Name,
		Description:       r.Description,
		Priority:          r.Priority,
		EffortHours:       r.EffortHours,
		EffortStoryPoints: r.EffortStoryPoints,
	}
	if err := unmarshalJSON(r.Tasks, &f.Tasks); err != nil {
		return model.Feature{}, err
	}
	return f, nil
}

func (s *Store) ListFeatures(ctx context.Context, versionID uuid.UUID) ([]model.Feature, error) {
	var rows []featureRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, name, description, priority, effort_hours,
			effort_story_points, tasks::text AS tasks
		FROM features
		WHERE version_id = ?
		ORDER BY priority DESC, name
	`, versionID).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	features := make([]model.Feature, 0, len(rows))
	for _, r := range rows {
		f, err := r.toModel()
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

func (s *Store) GetFeature(ctx context.Context, id uuid.UUID) (*model.Feature, error) {
	var rows []featureRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id, version_id, name, description, priority, effort_hours,
			effort_story_points, tasks::text AS tasks
		FROM features
		WHERE id = ?
	`, id).Scan(&rows).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(rows) == 0 {
		return nil, service.ErrNotFound
	}
	f, err := rows[0].toModel()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) InsertFeature(ctx context.Context, f *model.Feature) error {
	tasks, err := marshalJSON(f.Tasks)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO features (
			id, version_id, name, description, priority, effort_hours,
			effort_story_points, tasks
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?::jsonb)
	`, f.ID, f.VersionID, f.Name, f.Description, f.Priority,
		f.EffortHours, f.EffortStoryPoints, tasks).Error
}

func (s *Store) UpdateFeature(ctx context.Context, f *model.Feature) error {
	tasks, err := marshalJSON(f.Tasks)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Exec(`
		UPDATE features SET
			name = ?,
			description = ?,
			priority = ?,
			effort_hours = ?,
			effort_story_points = ?,
			tasks = ?::jsonb
		WHERE id = ?
	`, f.Name, f.Description, f.Priority, f.EffortHours,
		f.EffortStoryPoints, tasks, f.ID)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(`DELETE FROM features WHERE id = ?`, id)
	if result.Error != nil {
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) InsertEstimationHistory(ctx context.Context, h *model.EstimationHistory) error {
	at := h.ChangedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO estimation_history (
			id, version_id, feature_id, previous_effort, new_effort,
			changed_by_user_id, changed_at, authority
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.VersionID, h.FeatureID, h.PreviousEffort, h.NewEffort,
		h.ChangedByUserID, at, h.Authority).Error
}

func (s *Store) InsertJustification(ctx context.Context, j *model.JustificationLog) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO justification_logs (
			id, version_id, feature_id, previous_effort, new_effort,
			justification, created_by_user_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.VersionID, j.FeatureID, j.PreviousEffort, j.NewEffort,
		j.Justification, j.CreatedByUserID, j.CreatedAt).Error
}
