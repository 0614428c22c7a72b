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

// FeatureService manages the feature catalog of a version, including the
// effort-override governance: every effort change is recorded, and changes
// beyond the configured threshold require a written justification.
type FeatureService struct {
	store Store
	cfg   engine.Defaults
}

func NewFeatureService(store Store, cfg engine.Defaults) *FeatureService {
	return &FeatureService{store: store, cfg: cfg}
}

// FeatureView pairs a feature with its derived per-role effort rollup. The
// rollup is recomputed from the task breakdown on every read.
type FeatureView struct {
	Feature     model.Feature
	Allocations []model.EffortAllocation
}

func (s *FeatureService) List(ctx context.Context, projectID uuid.UUID) ([]FeatureView, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	features, err := s.store.ListFeatures(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	views := make([]FeatureView, 0, len(features))
	for _, f := range features {
		views = append(views, FeatureView{
			Feature:     f,
			Allocations: s.cfg.RollupAllocations(f),
		})
	}
	return views, nil
}

type FeatureInput struct {
	Name              string
	Description       *string
	Priority          *int
	EffortHours       *decimal.Decimal
	EffortStoryPoints *int
	Tasks             []model.FeatureTask

	// Justification is only consulted when the effort change exceeds the
	// override threshold.
	Justification *string
}

func (s *FeatureService) validateTasks(tasks []model.FeatureTask) error {
	for _, t := range tasks {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: task name is required", ErrInvalidInput)
		}
		if t.EffortHours.IsNegative() {
			return fmt.Errorf("%w: task effort must not be negative", ErrInvalidInput)
		}
	}
	return nil
}

// taskEffort returns the authoritative effort for a feature: the task sum
// when a breakdown exists, the explicit figure otherwise.
func taskEffort(explicit decimal.Decimal, tasks []model.FeatureTask) decimal.Decimal {
	if len(tasks) == 0 {
		return explicit
	}
	total := decimal.Zero
	for _, t := range tasks {
		total = total.Add(t.EffortHours)
	}
	return total
}

func (s *FeatureService) Add(
	ctx context.Context,
	actor model.Principal,
	projectID uuid.UUID,
	input FeatureInput,
) (*model.Feature, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: feature name is required", ErrInvalidInput)
	}
	if err := s.validateTasks(input.Tasks); err != nil {
		return nil, err
	}
	effort := decimal.Zero
	if input.EffortHours != nil {
		effort = *input.EffortHours
	}
	if effort.IsNegative() {
		return nil, fmt.Errorf("%w: effort must not be negative", ErrInvalidInput)
	}

	feature := &model.Feature{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		EffortHours:       taskEffort(effort, input.Tasks),
		EffortStoryPoints: input.EffortStoryPoints,
		Tasks:             input.Tasks,
	}
	if input.Priority != nil {
		feature.Priority = *input.Priority
	}

	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		feature.VersionID = v.ID
		if err := tx.InsertFeature(ctx, feature); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, "add_feature", "feature", &feature.ID, nil, strPtr(feature.Name)))
	})
	if err != nil {
		return nil, err
	}
	return feature, nil
}

// Update patches a feature. Any change to its effort is recorded in the
// estimation history; a change past the override threshold is rejected with
// ErrJustificationRequired unless a justification accompanies it, in which
// case the justification is logged alongside the history entry.
func (s *FeatureService) Update(
	ctx context.Context,
	actor model.Principal,
	projectID, featureID uuid.UUID,
	input FeatureInput,
) (*model.Feature, error) {
	if err := s.validateTasks(input.Tasks); err != nil {
		return nil, err
	}
	if input.EffortHours != nil && input.EffortHours.IsNegative() {
		return nil, fmt.Errorf("%w: effort must not be negative", ErrInvalidInput)
	}

	calc := engine.New(s.cfg, engine.NewRateBook(nil))

	var updated *model.Feature
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		feature, err := tx.GetFeature(ctx, featureID)
		if err != nil {
			return err
		}
		if feature.VersionID != v.ID {
			return ErrNotFound
		}

		previousEffort := feature.EffortHours

		if strings.TrimSpace(input.Name) != "" {
			feature.Name = strings.TrimSpace(input.Name)
		}
		if input.Description != nil {
			feature.Description = input.Description
		}
		if input.Priority != nil {
			feature.Priority = *input.Priority
		}
		if input.EffortStoryPoints != nil {
			feature.EffortStoryPoints = input.EffortStoryPoints
		}
		if input.Tasks != nil {
			feature.Tasks = input.Tasks
		}
		if input.EffortHours != nil || input.Tasks != nil {
			explicit := feature.EffortHours
			if input.EffortHours != nil {
				explicit = *input.EffortHours
			}
			feature.EffortHours = taskEffort(explicit, feature.Tasks)
		}

		if !feature.EffortHours.Equal(previousEffort) {
			overridden := calc.EffortOverrideExceedsThreshold(previousEffort, feature.EffortHours)
			justified := input.Justification != nil && strings.TrimSpace(*input.Justification) != ""
			if overridden && !justified {
				return fmt.Errorf("%w: effort change from %s to %s exceeds the override threshold",
					ErrJustificationRequired, previousEffort, feature.EffortHours)
			}

			now := time.Now().UTC()
			history := &model.EstimationHistory{
				ID:              uuid.New(),
				VersionID:       v.ID,
				FeatureID:       feature.ID,
				PreviousEffort:  previousEffort,
				NewEffort:       feature.EffortHours,
				ChangedByUserID: actor.UserID,
				ChangedAt:       now,
				Authority:       estimationAuthority(v),
			}
			if err := tx.InsertEstimationHistory(ctx, history); err != nil {
				return err
			}
			if overridden {
				if err := tx.InsertJustification(ctx, &model.JustificationLog{
					ID:              uuid.New(),
					VersionID:       v.ID,
					FeatureID:       feature.ID,
					PreviousEffort:  previousEffort,
					NewEffort:       feature.EffortHours,
					Justification:   strings.TrimSpace(*input.Justification),
					CreatedByUserID: actor.UserID,
					CreatedAt:       now,
				}); err != nil {
					return err
				}
			}
		}

		if err := tx.UpdateFeature(ctx, feature); err != nil {
			return err
		}
		updated = feature
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, "update_feature", "feature", &feature.ID,
			strPtr(previousEffort.String()), strPtr(feature.EffortHours.String())))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *FeatureService) Delete(
	ctx context.Context,
	actor model.Principal,
	projectID, featureID uuid.UUID,
) error {
	return editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		feature, err := tx.GetFeature(ctx, featureID)
		if err != nil {
			return err
		}
		if feature.VersionID != v.ID {
			return ErrNotFound
		}
		if err := tx.DeleteFeature(ctx, featureID); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, "delete_feature", "feature", &featureID, strPtr(feature.Name), nil))
	})
}

func estimationAuthority(v *model.ProjectVersion) string {
	if v.EstimationAuthority != nil && *v.EstimationAuthority != "" {
		return *v.EstimationAuthority
	}
	return "manual"
}
