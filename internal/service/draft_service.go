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

// DraftService stages machine-extracted suggestions. Drafts never touch the
// live plan; a human reviews and promotes them one by one, and only the
// promotion is subject to the version lock.
type DraftService struct {
	store Store
}

func NewDraftService(store Store) *DraftService {
	return &DraftService{store: store}
}

type FeatureDraftInput struct {
	Name        string
	Description *string
	Priority    int
	EffortHours decimal.Decimal
	Tasks       []model.FeatureTask
	RawSource   *string
}

type TeamMemberDraftInput struct {
	Role              string
	UtilizationPct    decimal.Decimal
	CostRatePerDay    *decimal.Decimal
	BillingRatePerDay *decimal.Decimal
	RawSource         *string
}

func (s *DraftService) SubmitFeatureDrafts(
	ctx context.Context,
	projectID uuid.UUID,
	inputs []FeatureDraftInput,
) ([]model.FeatureDraft, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	drafts := make([]model.FeatureDraft, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			continue
		}
		drafts = append(drafts, model.FeatureDraft{
			ID:          uuid.New(),
			VersionID:   version.ID,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Priority:    in.Priority,
			EffortHours: in.EffortHours,
			Tasks:       in.Tasks,
			RawSource:   in.RawSource,
			CreatedAt:   now,
		})
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no usable drafts", ErrInvalidInput)
	}
	if err := s.store.InsertFeatureDrafts(ctx, drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *DraftService) SubmitTeamMemberDrafts(
	ctx context.Context,
	projectID uuid.UUID,
	inputs []TeamMemberDraftInput,
) ([]model.TeamMemberDraft, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	drafts := make([]model.TeamMemberDraft, 0, len(inputs))
	for _, in := range inputs {
		if model.NewRole(in.Role).IsZero() {
			continue
		}
		drafts = append(drafts, model.TeamMemberDraft{
			ID:                uuid.New(),
			VersionID:         version.ID,
			Role:              strings.TrimSpace(in.Role),
			UtilizationPct:    in.UtilizationPct,
			CostRatePerDay:    in.CostRatePerDay,
			BillingRatePerDay: in.BillingRatePerDay,
			RawSource:         in.RawSource,
			CreatedAt:         now,
		})
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no usable drafts", ErrInvalidInput)
	}
	if err := s.store.InsertTeamMemberDrafts(ctx, drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *DraftService) ListFeatureDrafts(ctx context.Context, projectID uuid.UUID) ([]model.FeatureDraft, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.store.ListFeatureDrafts(ctx, version.ID)
}

func (s *DraftService) ListTeamMemberDrafts(ctx context.Context, projectID uuid.UUID) ([]model.TeamMemberDraft, error) {
	version, err := s.store.CurrentVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.store.ListTeamMemberDrafts(ctx, version.ID)
}

// PromoteFeatureDraft copies a draft into the live feature list. A draft is
// promoted at most once.
func (s *DraftService) PromoteFeatureDraft(
	ctx context.Context,
	actor model.Principal,
	projectID, draftID uuid.UUID,
) (*model.Feature, error) {
	var feature *model.Feature
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		draft, err := tx.GetFeatureDraft(ctx, draftID)
		if err != nil {
			return err
		}
		if draft.VersionID != v.ID {
			return ErrNotFound
		}
		if draft.Promoted {
			return fmt.Errorf("%w: draft already promoted", ErrInvalidInput)
		}
		feature = &model.Feature{
			ID:          uuid.New(),
			VersionID:   v.ID,
			Name:        draft.Name,
			Description: draft.Description,
			Priority:    draft.Priority,
			EffortHours: taskEffort(draft.EffortHours, draft.Tasks),
			Tasks:       draft.Tasks,
		}
		if err := tx.InsertFeature(ctx, feature); err != nil {
			return err
		}
		if err := tx.MarkFeatureDraftPromoted(ctx, draftID); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, "promote_feature_draft", "feature", &feature.ID, nil, strPtr(feature.Name)))
	})
	if err != nil {
		return nil, err
	}
	return feature, nil
}

// PromoteTeamMemberDraft copies a draft onto the live team, applying the same
// validation as a manual add.
func (s *DraftService) PromoteTeamMemberDraft(
	ctx context.Context,
	actor model.Principal,
	projectID, draftID uuid.UUID,
) (*model.TeamMember, error) {
	var member *model.TeamMember
	err := editableVersion(ctx, s.store, projectID, func(tx Store, v *model.ProjectVersion) error {
		draft, err := tx.GetTeamMemberDraft(ctx, draftID)
		if err != nil {
			return err
		}
		if draft.VersionID != v.ID {
			return ErrNotFound
		}
		if draft.Promoted {
			return fmt.Errorf("%w: draft already promoted", ErrInvalidInput)
		}
		member = &model.TeamMember{
			ID:                  uuid.New(),
			VersionID:           v.ID,
			Role:                draft.Role,
			CostRatePerDay:      draft.CostRatePerDay,
			BillingRatePerDay:   draft.BillingRatePerDay,
			UtilizationPct:      draft.UtilizationPct,
			WorkingDaysPerMonth: 20,
			HoursPerDay:         8,
		}
		if err := engine.ValidateTeamMember(*member); err != nil {
			return err
		}
		if err := tx.InsertTeamMember(ctx, member); err != nil {
			return err
		}
		if err := tx.MarkTeamMemberDraftPromoted(ctx, draftID); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, auditEntry(actor, projectID, v.ID, "promote_team_member_draft", "team_member", &member.ID, nil, strPtr(member.Role)))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}
