package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
)

// Store is the persistence port the services operate against. Missing rows
// surface as ErrNotFound. Atomically runs fn inside one transaction; the
// Store handed to fn is transaction-scoped, and CurrentVersionForUpdate holds
// a row lock inside it so a lock-state check and the write it guards commit
// together.
type Store interface {
	Atomically(ctx context.Context, fn func(Store) error) error

	InsertProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]model.Milestone, error)
	ReplaceMilestones(ctx context.Context, projectID uuid.UUID, items []model.Milestone) error

	InsertVersion(ctx context.Context, v *model.ProjectVersion) error
	CurrentVersion(ctx context.Context, projectID uuid.UUID) (*model.ProjectVersion, error)
	CurrentVersionForUpdate(ctx context.Context, projectID uuid.UUID) (*model.ProjectVersion, error)
	GetVersion(ctx context.Context, id uuid.UUID) (*model.ProjectVersion, error)
	SaveVersion(ctx context.Context, v *model.ProjectVersion) error

	ListTeamMembers(ctx context.Context, versionID uuid.UUID) ([]model.TeamMember, error)
	GetTeamMember(ctx context.Context, id uuid.UUID) (*model.TeamMember, error)
	InsertTeamMember(ctx context.Context, m *model.TeamMember) error
	UpdateTeamMember(ctx context.Context, m *model.TeamMember) error
	DeleteTeamMember(ctx context.Context, id uuid.UUID) error

	ListFeatures(ctx context.Context, versionID uuid.UUID) ([]model.Feature, error)
	GetFeature(ctx context.Context, id uuid.UUID) (*model.Feature, error)
	InsertFeature(ctx context.Context, f *model.Feature) error
	UpdateFeature(ctx context.Context, f *model.Feature) error
	DeleteFeature(ctx context.Context, id uuid.UUID) error
	InsertEstimationHistory(ctx context.Context, h *model.EstimationHistory) error
	InsertJustification(ctx context.Context, j *model.JustificationLog) error

	ListSprintPlanRows(ctx context.Context, versionID uuid.UUID) ([]model.SprintPlanRow, error)
	ReplaceSprintPlan(ctx context.Context, versionID uuid.UUID, rows []model.SprintPlanRow) error

	ListRoleRates(ctx context.Context) ([]model.RoleDefaultRate, error)
	UpsertRoleRate(ctx context.Context, r *model.RoleDefaultRate) error
	DeleteRoleRate(ctx context.Context, id uuid.UUID) error

	AppendAudit(ctx context.Context, entry *model.AuditLog) error
	ListAudit(ctx context.Context, projectID uuid.UUID) ([]model.AuditLog, error)

	InsertFeatureDrafts(ctx context.Context, drafts []model.FeatureDraft) error
	ListFeatureDrafts(ctx context.Context, versionID uuid.UUID) ([]model.FeatureDraft, error)
	GetFeatureDraft(ctx context.Context, id uuid.UUID) (*model.FeatureDraft, error)
	MarkFeatureDraftPromoted(ctx context.Context, id uuid.UUID) error
	InsertTeamMemberDrafts(ctx context.Context, drafts []model.TeamMemberDraft) error
	ListTeamMemberDrafts(ctx context.Context, versionID uuid.UUID) ([]model.TeamMemberDraft, error)
	GetTeamMemberDraft(ctx context.Context, id uuid.UUID) (*model.TeamMemberDraft, error)
	MarkTeamMemberDraftPromoted(ctx context.Context, id uuid.UUID) error

	InsertCurrencySnapshot(ctx context.Context, s *model.CurrencySnapshot) error
	LatestCurrencySnapshot(ctx context.Context, projectID uuid.UUID) (*model.CurrencySnapshot, error)
}
