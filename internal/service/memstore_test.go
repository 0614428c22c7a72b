package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
)

// memStore is an in-memory Store used by the service tests. Entities live in
// insertion-ordered slices; Atomically is a plain callback since the tests
// are single-goroutine.
type memStore struct {
	projects       []model.Project
	versions       []model.ProjectVersion
	members        []model.TeamMember
	features       []model.Feature
	milestones     []model.Milestone
	plans          map[uuid.UUID][]model.SprintPlanRow
	rates          []model.RoleDefaultRate
	audits         []model.AuditLog
	featureDrafts  []model.FeatureDraft
	teamDrafts     []model.TeamMemberDraft
	history        []model.EstimationHistory
	justifications []model.JustificationLog
	currencies     []model.CurrencySnapshot
}

func newMemStore() *memStore {
	return &memStore{plans: make(map[uuid.UUID][]model.SprintPlanRow)}
}

func (m *memStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *memStore) InsertProject(_ context.Context, p *model.Project) error {
	m.projects = append(m.projects, *p)
	return nil
}

func (m *memStore) GetProject(_ context.Context, id uuid.UUID) (*model.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			p := m.projects[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListProjects(_ context.Context) ([]model.Project, error) {
	return append([]model.Project(nil), m.projects...), nil
}

func (m *memStore) UpdateProject(_ context.Context, p *model.Project) error {
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = *p
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteProject(_ context.Context, id uuid.UUID) error {
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) ListMilestones(_ context.Context, projectID uuid.UUID) ([]model.Milestone, error) {
	var out []model.Milestone
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			out = append(out, ms)
		}
	}
	return out, nil
}

func (m *memStore) ReplaceMilestones(_ context.Context, projectID uuid.UUID, items []model.Milestone) error {
	kept := m.milestones[:0]
	for _, ms := range m.milestones {
		if ms.ProjectID != projectID {
			kept = append(kept, ms)
		}
	}
	m.milestones = append(kept, items...)
	return nil
}

func (m *memStore) InsertVersion(_ context.Context, v *model.ProjectVersion) error {
	m.versions = append(m.versions, *v)
	return nil
}

func (m *memStore) CurrentVersion(_ context.Context, projectID uuid.UUID) (*model.ProjectVersion, error) {
	var current *model.ProjectVersion
	for i := range m.versions {
		v := m.versions[i]
		if v.ProjectID != projectID {
			continue
		}
		if current == nil || v.VersionNumber > current.VersionNumber {
			copied := v
			current = &copied
		}
	}
	if current == nil {
		return nil, ErrNotFound
	}
	return current, nil
}

func (m *memStore) CurrentVersionForUpdate(ctx context.Context, projectID uuid.UUID) (*model.ProjectVersion, error) {
	return m.CurrentVersion(ctx, projectID)
}

func (m *memStore) GetVersion(_ context.Context, id uuid.UUID) (*model.ProjectVersion, error) {
	for i := range m.versions {
		if m.versions[i].ID == id {
			v := m.versions[i]
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) SaveVersion(_ context.Context, v *model.ProjectVersion) error {
	for i := range m.versions {
		if m.versions[i].ID == v.ID {
			m.versions[i] = *v
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) ListTeamMembers(_ context.Context, versionID uuid.UUID) ([]model.TeamMember, error) {
	var out []model.TeamMember
	for _, tm := range m.members {
		if tm.VersionID == versionID {
			out = append(out, tm)
		}
	}
	return out, nil
}

func (m *memStore) GetTeamMember(_ context.Context, id uuid.UUID) (*model.TeamMember, error) {
	for i := range m.members {
		if m.members[i].ID == id {
			tm := m.members[i]
			return &tm, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) InsertTeamMember(_ context.Context, tm *model.TeamMember) error {
	m.members = append(m.members, *tm)
	return nil
}

func (m *memStore) UpdateTeamMember(_ context.Context, tm *model.TeamMember) error {
	for i := range m.members {
		if m.members[i].ID == tm.ID {
			m.members[i] = *tm
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteTeamMember(_ context.Context, id uuid.UUID) error {
	for i := range m.members {
		if m.members[i].ID == id {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) ListFeatures(_ context.Context, versionID uuid.UUID) ([]model.Feature, error) {
	var out []model.Feature
	for _, f := range m.features {
		if f.VersionID == versionID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) GetFeature(_ context.Context, id uuid.UUID) (*model.Feature, error) {
	for i := range m.features {
		if m.features[i].ID == id {
			f := m.features[i]
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) InsertFeature(_ context.Context, f *model.Feature) error {
	m.features = append(m.features, *f)
	return nil
}

func (m *memStore) UpdateFeature(_ context.Context, f *model.Feature) error {
	for i := range m.features {
		if m.features[i].ID == f.ID {
			m.features[i] = *f
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteFeature(_ context.Context, id uuid.UUID) error {
	for i := range m.features {
		if m.features[i].ID == id {
			m.features = append(m.features[:i], m.features[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) InsertEstimationHistory(_ context.Context, h *model.EstimationHistory) error {
	m.history = append(m.history, *h)
	return nil
}

func (m *memStore) InsertJustification(_ context.Context, j *model.JustificationLog) error {
	m.justifications = append(m.justifications, *j)
	return nil
}

func (m *memStore) ListSprintPlanRows(_ context.Context, versionID uuid.UUID) ([]model.SprintPlanRow, error) {
	return append([]model.SprintPlanRow(nil), m.plans[versionID]...), nil
}

func (m *memStore) ReplaceSprintPlan(_ context.Context, versionID uuid.UUID, rows []model.SprintPlanRow) error {
	m.plans[versionID] = append([]model.SprintPlanRow(nil), rows...)
	return nil
}

func (m *memStore) ListRoleRates(_ context.Context) ([]model.RoleDefaultRate, error) {
	return append([]model.RoleDefaultRate(nil), m.rates...), nil
}

func (m *memStore) UpsertRoleRate(_ context.Context, r *model.RoleDefaultRate) error {
	key := model.NewRole(r.Role).Key()
	for i := range m.rates {
		if model.NewRole(m.rates[i].Role).Key() == key {
			r.ID = m.rates[i].ID
			m.rates[i] = *r
			return nil
		}
	}
	m.rates = append(m.rates, *r)
	return nil
}

func (m *memStore) DeleteRoleRate(_ context.Context, id uuid.UUID) error {
	for i := range m.rates {
		if m.rates[i].ID == id {
			m.rates = append(m.rates[:i], m.rates[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) AppendAudit(_ context.Context, entry *model.AuditLog) error {
	m.audits = append(m.audits, *entry)
	return nil
}

func (m *memStore) ListAudit(_ context.Context, projectID uuid.UUID) ([]model.AuditLog, error) {
	var out []model.AuditLog
	for _, a := range m.audits {
		if a.ProjectID != nil && *a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) InsertFeatureDrafts(_ context.Context, drafts []model.FeatureDraft) error {
	m.featureDrafts = append(m.featureDrafts, drafts...)
	return nil
}

func (m *memStore) ListFeatureDrafts(_ context.Context, versionID uuid.UUID) ([]model.FeatureDraft, error) {
	var out []model.FeatureDraft
	for _, d := range m.featureDrafts {
		if d.VersionID == versionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) GetFeatureDraft(_ context.Context, id uuid.UUID) (*model.FeatureDraft, error) {
	for i := range m.featureDrafts {
		if m.featureDrafts[i].ID == id {
			d := m.featureDrafts[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) MarkFeatureDraftPromoted(_ context.Context, id uuid.UUID) error {
	for i := range m.featureDrafts {
		if m.featureDrafts[i].ID == id {
			m.featureDrafts[i].Promoted = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) InsertTeamMemberDrafts(_ context.Context, drafts []model.TeamMemberDraft) error {
	m.teamDrafts = append(m.teamDrafts, drafts...)
	return nil
}

func (m *memStore) ListTeamMemberDrafts(_ context.Context, versionID uuid.UUID) ([]model.TeamMemberDraft, error) {
	var out []model.TeamMemberDraft
	for _, d := range m.teamDrafts {
		if d.VersionID == versionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) GetTeamMemberDraft(_ context.Context, id uuid.UUID) (*model.TeamMemberDraft, error) {
	for i := range m.teamDrafts {
		if m.teamDrafts[i].ID == id {
			d := m.teamDrafts[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) MarkTeamMemberDraftPromoted(_ context.Context, id uuid.UUID) error {
	for i := range m.teamDrafts {
		if m.teamDrafts[i].ID == id {
			m.teamDrafts[i].Promoted = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) InsertCurrencySnapshot(_ context.Context, s *model.CurrencySnapshot) error {
	m.currencies = append(m.currencies, *s)
	return nil
}

func (m *memStore) LatestCurrencySnapshot(_ context.Context, projectID uuid.UUID) (*model.CurrencySnapshot, error) {
	for i := len(m.currencies) - 1; i >= 0; i-- {
		if m.currencies[i].ProjectID == projectID {
			s := m.currencies[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}
