package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/estimation-engine/internal/engine"
	"github.com/nurpe/estimation-engine/internal/model"
)

func testActor() model.Principal {
	return model.Principal{UserID: uuid.New(), Roles: []string{"delivery_manager"}}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// newProject seeds a store with one fixed-price project and returns its id
// together with the current version id.
func newProject(t *testing.T, store *memStore, actor model.Principal) (uuid.UUID, uuid.UUID) {
	t.Helper()
	projects := NewProjectService(store, engine.StandardDefaults())
	p, err := projects.Create(context.Background(), actor, ProjectInput{
		Name:         "Billing Replatform",
		RevenueModel: model.RevenueModelFixed,
		Currency:     "usd",
		FixedRevenue: decPtr("250000"),
	})
	require.NoError(t, err)
	v, err := store.CurrentVersion(context.Background(), p.ID)
	require.NoError(t, err)
	return p.ID, v.ID
}

func winVersion(t *testing.T, store *memStore, actor model.Principal, projectID, versionID uuid.UUID) {
	t.Helper()
	versions := NewVersionService(store)
	ctx := context.Background()
	for _, status := range []model.VersionStatus{model.StatusReview, model.StatusSubmitted, model.StatusWon} {
		_, err := versions.Transition(ctx, actor, projectID, versionID, status)
		require.NoError(t, err)
	}
}

func TestTransitionWalksTheLifecycle(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)

	winVersion(t, store, actor, projectID, versionID)

	v, err := store.CurrentVersion(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWon, v.Status)
	assert.True(t, v.IsLocked)
	require.NotNil(t, v.LockedByUserID)
	assert.Equal(t, actor.UserID, *v.LockedByUserID)
}

func TestTransitionRejectsSkippedStates(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)

	_, err := NewVersionService(store).Transition(context.Background(), actor, projectID, versionID, model.StatusWon)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransitionWithStaleVersionID(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, _ := newProject(t, store, actor)

	_, err := NewVersionService(store).Transition(context.Background(), actor, projectID, uuid.New(), model.StatusReview)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestLockedVersionBlocksEdits(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)
	winVersion(t, store, actor, projectID, versionID)

	team := NewTeamService(store)
	_, err := team.Add(context.Background(), actor, projectID, TeamMemberInput{
		Role:           "Developer",
		CostRatePerDay: decPtr("400"),
		UtilizationPct: dec("100"),
	})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestUnlockRequiresReason(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)
	winVersion(t, store, actor, projectID, versionID)

	_, err := NewVersionService(store).Unlock(context.Background(), actor, projectID, versionID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnlockReopensEditingAndKeepsWon(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)
	winVersion(t, store, actor, projectID, versionID)

	ctx := context.Background()
	versions := NewVersionService(store)
	unlocked, err := versions.Unlock(ctx, actor, projectID, versionID, "client renegotiation")
	require.NoError(t, err)
	assert.Equal(t, model.StatusWon, unlocked.Status)
	assert.False(t, unlocked.IsLocked)

	team := NewTeamService(store)
	_, err = team.Add(ctx, actor, projectID, TeamMemberInput{
		Role:           "QA Engineer",
		CostRatePerDay: decPtr("300"),
		UtilizationPct: dec("50"),
	})
	require.NoError(t, err)

	trail, err := versions.AuditTrail(ctx, projectID)
	require.NoError(t, err)
	var unlockEntry *model.AuditLog
	var addEntry *model.AuditLog
	for i := range trail {
		switch trail[i].Action {
		case "unlock":
			unlockEntry = &trail[i]
		case "add_team_member":
			addEntry = &trail[i]
		}
	}
	require.NotNil(t, unlockEntry)
	require.NotNil(t, unlockEntry.Reason)
	assert.Equal(t, "client renegotiation", *unlockEntry.Reason)
	require.NotNil(t, addEntry)
}

func TestLockOnlyFromSubmitted(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)

	_, err := NewVersionService(store).Lock(context.Background(), actor, projectID, versionID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateRejectsNegativeBuffers(t *testing.T) {
	store := newMemStore()
	actor := testActor()
	projectID, versionID := newProject(t, store, actor)

	_, err := NewVersionService(store).Update(context.Background(), actor, projectID, versionID, VersionUpdateInput{
		ContingencyPct: decPtr("-5"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
