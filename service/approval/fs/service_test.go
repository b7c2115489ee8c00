package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/dao"
)

func newStore(t *testing.T) *Service {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewRequiresBasePath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestRequestRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	expires := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	created, err := store.CreateRequest(ctx, &approval.Request{
		RunID:     "run-1",
		StepID:    "step-apply",
		TenantID:  "acme",
		Approvers: []string{"alice", "bob"},
		Policy:    approval.PolicyAll,
		ExpiresAt: &expires,
		EscalationPolicy: &approval.EscalationPolicy{
			TimeoutMs: 60_000,
			Action:    approval.ActionEscalate,
		},
		Context: approval.Context{RiskLevel: approval.RiskHigh},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	loaded, err := store.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, created.Approvers, loaded.Approvers)
	assert.Equal(t, approval.PolicyAll, loaded.Policy)
	assert.Equal(t, approval.StatusPending, loaded.Status)
	require.NotNil(t, loaded.ExpiresAt)
	assert.True(t, expires.Equal(*loaded.ExpiresAt))
	require.NotNil(t, loaded.EscalationPolicy)
	assert.Equal(t, approval.ActionEscalate, loaded.EscalationPolicy.Action)
}

func TestMutationsSurviveReload(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	created, err := store.CreateRequest(ctx, &approval.Request{
		RunID:     "run-1",
		StepID:    "step-1",
		Approvers: []string{"alice"},
		Policy:    approval.PolicyAny,
	})
	require.NoError(t, err)

	require.NoError(t, store.AddDecision(ctx, created.ID, approval.Decision{
		Approved:  true,
		DecidedBy: "alice",
		DecidedAt: time.Now().UTC(),
	}))

	expiresAt := time.Now().Add(time.Hour).UTC()
	count, err := store.Escalate(ctx, created.ID, []string{"alice", "carol"}, expiresAt)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	loaded, err := store.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Decisions, 1)
	assert.Equal(t, approval.StatusEscalated, loaded.Status)
	assert.Equal(t, []string{"alice", "carol"}, loaded.Approvers)
	assert.Equal(t, 1, loaded.EscalationCount)
}

func TestMutationsOnUnknownID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.UpdateStatus(ctx, "missing", approval.StatusApproved), dao.ErrNotFound)
	_, err := store.SetResolved(ctx, "missing", approval.StatusTimeout)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestResolvedRequestIsFrozen(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	created, err := store.CreateRequest(ctx, &approval.Request{
		RunID:     "run-1",
		StepID:    "step-1",
		Approvers: []string{"alice"},
		Policy:    approval.PolicyAny,
	})
	require.NoError(t, err)

	first, err := store.SetResolved(ctx, created.ID, approval.StatusApproved)
	require.NoError(t, err)
	require.NotNil(t, first.ResolvedAt)

	err = store.AddDecision(ctx, created.ID, approval.Decision{DecidedBy: "bob"})
	assert.ErrorIs(t, err, approval.ErrAlreadyResolved)

	second, err := store.SetResolved(ctx, created.ID, approval.StatusTimeout)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, second.Status)
	assert.True(t, first.ResolvedAt.Equal(*second.ResolvedAt))
}

func TestListing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, seed := range []struct {
		runID, stepID, tenantID string
	}{
		{"run-1", "step-1", "acme"},
		{"run-1", "step-2", "acme"},
		{"run-2", "step-1", "globex"},
	} {
		_, err := store.CreateRequest(ctx, &approval.Request{
			RunID:     seed.runID,
			StepID:    seed.stepID,
			TenantID:  seed.tenantID,
			Approvers: []string{"alice"},
			Policy:    approval.PolicyAny,
		})
		require.NoError(t, err)
	}

	byRun, err := store.ListByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, byRun, 2)

	pending, err := store.ListPending(ctx, "globex")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	found, err := store.GetRequestByRunAndStep(ctx, "run-1", "step-2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "step-2", found.StepID)
}
