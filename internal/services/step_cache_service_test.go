package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/services/dto"
	"admissions_backend/internal/testutil"
)

func TestSaveStepMergesSteps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.container.StepCacheService

	saved, err := svc.SaveStep(ctx, env.db, "personal", &dto.StepPayload{
		SessionID: "sess-1",
		Data:      map[string]any{"name": "Asha"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	saved, err = svc.SaveStep(ctx, env.db, "", &dto.StepPayload{
		SessionID: "sess-1",
		UserID:    "asha@example.com",
		Step:      "address",
		Data:      map[string]any{"city": "Guntur"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)

	// a step written again replaces its data
	_, err = svc.SaveStep(ctx, env.db, "personal", &dto.StepPayload{
		SessionID: "sess-1",
		Data:      map[string]any{"name": "Asha Rao"},
	})
	require.NoError(t, err)

	cached, err := svc.Get(ctx, env.db, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", cached.UserID)
	assert.Equal(t, 3, cached.Version)
	assert.Equal(t, map[string]any{"name": "Asha Rao"}, cached.Steps["personal"])
	assert.Equal(t, map[string]any{"city": "Guntur"}, cached.Steps["address"])

	list, err := svc.List(ctx, env.db)
	require.NoError(t, err)
	assert.Len(t, list.CachedApplications, 1)
}

func TestSaveStepVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.container.StepCacheService
	zero := 0

	_, err := svc.SaveStep(ctx, env.db, "personal", &dto.StepPayload{SessionID: "s", Data: map[string]any{}, Version: &zero})
	require.NoError(t, err)

	// a second writer still holding version 0 loses
	_, err = svc.SaveStep(ctx, env.db, "address", &dto.StepPayload{SessionID: "s", Data: map[string]any{}, Version: &zero})
	assert.Equal(t, http.StatusConflict, testutil.StatusOf(err))

	one := 1
	saved, err := svc.SaveStep(ctx, env.db, "address", &dto.StepPayload{SessionID: "s", Data: map[string]any{}, Version: &one})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
}

func TestSaveStepRequiresStepName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.container.StepCacheService.SaveStep(context.Background(), env.db, " ", &dto.StepPayload{SessionID: "s", Data: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))
}

func TestGetMissingSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.container.StepCacheService.Get(context.Background(), env.db, "nope")
	assert.Equal(t, http.StatusNotFound, testutil.StatusOf(err))
}
