package services

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/models"
	"admissions_backend/internal/services/dto"
	"admissions_backend/internal/testutil"
)

func TestSubmitRequiresPayment(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateStudent(t, env.db, "unpaid@example.com")

	_, err := env.container.ApplicationService.Submit(context.Background(), env.db, user.ID)
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))

	var app models.Application
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&app).Error)
	assert.Equal(t, models.ApplicationStatusDraft, app.Status)
}

func TestSubmitWithoutApplicationIsIncomplete(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateStudent(t, env.db, "noapp@example.com", testutil.Paid())
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Delete(&models.Application{}).Error)

	_, err := env.container.ApplicationService.Submit(context.Background(), env.db, user.ID)
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))
}

func TestSubmitLocksApplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "paid@example.com", testutil.Paid())

	for _, session := range []struct{ id, owner string }{
		{"s-email", user.Email},
		{"s-id", strconv.FormatUint(uint64(user.ID), 10)},
		{"s-other", "someone@else.com"},
	} {
		_, err := env.container.StepCacheService.SaveStep(ctx, env.db, "personal", &dto.StepPayload{
			SessionID: session.id,
			UserID:    session.owner,
			Data:      map[string]any{"name": "x"},
		})
		require.NoError(t, err)
	}

	resp, err := env.container.ApplicationService.Submit(ctx, env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", resp.Status)

	view, err := env.container.ApplicationService.Get(ctx, env.db, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, view.SubmissionDate)
	assert.Equal(t, models.UserApplicationCompleted, loadUser(t, env, user.ID).ApplicationStatus)
	assert.Equal(t, 1, env.sentTo(user.Email))

	var caches []models.ApplicationCache
	require.NoError(t, env.db.Find(&caches).Error)
	require.Len(t, caches, 1, "drafts owned by the student are dropped")
	assert.Equal(t, "s-other", caches[0].SessionID)

	// resubmitting is a no-op
	again, err := env.container.ApplicationService.Submit(ctx, env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", again.Status)

	var messages int64
	require.NoError(t, env.db.Model(&models.Message{}).Where("user_id = ?", user.ID).Count(&messages).Error)
	assert.EqualValues(t, 1, messages)

	dept := "Physics"
	_, err = env.container.ApplicationService.Update(ctx, env.db, user.ID, &dto.ApplicationUpdate{Department: &dept})
	assert.Equal(t, http.StatusConflict, testutil.StatusOf(err))
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "edit@example.com")
	campus := "Vadlamudi (Guntur)"
	step := 3

	view, err := env.container.ApplicationService.Update(ctx, env.db, user.ID, &dto.ApplicationUpdate{
		CampusPreference: &campus,
		CurrentStep:      &step,
		PersonalDetails:  map[string]any{"dob": "1995-04-01", "gender": "F"},
	})
	require.NoError(t, err)
	assert.Equal(t, campus, view.CampusPreference)
	assert.Equal(t, 3, view.CurrentStep)
	assert.Equal(t, "1995-04-01", view.PersonalDetails["dob"])
	assert.Empty(t, view.AcademicDetails)

	dept := "Mathematics"
	view, err = env.container.ApplicationService.Update(ctx, env.db, user.ID, &dto.ApplicationUpdate{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, campus, view.CampusPreference, "fields left out are untouched")
	assert.Equal(t, "F", view.PersonalDetails["gender"])
}

func TestSubmitPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "payload@example.com", testutil.Paid())

	payload := &dto.SubmitPayload{
		Email:        "Payload@Example.com",
		Personal:     map[string]any{"firstName": "Asha"},
		Address:      map[string]any{"city": "Guntur"},
		Education:    map[string]any{"tenth": "92"},
		UGEducation:  map[string]any{"degree": "B.Tech"},
		PGEducation:  map[string]any{"degree": "M.Tech"},
		Documents:    map[string]any{"photo": "uploaded"},
		ExamSchedule: map[string]any{"slot": "morning"},
	}
	resp, err := env.container.ApplicationService.SubmitPayload(ctx, env.db, payload)
	require.NoError(t, err)
	assert.Equal(t, "submitted", resp.Status)

	view, err := env.container.ApplicationService.Get(ctx, env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Guntur"}, view.PersonalDetails["address"])
	assert.Equal(t, map[string]any{"degree": "M.Tech"}, view.AcademicDetails["pgEducation"])
	assert.Equal(t, map[string]any{"slot": "morning"}, view.ResearchDetails["examSchedule"])
}

func TestSubmitPayloadUnknownApplicant(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.container.ApplicationService.SubmitPayload(context.Background(), env.db, &dto.SubmitPayload{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, testutil.StatusOf(err))

	_, err = env.container.ApplicationService.SubmitPayload(context.Background(), env.db, &dto.SubmitPayload{})
	assert.Equal(t, http.StatusNotFound, testutil.StatusOf(err))
}

func TestSubmitPayloadByPhoneRequiresPayment(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateStudent(t, env.db, "phone@example.com")

	_, err := env.container.ApplicationService.SubmitPayload(context.Background(), env.db, &dto.SubmitPayload{Phone: "9000000000"})
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))

	// formatted numbers find the same student
	_, err = env.container.ApplicationService.SubmitPayload(context.Background(), env.db, &dto.SubmitPayload{Phone: "90000 00-000"})
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))
}

func TestSetStatusFollowsReviewWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "review@example.com", testutil.Paid())
	appID := user.Application.ID

	_, err := env.container.AdminService.UpdateApplicationStatus(ctx, env.db, appID, "approved")
	assert.Equal(t, http.StatusConflict, testutil.StatusOf(err), "drafts cannot be approved")

	_, err = env.container.AdminService.UpdateApplicationStatus(ctx, env.db, appID, "granted")
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))

	_, err = env.container.ApplicationService.Submit(ctx, env.db, user.ID)
	require.NoError(t, err)

	view, err := env.container.AdminService.UpdateApplicationStatus(ctx, env.db, appID, "Under_Review")
	require.NoError(t, err)
	assert.Equal(t, "under_review", view.Status)

	view, err = env.container.AdminService.UpdateApplicationStatus(ctx, env.db, appID, "approved")
	require.NoError(t, err)
	assert.Equal(t, "approved", view.Status)

	_, err = env.container.AdminService.UpdateApplicationStatus(ctx, env.db, 9999, "approved")
	assert.Equal(t, http.StatusNotFound, testutil.StatusOf(err))
}
