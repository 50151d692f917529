package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/auth"
	"admissions_backend/internal/config"
	"admissions_backend/internal/models"
	"admissions_backend/internal/services/dto"
	"admissions_backend/internal/testutil"
)

func TestVerifyOTPForUnknownTargetReturnsNoToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sent, err := env.container.AuthService.SendOTP(ctx, env.db, &dto.SendOTPRequest{Email: "new@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, sent.Code, "codes are echoed in test env")

	resp, err := env.container.AuthService.VerifyOTP(ctx, env.db, &dto.VerifyOTPRequest{Email: "new@example.com", Code: sent.Code})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.AccessToken)
}

func TestVerifyOTPForStudentIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "s@example.com")

	sent, err := env.container.AuthService.SendOTP(ctx, env.db, &dto.SendOTPRequest{Email: user.Email})
	require.NoError(t, err)

	resp, err := env.container.AuthService.VerifyOTP(ctx, env.db, &dto.VerifyOTPRequest{Email: user.Email, Code: sent.Code})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := env.tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, auth.RoleStudent, claims.Role)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	assert.Equal(t, models.LoginCompleted, stored.LoginStatus)
}

func TestVerifyOTPByFormattedPhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := registerRequest("phone-login@example.com")
	req.Phone = "98765 43210"
	view, err := env.container.StudentService.Register(ctx, env.db, req)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", view.Phone)

	sent, err := env.container.AuthService.SendOTP(ctx, env.db, &dto.SendOTPRequest{
		Type: "phone", Email: req.Email, Phone: "98765-43210",
	})
	require.NoError(t, err)
	assert.Zero(t, env.sentTo(req.Email), "the phone channel was requested")

	resp, err := env.container.AuthService.VerifyOTP(ctx, env.db, &dto.VerifyOTPRequest{
		Type: "phone", Phone: "98765 43210", Code: sent.Code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := env.tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, view.ID, claims.UserID)
}

func TestLoginWithOTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "login@example.com")

	_, err := env.container.AuthService.Login(ctx, env.db, &dto.LoginRequest{Email: user.Email, OTPCode: "123456"})
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err), "no code issued yet")

	sent, err := env.container.AuthService.SendOTP(ctx, env.db, &dto.SendOTPRequest{Email: user.Email})
	require.NoError(t, err)
	token, err := env.container.AuthService.Login(ctx, env.db, &dto.LoginRequest{Email: user.Email, OTPCode: sent.Code})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, user.Email, token.User.Email)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.container.AuthService.SeedAdmin(ctx, env.db, config.AdminConfig{
		Email:    "admin@example.com",
		Password: "admin-password",
	}))
	// seeding twice is harmless
	require.NoError(t, env.container.AuthService.SeedAdmin(ctx, env.db, config.AdminConfig{
		Email:    "admin@example.com",
		Password: "other-password",
	}))

	token, err := env.container.AuthService.AdminLogin(ctx, env.db, &dto.AdminLoginRequest{Email: "admin@example.com", Password: "admin-password"})
	require.NoError(t, err)
	claims, err := env.tokens.Parse(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	_, err = env.container.AuthService.AdminLogin(ctx, env.db, &dto.AdminLoginRequest{Email: "admin@example.com", Password: "other-password"})
	assert.Equal(t, http.StatusUnauthorized, testutil.StatusOf(err))
}

func TestAdminLoginRejectsStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "student@example.com")
	require.NoError(t, env.container.AuthService.ChangePassword(ctx, env.db, user.ID, &dto.ChangePasswordRequest{NewPassword: "student-pass-1"}))

	_, err := env.container.AuthService.AdminLogin(ctx, env.db, &dto.AdminLoginRequest{Email: user.Email, Password: "student-pass-1"})
	assert.Equal(t, http.StatusUnauthorized, testutil.StatusOf(err))

	token, err := env.container.AuthService.PasswordLogin(ctx, env.db, &dto.PasswordLoginRequest{Email: user.Email, Password: "student-pass-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateStudent(t, env.db, "pw@example.com")

	require.NoError(t, env.container.AuthService.ChangePassword(ctx, env.db, user.ID, &dto.ChangePasswordRequest{NewPassword: "first-pass-1"}))

	err := env.container.AuthService.ChangePassword(ctx, env.db, user.ID, &dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "second-pass-2"})
	assert.Equal(t, http.StatusUnauthorized, testutil.StatusOf(err))

	require.NoError(t, env.container.AuthService.ChangePassword(ctx, env.db, user.ID, &dto.ChangePasswordRequest{OldPassword: "first-pass-1", NewPassword: "second-pass-2"}))
}
