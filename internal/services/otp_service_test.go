package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/email"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/testutil"
	"admissions_backend/pkg/apperrors"
)

func otpService(t *testing.T, env *testEnv) *OTPServiceImpl {
	t.Helper()
	svc, ok := env.container.OTPService.(*OTPServiceImpl)
	require.True(t, ok)
	return svc
}

func TestOTPIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)
	ctx := context.Background()
	target := NormalizeTarget("", "  Student@Example.com ", "")

	code, err := svc.Issue(ctx, env.db, target)
	require.NoError(t, err)
	assert.Len(t, code, env.cfg.OTP.Length)
	assert.Equal(t, 1, env.sentTo("student@example.com"))

	require.NoError(t, svc.Verify(ctx, env.db, target, code))

	err = svc.Verify(ctx, env.db, target, code)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOTP), "second use must fail, got %v", err)
}

func TestOTPReissueReplacesOutstandingCode(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)
	ctx := context.Background()
	target := repositories.OTPTarget{Email: "a@example.com"}

	first, err := svc.Issue(ctx, env.db, target)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, env.db, target)
	require.NoError(t, err)

	var outstanding int64
	require.NoError(t, env.db.Model(&models.OTP{}).Where("email = ? AND is_used = ?", target.Email, false).Count(&outstanding).Error)
	assert.EqualValues(t, 1, outstanding)

	if first != second {
		assert.Error(t, svc.Verify(ctx, env.db, target, first))
	}
	assert.NoError(t, svc.Verify(ctx, env.db, target, second))
}

func TestOTPExpiredCodeIsRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)
	ctx := context.Background()
	target := repositories.OTPTarget{Email: "late@example.com"}

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	code, err := svc.Issue(ctx, env.db, target)
	require.NoError(t, err)

	svc.now = time.Now
	err = svc.Verify(ctx, env.db, target, code)
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))
}

func TestOTPAttemptsBurnTheCode(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)
	ctx := context.Background()
	target := repositories.OTPTarget{Phone: "9876543210"}

	code, err := svc.Issue(ctx, env.db, target)
	require.NoError(t, err)
	assert.Empty(t, env.mail.Sent(), "phone codes are not mailed")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 1; i < env.cfg.OTP.MaxAttempts; i++ {
		err := svc.Verify(ctx, env.db, target, wrong)
		require.True(t, errors.Is(err, apperrors.ErrInvalidOTP), "attempt %d: %v", i, err)
	}
	err = svc.Verify(ctx, env.db, target, wrong)
	assert.True(t, errors.Is(err, apperrors.ErrTooManyAttempts))

	err = svc.Verify(ctx, env.db, target, code)
	assert.Error(t, err, "a burned code stays unusable")
}

func TestOTPRequiresTarget(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)

	_, err := svc.Issue(context.Background(), env.db, repositories.OTPTarget{})
	assert.Equal(t, http.StatusBadRequest, testutil.StatusOf(err))
}

func TestOTPPurgeStale(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	_, err := svc.Issue(ctx, env.db, repositories.OTPTarget{Email: "old@example.com"})
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.Issue(ctx, env.db, repositories.OTPTarget{Email: "new@example.com"})
	require.NoError(t, err)

	n, err := svc.PurgeStale(ctx, env.db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestNormalizeTarget(t *testing.T) {
	assert.Equal(t, repositories.OTPTarget{Email: "x@y.com"}, NormalizeTarget("", " X@Y.com", "123"))
	assert.Equal(t, repositories.OTPTarget{Phone: "9876543210"}, NormalizeTarget("", "", "98765 432-10"))

	// an explicit channel wins over the email-first default
	assert.Equal(t, repositories.OTPTarget{Phone: "9876543210"}, NormalizeTarget("phone", "x@y.com", "98765 43210"))
	assert.Equal(t, repositories.OTPTarget{Email: "x@y.com"}, NormalizeTarget("Email", "x@y.com", "9876543210"))
	assert.Equal(t, repositories.OTPTarget{}, NormalizeTarget("phone", "x@y.com", ""))
}

type failingProvider struct{}

func (failingProvider) Send(context.Context, *email.Email) error { return errors.New("smtp down") }
func (failingProvider) Validate() error                          { return nil }
func (failingProvider) Name() string                             { return "failing" }

func TestOTPFailedDeliveryKeepsPreviousCode(t *testing.T) {
	env := newTestEnv(t)
	svc := otpService(t, env)
	ctx := context.Background()
	target := NormalizeTarget("", "retry@example.com", "")

	first, err := svc.Issue(ctx, env.db, target)
	require.NoError(t, err)

	working := svc.mailer
	svc.mailer = email.NewMailer(failingProvider{}, nil, "Test Admissions")
	_, err = svc.Issue(ctx, env.db, target)
	assert.True(t, errors.Is(err, apperrors.ErrOTPDelivery), "got %v", err)
	svc.mailer = working

	assert.NoError(t, svc.Verify(ctx, env.db, target, first), "the undelivered code must not replace the old one")
}
