// Package testutil holds fixtures shared by package tests: an in-memory database,
// a ready config and helpers for seeding students.
package testutil

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"admissions_backend/database"
	"admissions_backend/internal/config"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/pkg/apperrors"
)

const (
	MerchantKey  = "testkey"
	MerchantSalt = "testsalt"
	JWTSecret    = "test-secret"
)

var dbSeq atomic.Int64

func init() {
	logger.InitWithWriter("test", io.Discard)
}

// Config returns a test configuration backed by sqlite with the gateway configured.
func Config() *config.Config {
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Server.PublicBaseURL = "http://api.test"
	cfg.Server.FrontendURL = "http://app.test"
	cfg.Server.CORSOrigins = []string{"http://app.test"}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = ":memory:"
	cfg.JWT.Secret = JWTSecret
	cfg.PayU.MerchantKey = MerchantKey
	cfg.PayU.MerchantSalt = MerchantSalt
	cfg.PayU.SuccessRedirect = "http://app.test/dashboard?payment=success"
	cfg.PayU.FailureRedirect = "http://app.test/application?payment=failed"
	cfg.Coupons = map[string]string{"VIG100": "100", "FREE": "5000"}
	return cfg
}

// NewTestDB opens a private in-memory database with every table migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: name}, "test")
	require.NoError(t, err, "open sqlite")
	require.NoError(t, database.AutoMigrate(db), "migrate")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// StudentOption tweaks a seeded student before it is stored.
type StudentOption func(*models.User)

func Paid() StudentOption {
	return func(u *models.User) {
		u.PaymentStatus = models.UserPaymentSuccess
		u.ApplicationStatus = models.UserApplicationCurrent
	}
}

func Admin(passwordHash string) StudentOption {
	return func(u *models.User) {
		u.IsAdmin = true
		u.PasswordHash = &passwordHash
	}
}

// CreateStudent stores a registered student with an empty draft application.
func CreateStudent(t *testing.T, db *gorm.DB, email string, opts ...StudentOption) *models.User {
	t.Helper()

	user := &models.User{
		FullName:           "Test Student",
		Email:              models.NormalizeEmail(email),
		Phone:              "9000000000",
		IsActive:           true,
		RegistrationStatus: models.RegistrationCompleted,
		LoginStatus:        models.LoginPending,
		PaymentStatus:      models.UserPaymentPending,
		ApplicationStatus:  models.UserApplicationLocked,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error, "create user %s", email)

	if !user.IsAdmin {
		app := &models.Application{
			UserID:      user.ID,
			CurrentStep: 1,
			Status:      models.ApplicationStatusDraft,
		}
		require.NoError(t, db.Create(app).Error, "create application for %s", email)
		user.Application = app
	}
	return user
}

// StatusOf returns the HTTP status an error renders as, or 0 for nil.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode
	}
	return -1
}
