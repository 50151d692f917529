package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"admissions_backend/internal/auth"
	"admissions_backend/internal/config"
	"admissions_backend/internal/email"
	"admissions_backend/internal/storage"
	"admissions_backend/internal/testutil"
)

type testEnv struct {
	cfg       *config.Config
	db        *gorm.DB
	mail      *email.LogProvider
	store     *storage.LocalStorage
	tokens    *auth.TokenManager
	container *ServiceContainer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testutil.Config()
	db := testutil.NewTestDB(t)

	store, err := storage.NewLocalStorage(config.StorageConfig{Type: "local", BasePath: t.TempDir(), BaseURL: "/uploads"})
	require.NoError(t, err)

	mail := email.NewLogProvider(nil)
	tokens := auth.NewTokenManager(auth.TokenConfig{Secret: cfg.JWT.Secret, TTL: time.Hour, Issuer: "test"})

	return &testEnv{
		cfg:       cfg,
		db:        db,
		mail:      mail,
		store:     store,
		tokens:    tokens,
		container: NewServiceContainer(cfg, store, email.NewMailer(mail, nil, "Test Admissions"), tokens),
	}
}

func (e *testEnv) sentTo(addr string) int {
	n := 0
	for _, m := range e.mail.Sent() {
		for _, to := range m.To {
			if to == addr {
				n++
			}
		}
	}
	return n
}
