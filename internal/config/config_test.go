package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestApplyEnvOverridesFile(t *testing.T) {
	cfg := Default()
	applyEnv(cfg, envMap(map[string]string{
		"SERVER_PORT":        "9090",
		"DATABASE_URL":       "postgres://u:p@localhost/db",
		"JWT_TTL_MINUTES":    "not-a-number",
		"PAYU_MERCHANT_KEY":  "key",
		"PAYU_MERCHANT_SALT": "salt",
		"COUPONS":            "vig100:100, SAVE7X3:150,broken",
	}))

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Database.DSN)
	assert.Equal(t, Default().JWT.TTL, cfg.JWT.TTL, "bad numbers keep the default")
	assert.Equal(t, "key", cfg.PayU.MerchantKey)
	assert.Equal(t, map[string]string{"VIG100": "100", "SAVE7X3": "150"}, cfg.Coupons)
}

func TestFillDerived(t *testing.T) {
	cfg := Default()
	cfg.Server.FrontendURL = "https://apply.example.edu/"
	cfg.Email.SMTPUsername = "mailer@example.edu"
	cfg.Coupons = map[string]string{" free ": "1000"}
	cfg.fillDerived()

	assert.Equal(t, "mailer@example.edu", cfg.Email.FromEmail)
	assert.Equal(t, "https://apply.example.edu/dashboard?payment=success", cfg.PayU.SuccessRedirect)
	assert.Equal(t, "https://apply.example.edu/application?payment=failed", cfg.PayU.FailureRedirect)
	assert.Equal(t, "1000", cfg.Coupons["FREE"])
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.DSN = "postgres://localhost/db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with dsn", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unsupported database driver"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "database url is required"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, "unsupported storage type"},
		{"production needs secret", func(c *Config) { c.Server.Env = "production" }, "jwt secret"},
		{"zero upload size", func(c *Config) { c.Upload.MaxSize = 0 }, "max_size"},
		{"short otp", func(c *Config) { c.OTP.Length = 2 }, "otp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 8100
  env: production
  public_base_url: https://api.example.edu/
database:
  driver: sqlite
  url: file:test.db
jwt:
  secret: s3cret
coupons:
  vig100: "100"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("COUPONS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "100", cfg.Coupons["VIG100"])
	assert.Equal(t, "https://api.example.edu/api/payu/success", cfg.CallbackURL("success"))
	assert.Equal(t, "0.0.0.0:8100", cfg.Addr())
	assert.Equal(t, 5, cfg.OTP.MaxAttempts, "unset keys keep their defaults")
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse config file")
}
