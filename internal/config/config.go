package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	Env           string   `yaml:"env"`
	PublicBaseURL string   `yaml:"public_base_url"` // where the gateway posts callbacks
	FrontendURL   string   `yaml:"frontend_url"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // postgres, mysql, sqlite
	DSN             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
	TimeoutSec   int    `yaml:"timeout_seconds"`
}

// Configured reports whether real delivery is possible. Otherwise mail is only logged.
func (e EmailConfig) Configured() bool {
	return e.SMTPHost != "" && e.SMTPUsername != "" && e.SMTPPassword != ""
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	TTL    int    `yaml:"ttl"` // minutes
	Issuer string `yaml:"issuer"`
}

type StorageConfig struct {
	Type      string `yaml:"type"` // local, s3
	BasePath  string `yaml:"base_path"`
	BaseURL   string `yaml:"base_url"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

type UploadConfig struct {
	MaxSize           int64    `yaml:"max_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type OTPConfig struct {
	Length        int `yaml:"length"`
	TTLMinutes    int `yaml:"ttl_minutes"`
	MaxAttempts   int `yaml:"max_attempts"`
	SendPerMinute int `yaml:"send_per_minute"`
}

func (o OTPConfig) TTL() time.Duration {
	return time.Duration(o.TTLMinutes) * time.Minute
}

type PayUConfig struct {
	MerchantKey     string `yaml:"merchant_key"`
	MerchantSalt    string `yaml:"merchant_salt"`
	Mode            string `yaml:"mode"` // TEST or LIVE
	PaymentURL      string `yaml:"payment_url"`
	SuccessRedirect string `yaml:"success_redirect"`
	FailureRedirect string `yaml:"failure_redirect"`
	ProductInfo     string `yaml:"product_info"`
	ApplicationFee  string `yaml:"application_fee"`
}

type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Database DatabaseConfig    `yaml:"database"`
	Email    EmailConfig       `yaml:"email"`
	JWT      JWTConfig         `yaml:"jwt"`
	Storage  StorageConfig     `yaml:"storage"`
	Upload   UploadConfig      `yaml:"upload"`
	OTP      OTPConfig         `yaml:"otp"`
	PayU     PayUConfig        `yaml:"payu"`
	Admin    AdminConfig       `yaml:"admin"`
	Coupons  map[string]string `yaml:"coupons"` // code -> discount amount
}

// Default returns a config usable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8000,
			Env:           "development",
			PublicBaseURL: "http://localhost:8000",
			FrontendURL:   "http://localhost:5173",
			CORSOrigins:   []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30,
		},
		Email: EmailConfig{
			SMTPPort:   587,
			FromName:   "Vignan Admissions",
			TimeoutSec: 10,
		},
		JWT: JWTConfig{
			TTL:    7 * 24 * 60,
			Issuer: "admissions-backend",
		},
		Storage: StorageConfig{
			Type:     "local",
			BasePath: "./uploads",
			BaseURL:  "/uploads",
		},
		Upload: UploadConfig{
			MaxSize:           5 * 1024 * 1024,
			AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png"},
		},
		OTP: OTPConfig{
			Length:        6,
			TTLMinutes:    10,
			MaxAttempts:   5,
			SendPerMinute: 5,
		},
		PayU: PayUConfig{
			Mode:           "TEST",
			PaymentURL:     "https://test.payu.in/_payment",
			ProductInfo:    "PhD Application Fee",
			ApplicationFee: "1000.00",
		},
		Admin: AdminConfig{
			FullName: "Administrator",
		},
		Coupons: map[string]string{},
	}
}

// Load reads CONFIG_PATH (default config/config.yaml) over the defaults, then applies env overrides.
// A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	f, err := os.Open(configPath)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
	}

	applyEnv(cfg, os.Getenv)
	cfg.fillDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("SERVER_ENV", &cfg.Server.Env)
	num("SERVER_PORT", &cfg.Server.Port)
	str("PUBLIC_BASE_URL", &cfg.Server.PublicBaseURL)
	str("FRONTEND_URL", &cfg.Server.FrontendURL)

	str("DATABASE_URL", &cfg.Database.DSN)
	str("DATABASE_DRIVER", &cfg.Database.Driver)

	str("JWT_SECRET", &cfg.JWT.Secret)
	num("JWT_TTL_MINUTES", &cfg.JWT.TTL)

	str("SMTP_HOST", &cfg.Email.SMTPHost)
	num("SMTP_PORT", &cfg.Email.SMTPPort)
	str("SMTP_USER", &cfg.Email.SMTPUsername)
	str("SMTP_PASSWORD", &cfg.Email.SMTPPassword)
	str("SMTP_FROM_EMAIL", &cfg.Email.FromEmail)
	str("SMTP_FROM_NAME", &cfg.Email.FromName)

	str("PAYU_MERCHANT_KEY", &cfg.PayU.MerchantKey)
	str("PAYU_MERCHANT_SALT", &cfg.PayU.MerchantSalt)
	str("PAYU_MODE", &cfg.PayU.Mode)
	str("PAYU_URL", &cfg.PayU.PaymentURL)
	str("APPLICATION_FEE", &cfg.PayU.ApplicationFee)

	str("STORAGE_TYPE", &cfg.Storage.Type)
	str("UPLOAD_DIR", &cfg.Storage.BasePath)
	str("AWS_S3_BUCKET", &cfg.Storage.Bucket)
	str("AWS_REGION", &cfg.Storage.Region)
	str("AWS_ACCESS_KEY_ID", &cfg.Storage.AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &cfg.Storage.SecretKey)
	str("AWS_S3_ENDPOINT", &cfg.Storage.Endpoint)

	str("ADMIN_EMAIL", &cfg.Admin.Email)
	str("ADMIN_PASSWORD", &cfg.Admin.Password)

	// COUPONS=VIG100:100,SAVE7X3:150
	if v := getenv("COUPONS"); v != "" {
		for _, pair := range strings.Split(v, ",") {
			code, discount, ok := strings.Cut(strings.TrimSpace(pair), ":")
			if ok && code != "" {
				cfg.Coupons[strings.ToUpper(code)] = discount
			}
		}
	}
}

func (c *Config) fillDerived() {
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.SMTPUsername
	}
	if c.PayU.SuccessRedirect == "" {
		c.PayU.SuccessRedirect = strings.TrimRight(c.Server.FrontendURL, "/") + "/dashboard?payment=success"
	}
	if c.PayU.FailureRedirect == "" {
		c.PayU.FailureRedirect = strings.TrimRight(c.Server.FrontendURL, "/") + "/application?payment=failed"
	}
	if c.Coupons == nil {
		c.Coupons = map[string]string{}
	}
	normalized := make(map[string]string, len(c.Coupons))
	for code, discount := range c.Coupons {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = discount
	}
	c.Coupons = normalized
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		problems = append(problems, "database url is required")
	}
	switch c.Storage.Type {
	case "", "local", "s3":
	default:
		problems = append(problems, fmt.Sprintf("unsupported storage type %q", c.Storage.Type))
	}
	if c.JWT.Secret == "" && !c.IsDevelopment() {
		problems = append(problems, "jwt secret is required outside development")
	}
	if c.Upload.MaxSize <= 0 {
		problems = append(problems, "upload max_size must be positive")
	}
	if c.OTP.Length < 4 || c.OTP.TTLMinutes <= 0 || c.OTP.MaxAttempts <= 0 {
		problems = append(problems, "otp length, ttl and max_attempts must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "test"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CallbackURL is the absolute URL the gateway posts outcome to.
func (c *Config) CallbackURL(outcome string) string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/") + "/api/payu/" + outcome
}
