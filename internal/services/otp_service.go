package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/config"
	"admissions_backend/internal/email"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/pkg/apperrors"
)

const (
	otpPurposeLogin = "login"

	otpChannelEmail = "email"
	otpChannelPhone = "phone"
)

type OTPService interface {
	// Issue replaces any outstanding code for the target and delivers a new one.
	Issue(ctx context.Context, db *gorm.DB, target repositories.OTPTarget) (string, error)

	// Verify consumes the outstanding code when it matches.
	Verify(ctx context.Context, db *gorm.DB, target repositories.OTPTarget, code string) error

	PurgeStale(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}

type OTPServiceImpl struct {
	repo   repositories.OTPRepository
	mailer *email.Mailer
	cfg    config.OTPConfig
	now    func() time.Time
}

func NewOTPService(repo repositories.OTPRepository, mailer *email.Mailer, cfg config.OTPConfig) *OTPServiceImpl {
	return &OTPServiceImpl{repo: repo, mailer: mailer, cfg: cfg, now: time.Now}
}

// NormalizeTarget picks the delivery channel and normalizes its address. An explicit
// channel wins; otherwise email is preferred when both are present.
func NormalizeTarget(channel, emailAddr, phone string) repositories.OTPTarget {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case otpChannelPhone:
		return repositories.OTPTarget{Phone: models.NormalizePhone(phone)}
	case otpChannelEmail:
		return repositories.OTPTarget{Email: models.NormalizeEmail(emailAddr)}
	}
	if e := models.NormalizeEmail(emailAddr); e != "" {
		return repositories.OTPTarget{Email: e}
	}
	return repositories.OTPTarget{Phone: models.NormalizePhone(phone)}
}

func generateCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// Issue delivers first and only then swaps the stored code, so a failed send leaves the
// previous code usable.
func (s *OTPServiceImpl) Issue(ctx context.Context, db *gorm.DB, target repositories.OTPTarget) (string, error) {
	if target.Email == "" && target.Phone == "" {
		return "", apperrors.NewBadRequestError("email or phone is required")
	}

	code, err := generateCode(s.cfg.Length)
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	if target.Email != "" {
		if err := s.mailer.SendOTP(ctx, target.Email, code, s.cfg.TTLMinutes); err != nil {
			logger.CtxWithError(ctx, "failed to deliver otp", err, "email", target.Email)
			return "", apperrors.ErrOTPDelivery.WithError(err)
		}
	} else {
		// no SMS gateway is wired; the code is only logged
		logger.CtxInfo(ctx, "sms delivery not configured, otp logged", "phone", target.Phone, "code", code)
	}

	otp := &models.OTP{
		Email:     target.Email,
		Phone:     target.Phone,
		Code:      code,
		Purpose:   otpPurposeLogin,
		ExpiresAt: s.now().Add(s.cfg.TTL()),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteUnused(tx, target); err != nil {
			return err
		}
		return s.repo.Create(tx, otp)
	})
	if err != nil {
		return "", apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "otp issued", "target", describe(target), "expires_at", otp.ExpiresAt)
	return code, nil
}

func (s *OTPServiceImpl) Verify(ctx context.Context, db *gorm.DB, target repositories.OTPTarget, code string) error {
	if target.Email == "" && target.Phone == "" {
		return apperrors.NewBadRequestError("email or phone is required")
	}

	// The outcome is carried out of the transaction so attempt counters still commit on a mismatch.
	var outcome error
	err := db.Transaction(func(tx *gorm.DB) error {
		otp, err := s.repo.FindActiveForUpdate(tx, target, s.now())
		if err != nil {
			if errors.Is(err, repositories.ErrOTPNotFound) {
				outcome = apperrors.ErrInvalidOTP
				return nil
			}
			return err
		}

		if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(strings.TrimSpace(code))) == 1 {
			otp.IsUsed = true
			return s.repo.Save(tx, otp)
		}

		otp.Attempts++
		outcome = apperrors.ErrInvalidOTP
		if otp.Attempts >= s.cfg.MaxAttempts {
			otp.IsUsed = true
			outcome = apperrors.ErrTooManyAttempts
		}
		return s.repo.Save(tx, otp)
	})
	if err != nil {
		return apperrors.DatabaseError(err)
	}

	if outcome != nil {
		logger.CtxWarn(ctx, "otp verification failed", "target", describe(target), "reason", outcome.Error())
		return outcome
	}
	return nil
}

func (s *OTPServiceImpl) PurgeStale(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	n, err := s.repo.DeleteStale(db.WithContext(ctx), before)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return n, nil
}

func describe(t repositories.OTPTarget) string {
	if t.Email != "" {
		return fmt.Sprintf("email:%s", t.Email)
	}
	return fmt.Sprintf("phone:%s", t.Phone)
}
