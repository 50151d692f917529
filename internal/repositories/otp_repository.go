package repositories

import (
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

// OTPTarget identifies who a code was sent to. Exactly one field is set.
type OTPTarget struct {
	Email string
	Phone string
}

func (t OTPTarget) scope(db *gorm.DB) *gorm.DB {
	if t.Email != "" {
		return db.Where("email = ?", t.Email)
	}
	return db.Where("phone = ?", t.Phone)
}

type OTPRepository interface {
	Create(db *gorm.DB, otp *models.OTP) error
	DeleteUnused(db *gorm.DB, target OTPTarget) error
	FindActiveForUpdate(db *gorm.DB, target OTPTarget, now time.Time) (*models.OTP, error)
	Save(db *gorm.DB, otp *models.OTP) error
	DeleteStale(db *gorm.DB, before time.Time) (int64, error)
}

type OTPRepositoryImpl struct{}

func NewOTPRepository() OTPRepository {
	return &OTPRepositoryImpl{}
}

func (r *OTPRepositoryImpl) Create(db *gorm.DB, otp *models.OTP) error {
	return db.Create(otp).Error
}

func (r *OTPRepositoryImpl) DeleteUnused(db *gorm.DB, target OTPTarget) error {
	return target.scope(db).Where("is_used = ?", false).Delete(&models.OTP{}).Error
}

// FindActiveForUpdate returns the newest unused, unexpired code for the target.
func (r *OTPRepositoryImpl) FindActiveForUpdate(db *gorm.DB, target OTPTarget, now time.Time) (*models.OTP, error) {
	var otp models.OTP
	err := target.scope(forUpdate(db)).
		Where("is_used = ? AND expires_at > ?", false, now).
		Order("id DESC").
		First(&otp).Error
	if err != nil {
		return nil, notFound(err, ErrOTPNotFound)
	}
	return &otp, nil
}

func (r *OTPRepositoryImpl) Save(db *gorm.DB, otp *models.OTP) error {
	return db.Save(otp).Error
}

// DeleteStale removes codes that expired or were consumed before the cutoff.
func (r *OTPRepositoryImpl) DeleteStale(db *gorm.DB, before time.Time) (int64, error) {
	res := db.Where("expires_at < ? OR (is_used = ? AND created_at < ?)", before, true, before).
		Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}
