package repositories

import (
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	FindByIDForUpdate(db *gorm.DB, id uint) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByPhone(db *gorm.DB, phone string) (*models.User, error)
	Save(db *gorm.DB, user *models.User) error
	ListStudents(db *gorm.DB) ([]models.User, error)
	CountStudents(db *gorm.DB) (int64, error)
	RegistrationTrend(db *gorm.DB, since time.Time) ([]DailyCount, error)
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := forUpdate(db).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByPhone(db *gorm.DB, phone string) (*models.User, error) {
	var user models.User
	if err := db.Where("phone = ?", models.NormalizePhone(phone)).Order("id").First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Save(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

func (r *UserRepositoryImpl) ListStudents(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("is_admin = ?", false).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) CountStudents(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Where("is_admin = ?", false).Count(&count).Error
	return count, err
}

// RegistrationTrend buckets student sign-ups per calendar day. Grouping happens in Go
// so the same code runs on every supported dialect.
func (r *UserRepositoryImpl) RegistrationTrend(db *gorm.DB, since time.Time) ([]DailyCount, error) {
	var stamps []time.Time
	err := db.Model(&models.User{}).
		Where("is_admin = ? AND created_at >= ?", false, since).
		Order("created_at").
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	trend := make([]DailyCount, 0)
	for _, ts := range stamps {
		day := ts.UTC().Format("2006-01-02")
		if n := len(trend); n > 0 && trend[n-1].Date == day {
			trend[n-1].Count++
			continue
		}
		trend = append(trend, DailyCount{Date: day, Count: 1})
	}
	return trend, nil
}
