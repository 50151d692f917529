package repositories

import (
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.Application) error
	FindByID(db *gorm.DB, id uint) (*models.Application, error)
	FindByIDForUpdate(db *gorm.DB, id uint) (*models.Application, error)
	FindByUserID(db *gorm.DB, userID uint) (*models.Application, error)
	FindByUserIDForUpdate(db *gorm.DB, userID uint) (*models.Application, error)
	Save(db *gorm.DB, app *models.Application) error
	CountNotDraft(db *gorm.DB) (int64, error)
	ListWithUsers(db *gorm.DB) ([]ApplicationRow, error)
}

// ApplicationRow is an application joined with its owner's email.
type ApplicationRow struct {
	ID               uint
	UserEmail        string
	CampusPreference string
	Department       string
	Status           models.ApplicationStatus
	UpdatedAt        time.Time
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, app *models.Application) error {
	return db.Create(app).Error
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Application, error) {
	var app models.Application
	if err := db.First(&app, id).Error; err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id uint) (*models.Application, error) {
	var app models.Application
	if err := forUpdate(db).First(&app, id).Error; err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByUserID(db *gorm.DB, userID uint) (*models.Application, error) {
	var app models.Application
	if err := db.Where("user_id = ?", userID).First(&app).Error; err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByUserIDForUpdate(db *gorm.DB, userID uint) (*models.Application, error) {
	var app models.Application
	if err := forUpdate(db).Where("user_id = ?", userID).First(&app).Error; err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) Save(db *gorm.DB, app *models.Application) error {
	return db.Save(app).Error
}

func (r *ApplicationRepositoryImpl) CountNotDraft(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Where("status <> ?", models.ApplicationStatusDraft).
		Count(&count).Error
	return count, err
}

func (r *ApplicationRepositoryImpl) ListWithUsers(db *gorm.DB) ([]ApplicationRow, error) {
	var rows []ApplicationRow
	err := db.Table("applications").
		Select("applications.id, users.email AS user_email, applications.campus_preference, " +
			"applications.department, applications.status, applications.updated_at").
		Joins("LEFT JOIN users ON users.id = applications.user_id").
		Order("applications.updated_at DESC").
		Scan(&rows).Error
	return rows, err
}
