package repositories

import (
	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type CatalogRepository interface {
	ActiveCampuses(db *gorm.DB) ([]models.CampusInfo, error)
	ActivePrograms(db *gorm.DB) ([]models.ProgramInfo, error)
}

type CatalogRepositoryImpl struct{}

func NewCatalogRepository() CatalogRepository {
	return &CatalogRepositoryImpl{}
}

func (r *CatalogRepositoryImpl) ActiveCampuses(db *gorm.DB) ([]models.CampusInfo, error) {
	var campuses []models.CampusInfo
	err := db.Where("is_active = ?", true).Order("name").Find(&campuses).Error
	return campuses, err
}

func (r *CatalogRepositoryImpl) ActivePrograms(db *gorm.DB) ([]models.ProgramInfo, error) {
	var programs []models.ProgramInfo
	err := db.Where("is_active = ?", true).Order("name").Find(&programs).Error
	return programs, err
}
