package repositories

import (
	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type ApplicationCacheRepository interface {
	FindBySessionForUpdate(db *gorm.DB, sessionID string) (*models.ApplicationCache, error)
	FindBySession(db *gorm.DB, sessionID string) (*models.ApplicationCache, error)
	Create(db *gorm.DB, cache *models.ApplicationCache) error
	Save(db *gorm.DB, cache *models.ApplicationCache) error
	List(db *gorm.DB) ([]models.ApplicationCache, error)
	Count(db *gorm.DB) (int64, error)
	DeleteByUser(db *gorm.DB, userRef string) error
}

type ApplicationCacheRepositoryImpl struct{}

func NewApplicationCacheRepository() ApplicationCacheRepository {
	return &ApplicationCacheRepositoryImpl{}
}

func (r *ApplicationCacheRepositoryImpl) FindBySessionForUpdate(db *gorm.DB, sessionID string) (*models.ApplicationCache, error) {
	var cache models.ApplicationCache
	if err := forUpdate(db).Where("session_id = ?", sessionID).First(&cache).Error; err != nil {
		return nil, notFound(err, ErrCacheNotFound)
	}
	return &cache, nil
}

func (r *ApplicationCacheRepositoryImpl) FindBySession(db *gorm.DB, sessionID string) (*models.ApplicationCache, error) {
	var cache models.ApplicationCache
	if err := db.Where("session_id = ?", sessionID).First(&cache).Error; err != nil {
		return nil, notFound(err, ErrCacheNotFound)
	}
	return &cache, nil
}

func (r *ApplicationCacheRepositoryImpl) Create(db *gorm.DB, cache *models.ApplicationCache) error {
	return db.Create(cache).Error
}

func (r *ApplicationCacheRepositoryImpl) Save(db *gorm.DB, cache *models.ApplicationCache) error {
	return db.Save(cache).Error
}

func (r *ApplicationCacheRepositoryImpl) List(db *gorm.DB) ([]models.ApplicationCache, error) {
	var caches []models.ApplicationCache
	err := db.Order("updated_at DESC").Find(&caches).Error
	return caches, err
}

func (r *ApplicationCacheRepositoryImpl) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.ApplicationCache{}).Count(&count).Error
	return count, err
}

// DeleteByUser drops drafts whose free-text user reference matches (email or id).
func (r *ApplicationCacheRepositoryImpl) DeleteByUser(db *gorm.DB, userRef string) error {
	return db.Where("user_id = ?", userRef).Delete(&models.ApplicationCache{}).Error
}
