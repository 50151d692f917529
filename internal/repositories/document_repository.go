package repositories

import (
	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type DocumentRepository interface {
	FindByUserAndTypeForUpdate(db *gorm.DB, userID uint, docType string) (*models.Document, error)
	FindByIDForUser(db *gorm.DB, id, userID uint) (*models.Document, error)
	Create(db *gorm.DB, doc *models.Document) error
	Save(db *gorm.DB, doc *models.Document) error
	ListByUser(db *gorm.DB, userID uint) ([]models.Document, error)
	ListAllWithUsers(db *gorm.DB) ([]models.Document, error)
}

type DocumentRepositoryImpl struct{}

func NewDocumentRepository() DocumentRepository {
	return &DocumentRepositoryImpl{}
}

func (r *DocumentRepositoryImpl) FindByUserAndTypeForUpdate(db *gorm.DB, userID uint, docType string) (*models.Document, error) {
	var doc models.Document
	err := forUpdate(db).
		Where("user_id = ? AND document_type = ?", userID, docType).
		First(&doc).Error
	if err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindByIDForUser(db *gorm.DB, id, userID uint) (*models.Document, error) {
	var doc models.Document
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) Create(db *gorm.DB, doc *models.Document) error {
	return db.Create(doc).Error
}

func (r *DocumentRepositoryImpl) Save(db *gorm.DB, doc *models.Document) error {
	return db.Save(doc).Error
}

func (r *DocumentRepositoryImpl) ListByUser(db *gorm.DB, userID uint) ([]models.Document, error) {
	var docs []models.Document
	err := db.Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) ListAllWithUsers(db *gorm.DB) ([]models.Document, error) {
	var docs []models.Document
	err := db.Preload("User").Order("user_id, uploaded_at DESC").Find(&docs).Error
	return docs, err
}
