package repositories

import (
	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindByTransactionID(db *gorm.DB, txnID string) (*models.Payment, error)
	FindByTransactionIDForUpdate(db *gorm.DB, txnID string) (*models.Payment, error)
	Save(db *gorm.DB, payment *models.Payment) error
	ListByUser(db *gorm.DB, userID uint) ([]models.Payment, error)
	ListAll(db *gorm.DB) ([]models.Payment, error)
	CountByStatus(db *gorm.DB, status models.PaymentStatus) (int64, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByTransactionID(db *gorm.DB, txnID string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Where("transaction_id = ?", txnID).First(&payment).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByTransactionIDForUpdate(db *gorm.DB, txnID string) (*models.Payment, error) {
	var payment models.Payment
	if err := forUpdate(db).Where("transaction_id = ?", txnID).First(&payment).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) Save(db *gorm.DB, payment *models.Payment) error {
	return db.Save(payment).Error
}

func (r *PaymentRepositoryImpl) ListByUser(db *gorm.DB, userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// ListAll preloads the payer so orphaned rows surface with a nil User.
func (r *PaymentRepositoryImpl) ListAll(db *gorm.DB) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Preload("User").Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) CountByStatus(db *gorm.DB, status models.PaymentStatus) (int64, error) {
	var count int64
	err := db.Model(&models.Payment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
