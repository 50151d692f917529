package repositories

import (
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/models"
)

type MessageRepository interface {
	Create(db *gorm.DB, msg *models.Message) error
	ListByUser(db *gorm.DB, userID uint) ([]models.Message, error)
	MarkRead(db *gorm.DB, id, userID uint, at time.Time) (*models.Message, error)
	CountUnread(db *gorm.DB, userID uint) (int64, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) Create(db *gorm.DB, msg *models.Message) error {
	return db.Create(msg).Error
}

func (r *MessageRepositoryImpl) ListByUser(db *gorm.DB, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&msgs).Error
	return msgs, err
}

// MarkRead flags one of the user's messages. Re-reading keeps the first read_at.
func (r *MessageRepositoryImpl) MarkRead(db *gorm.DB, id, userID uint, at time.Time) (*models.Message, error) {
	var msg models.Message
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&msg).Error; err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	if msg.IsRead {
		return &msg, nil
	}

	msg.IsRead = true
	msg.ReadAt = &at
	if err := db.Model(&msg).Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepositoryImpl) CountUnread(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Message{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}
