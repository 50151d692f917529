package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/email"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
)

type MessageService interface {
	List(ctx context.Context, db *gorm.DB, userID uint) ([]dto.MessageView, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, messageID uint) (*dto.MessageView, error)

	// Post stores an inbox message inside the caller's transaction.
	Post(db *gorm.DB, userID uint, subject, content string) error

	// Notify mirrors an inbox message to the student's email. Failures are logged only.
	Notify(ctx context.Context, user *models.User, subject, content string)
}

type MessageServiceImpl struct {
	repo   repositories.MessageRepository
	mailer *email.Mailer
	now    func() time.Time
}

func NewMessageService(repo repositories.MessageRepository, mailer *email.Mailer) MessageService {
	return &MessageServiceImpl{repo: repo, mailer: mailer, now: time.Now}
}

func (s *MessageServiceImpl) List(ctx context.Context, db *gorm.DB, userID uint) ([]dto.MessageView, error) {
	msgs, err := s.repo.ListByUser(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]dto.MessageView, 0, len(msgs))
	for i := range msgs {
		out = append(out, dto.NewMessageView(&msgs[i]))
	}
	return out, nil
}

func (s *MessageServiceImpl) MarkRead(ctx context.Context, db *gorm.DB, userID, messageID uint) (*dto.MessageView, error) {
	msg, err := s.repo.MarkRead(db, messageID, userID, s.now())
	if err != nil {
		return nil, mapRepoError(err)
	}
	view := dto.NewMessageView(msg)
	return &view, nil
}

func (s *MessageServiceImpl) Post(db *gorm.DB, userID uint, subject, content string) error {
	return s.repo.Create(db, &models.Message{UserID: userID, Subject: subject, Content: content})
}

func (s *MessageServiceImpl) Notify(ctx context.Context, user *models.User, subject, content string) {
	if s.mailer == nil || user == nil || user.Email == "" {
		return
	}
	if err := s.mailer.SendNotification(ctx, user.Email, user.FullName, subject, content); err != nil {
		logger.CtxWithError(ctx, "failed to send notification email", err, "user_id", user.ID)
	}
}
