package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

const unknownEmail = "Unknown"

// AdminService backs the staff dashboard. Everything except UpdateApplicationStatus is read-only.
type AdminService interface {
	Stats(ctx context.Context, db *gorm.DB) (*dto.AdminStats, error)
	Users(ctx context.Context, db *gorm.DB) ([]dto.UserView, error)
	Payments(ctx context.Context, db *gorm.DB) ([]dto.AdminPayment, error)
	PendingApplications(ctx context.Context, db *gorm.DB) (*dto.CachedApplicationsResponse, error)
	Applications(ctx context.Context, db *gorm.DB) ([]dto.AdminApplication, error)
	Documents(ctx context.Context, db *gorm.DB) ([]dto.AdminDocumentGroup, error)
	UpdateApplicationStatus(ctx context.Context, db *gorm.DB, applicationID uint, status string) (*dto.ApplicationView, error)
}

type AdminServiceImpl struct {
	userRepo     repositories.UserRepository
	appRepo      repositories.ApplicationRepository
	paymentRepo  repositories.PaymentRepository
	documentRepo repositories.DocumentRepository
	cacheRepo    repositories.ApplicationCacheRepository
	steps        StepCacheService
	applications ApplicationService
}

func NewAdminService(
	userRepo repositories.UserRepository,
	appRepo repositories.ApplicationRepository,
	paymentRepo repositories.PaymentRepository,
	documentRepo repositories.DocumentRepository,
	cacheRepo repositories.ApplicationCacheRepository,
	steps StepCacheService,
	applications ApplicationService,
) AdminService {
	return &AdminServiceImpl{
		userRepo:     userRepo,
		appRepo:      appRepo,
		paymentRepo:  paymentRepo,
		documentRepo: documentRepo,
		cacheRepo:    cacheRepo,
		steps:        steps,
		applications: applications,
	}
}

func (s *AdminServiceImpl) Stats(ctx context.Context, db *gorm.DB) (*dto.AdminStats, error) {
	stats := &dto.AdminStats{}
	var err error

	if stats.RegisteredStudents, err = s.userRepo.CountStudents(db); err != nil {
		return nil, mapRepoError(err)
	}
	if stats.PaymentsCompleted, err = s.paymentRepo.CountByStatus(db, models.PaymentStatusSuccess); err != nil {
		return nil, mapRepoError(err)
	}
	if stats.ApplicationsFilled, err = s.appRepo.CountNotDraft(db); err != nil {
		return nil, mapRepoError(err)
	}
	if stats.ApplicationsPending, err = s.cacheRepo.Count(db); err != nil {
		return nil, mapRepoError(err)
	}

	trend, err := s.userRepo.RegistrationTrend(db, time.Time{})
	if err != nil {
		return nil, mapRepoError(err)
	}
	stats.RegistrationTrend = make([]dto.DailyCount, 0, len(trend))
	for _, d := range trend {
		stats.RegistrationTrend = append(stats.RegistrationTrend, dto.DailyCount{Date: d.Date, Count: d.Count})
	}
	return stats, nil
}

func (s *AdminServiceImpl) Users(ctx context.Context, db *gorm.DB) ([]dto.UserView, error) {
	users, err := s.userRepo.ListStudents(db)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]dto.UserView, 0, len(users))
	for i := range users {
		out = append(out, *dto.NewUserView(&users[i]))
	}
	return out, nil
}

func (s *AdminServiceImpl) Payments(ctx context.Context, db *gorm.DB) ([]dto.AdminPayment, error) {
	payments, err := s.paymentRepo.ListAll(db)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]dto.AdminPayment, 0, len(payments))
	for _, p := range payments {
		email := unknownEmail
		if p.User != nil {
			email = p.User.Email
		}
		out = append(out, dto.AdminPayment{
			ID:            p.ID,
			UserEmail:     email,
			TransactionID: p.TransactionID,
			Amount:        p.Amount.InexactFloat64(),
			Status:        strings.ToLower(string(p.Status)),
			CreatedAt:     p.CreatedAt,
		})
	}
	return out, nil
}

func (s *AdminServiceImpl) PendingApplications(ctx context.Context, db *gorm.DB) (*dto.CachedApplicationsResponse, error) {
	return s.steps.List(ctx, db)
}

func (s *AdminServiceImpl) Applications(ctx context.Context, db *gorm.DB) ([]dto.AdminApplication, error) {
	rows, err := s.appRepo.ListWithUsers(db)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]dto.AdminApplication, 0, len(rows))
	for _, r := range rows {
		email := r.UserEmail
		if email == "" {
			email = unknownEmail
		}
		out = append(out, dto.AdminApplication{
			ID:         r.ID,
			UserEmail:  email,
			Campus:     r.CampusPreference,
			Department: r.Department,
			Status:     string(r.Status),
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *AdminServiceImpl) Documents(ctx context.Context, db *gorm.DB) ([]dto.AdminDocumentGroup, error) {
	docs, err := s.documentRepo.ListAllWithUsers(db)
	if err != nil {
		return nil, mapRepoError(err)
	}

	groups := make([]dto.AdminDocumentGroup, 0)
	index := make(map[string]int)
	for _, d := range docs {
		email, name := unknownEmail, ""
		if d.User != nil {
			email, name = d.User.Email, d.User.FullName
		}
		i, ok := index[email]
		if !ok {
			i = len(groups)
			index[email] = i
			groups = append(groups, dto.AdminDocumentGroup{Email: email, FullName: name, Documents: []dto.AdminDocument{}})
		}
		groups[i].Documents = append(groups[i].Documents, dto.AdminDocument{
			ID:           d.ID,
			DocumentType: d.DocumentType,
			FileName:     d.FileName,
			FileURL:      d.FileURL,
			ThumbnailURL: d.ThumbnailURL,
			UploadedAt:   d.UploadedAt,
		})
	}
	return groups, nil
}

func (s *AdminServiceImpl) UpdateApplicationStatus(ctx context.Context, db *gorm.DB, applicationID uint, status string) (*dto.ApplicationView, error) {
	next := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, apperrors.NewBadRequestError("unknown application status: " + status)
	}
	return s.applications.SetStatus(ctx, db, applicationID, next)
}
