package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

type StudentService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserView, error)
	Details(ctx context.Context, db *gorm.DB, email string) (*dto.RegistrationDetails, error)
	Lookup(ctx context.Context, db *gorm.DB, email string) (*dto.ApplicantLookup, error)
	Profile(ctx context.Context, db *gorm.DB, userID uint) (*dto.UserView, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID uint, req *dto.UpdateProfileRequest) (*dto.UserView, error)
}

type StudentServiceImpl struct {
	userRepo repositories.UserRepository
	appRepo  repositories.ApplicationRepository
	messages MessageService
}

func NewStudentService(userRepo repositories.UserRepository, appRepo repositories.ApplicationRepository, messages MessageService) StudentService {
	return &StudentServiceImpl{userRepo: userRepo, appRepo: appRepo, messages: messages}
}

// Register creates the student and an empty draft application in one transaction.
func (s *StudentServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.UserView, error) {
	emailAddr := models.NormalizeEmail(req.Email)

	user := &models.User{
		FullName:           strings.TrimSpace(req.FullName),
		Email:              emailAddr,
		Phone:              models.NormalizePhone(req.Phone),
		IsActive:           true,
		RegistrationStatus: models.RegistrationCompleted,
		LoginStatus:        models.LoginPending,
		PaymentStatus:      models.UserPaymentPending,
		ApplicationStatus:  models.UserApplicationLocked,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindByEmail(tx, emailAddr); err == nil {
			return repositories.ErrUserAlreadyExists
		} else if !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}

		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}

		app := &models.Application{
			UserID:           user.ID,
			CampusPreference: req.Campus,
			ProgramType:      req.ProgramType,
			Department:       req.Program,
			Specialization:   req.Specialization,
			CurrentStep:      1,
			Status:           models.ApplicationStatusDraft,
		}
		if err := s.appRepo.Create(tx, app); err != nil {
			return err
		}

		return s.messages.Post(tx, user.ID, "Welcome",
			"Your registration is complete. Pay the application fee to unlock the application form.")
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			logger.CtxWarn(ctx, "duplicate registration", "email", emailAddr)
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "student registered", "user_id", user.ID)
	return dto.NewUserView(user), nil
}

func (s *StudentServiceImpl) Details(ctx context.Context, db *gorm.DB, email string) (*dto.RegistrationDetails, error) {
	user, err := s.userRepo.FindByEmail(db, email)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return &dto.RegistrationDetails{
		Name:              user.FullName,
		Email:             user.Email,
		Phone:             user.Phone,
		PaymentStatus:     string(user.PaymentStatus),
		ApplicationStatus: string(user.ApplicationStatus),
	}, nil
}

func (s *StudentServiceImpl) Lookup(ctx context.Context, db *gorm.DB, email string) (*dto.ApplicantLookup, error) {
	user, err := s.userRepo.FindByEmail(db, email)
	if err != nil {
		return nil, mapRepoError(err)
	}

	personal := map[string]any{}
	app, err := s.appRepo.FindByUserID(db, user.ID)
	switch {
	case err == nil:
		personal = dto.JSONMap(app.PersonalDetails)
	case !errors.Is(err, repositories.ErrApplicationNotFound):
		return nil, mapRepoError(err)
	}

	return &dto.ApplicantLookup{
		ID:           user.ID,
		Name:         user.FullName,
		Email:        user.Email,
		PersonalInfo: personal,
	}, nil
}

func (s *StudentServiceImpl) Profile(ctx context.Context, db *gorm.DB, userID uint) (*dto.UserView, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return dto.NewUserView(user), nil
}

func (s *StudentServiceImpl) UpdateProfile(ctx context.Context, db *gorm.DB, userID uint, req *dto.UpdateProfileRequest) (*dto.UserView, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = models.NormalizePhone(*req.Phone)
	}
	if err := s.userRepo.Save(db, user); err != nil {
		return nil, mapRepoError(err)
	}
	return dto.NewUserView(user), nil
}
