package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

type ApplicationService interface {
	Get(ctx context.Context, db *gorm.DB, userID uint) (*dto.ApplicationView, error)
	Update(ctx context.Context, db *gorm.DB, userID uint, req *dto.ApplicationUpdate) (*dto.ApplicationView, error)

	// Submit finalizes the caller's application. Requires a successful payment.
	Submit(ctx context.Context, db *gorm.DB, userID uint) (*dto.SubmitResponse, error)

	// SubmitPayload stores a whole form sent in one request and submits it.
	SubmitPayload(ctx context.Context, db *gorm.DB, payload *dto.SubmitPayload) (*dto.SubmitResponse, error)

	SetStatus(ctx context.Context, db *gorm.DB, applicationID uint, status models.ApplicationStatus) (*dto.ApplicationView, error)
}

type ApplicationServiceImpl struct {
	userRepo  repositories.UserRepository
	appRepo   repositories.ApplicationRepository
	cacheRepo repositories.ApplicationCacheRepository
	messages  MessageService
	now       func() time.Time
}

func NewApplicationService(
	userRepo repositories.UserRepository,
	appRepo repositories.ApplicationRepository,
	cacheRepo repositories.ApplicationCacheRepository,
	messages MessageService,
) ApplicationService {
	return &ApplicationServiceImpl{
		userRepo:  userRepo,
		appRepo:   appRepo,
		cacheRepo: cacheRepo,
		messages:  messages,
		now:       time.Now,
	}
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid JSON section: " + err.Error())
	}
	return datatypes.JSON(b), nil
}

func (s *ApplicationServiceImpl) Get(ctx context.Context, db *gorm.DB, userID uint) (*dto.ApplicationView, error) {
	app, err := s.appRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return dto.NewApplicationView(app), nil
}

func (s *ApplicationServiceImpl) Update(ctx context.Context, db *gorm.DB, userID uint, req *dto.ApplicationUpdate) (*dto.ApplicationView, error) {
	var app *models.Application
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.appRepo.FindByUserIDForUpdate(tx, userID)
		if err != nil {
			return err
		}
		if !app.Status.Editable() {
			return apperrors.ErrApplicationLocked
		}

		if req.CampusPreference != nil {
			app.CampusPreference = *req.CampusPreference
		}
		if req.ProgramType != nil {
			app.ProgramType = *req.ProgramType
		}
		if req.Department != nil {
			app.Department = *req.Department
		}
		if req.Specialization != nil {
			app.Specialization = *req.Specialization
		}
		if req.CurrentStep != nil {
			app.CurrentStep = *req.CurrentStep
		}

		sections := []struct {
			in  map[string]any
			out *datatypes.JSON
		}{
			{req.PersonalDetails, &app.PersonalDetails},
			{req.AcademicDetails, &app.AcademicDetails},
			{req.ExperienceDetails, &app.ExperienceDetails},
			{req.ResearchDetails, &app.ResearchDetails},
		}
		for _, sec := range sections {
			if sec.in == nil {
				continue
			}
			raw, err := toJSON(sec.in)
			if err != nil {
				return err
			}
			*sec.out = raw
		}

		return s.appRepo.Save(tx, app)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return dto.NewApplicationView(app), nil
}

func (s *ApplicationServiceImpl) Submit(ctx context.Context, db *gorm.DB, userID uint) (*dto.SubmitResponse, error) {
	var (
		user *models.User
		app  *models.Application
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.userRepo.FindByIDForUpdate(tx, userID)
		if err != nil {
			return err
		}
		app, err = s.appRepo.FindByUserIDForUpdate(tx, userID)
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.NewBadRequestError("Incomplete profile")
		}
		if err != nil {
			return err
		}
		return s.submit(tx, user, app)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.afterSubmit(ctx, db, user)
	return &dto.SubmitResponse{Message: "Application submitted successfully", Status: string(app.Status)}, nil
}

func (s *ApplicationServiceImpl) SubmitPayload(ctx context.Context, db *gorm.DB, payload *dto.SubmitPayload) (*dto.SubmitResponse, error) {
	var (
		user *models.User
		app  *models.Application
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		switch {
		case payload.Email != "":
			user, err = s.userRepo.FindByEmail(tx, payload.Email)
		case payload.Phone != "":
			user, err = s.userRepo.FindByPhone(tx, payload.Phone)
		default:
			err = repositories.ErrUserNotFound
		}
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrUserNotFound.WithMessage("User not found for submission")
			}
			return err
		}
		if user, err = s.userRepo.FindByIDForUpdate(tx, user.ID); err != nil {
			return err
		}
		if !user.HasPaid() {
			return apperrors.ErrPaymentRequired
		}

		app, err = s.appRepo.FindByUserIDForUpdate(tx, user.ID)
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			app = &models.Application{UserID: user.ID, CurrentStep: 1, Status: models.ApplicationStatusDraft}
			err = s.appRepo.Create(tx, app)
		}
		if err != nil {
			return err
		}
		if !app.Status.Editable() {
			return apperrors.ErrApplicationLocked
		}

		if app.PersonalDetails, err = toJSON(map[string]any{
			"personal": payload.Personal,
			"address":  payload.Address,
		}); err != nil {
			return err
		}
		if app.AcademicDetails, err = toJSON(map[string]any{
			"education":   payload.Education,
			"ugEducation": payload.UGEducation,
			"pgEducation": payload.PGEducation,
		}); err != nil {
			return err
		}
		if app.ResearchDetails, err = toJSON(map[string]any{
			"documents":    payload.Documents,
			"examSchedule": payload.ExamSchedule,
		}); err != nil {
			return err
		}

		return s.submit(tx, user, app)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.afterSubmit(ctx, db, user)
	return &dto.SubmitResponse{Message: "Application submitted successfully", Status: string(app.Status)}, nil
}

// submit applies the state changes shared by both submission paths. Callers hold row locks.
func (s *ApplicationServiceImpl) submit(tx *gorm.DB, user *models.User, app *models.Application) error {
	if !user.HasPaid() {
		return apperrors.ErrPaymentRequired
	}
	if app.Status == models.ApplicationStatusSubmitted {
		return nil
	}

	if err := models.TransitionApplication(app, models.ApplicationStatusSubmitted); err != nil {
		return err
	}
	now := s.now()
	app.SubmissionDate = &now
	if err := s.appRepo.Save(tx, app); err != nil {
		return err
	}

	if user.ApplicationStatus == models.UserApplicationLocked {
		user.ApplicationStatus = models.UserApplicationCurrent
	}
	if err := models.TransitionUserApplication(user, models.UserApplicationCompleted); err != nil {
		return err
	}
	if err := s.userRepo.Save(tx, user); err != nil {
		return err
	}

	return s.messages.Post(tx, user.ID, "Application submitted",
		"Your PhD application has been submitted and is awaiting review.")
}

// afterSubmit runs best-effort side effects once the submission is committed.
func (s *ApplicationServiceImpl) afterSubmit(ctx context.Context, db *gorm.DB, user *models.User) {
	logger.CtxInfo(ctx, "application submitted", "user_id", user.ID)

	for _, ref := range []string{user.Email, strconv.FormatUint(uint64(user.ID), 10)} {
		if err := s.cacheRepo.DeleteByUser(db, ref); err != nil {
			logger.CtxWithError(ctx, "failed to discard cached drafts", err, "user_id", user.ID)
		}
	}

	s.messages.Notify(ctx, user, "Application submitted",
		"Your PhD application has been submitted and is awaiting review.")
}

func (s *ApplicationServiceImpl) SetStatus(ctx context.Context, db *gorm.DB, applicationID uint, status models.ApplicationStatus) (*dto.ApplicationView, error) {
	var app *models.Application
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.appRepo.FindByIDForUpdate(tx, applicationID)
		if err != nil {
			return err
		}
		previous := app.Status
		if err := models.TransitionApplication(app, status); err != nil {
			return err
		}
		if previous == app.Status {
			return nil
		}
		if err := s.appRepo.Save(tx, app); err != nil {
			return err
		}
		return s.messages.Post(tx, app.UserID, "Application status updated",
			"Your application status is now: "+string(app.Status)+".")
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "application status changed", "application_id", app.ID, "status", app.Status)
	return dto.NewApplicationView(app), nil
}
