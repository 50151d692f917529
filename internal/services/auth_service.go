package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"admissions_backend/internal/auth"
	"admissions_backend/internal/config"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/pkg/apperrors"
)

type AuthService interface {
	SendOTP(ctx context.Context, db *gorm.DB, req *dto.SendOTPRequest) (*dto.OTPSentResponse, error)
	VerifyOTP(ctx context.Context, db *gorm.DB, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error)
	PasswordLogin(ctx context.Context, db *gorm.DB, req *dto.PasswordLoginRequest) (*dto.TokenResponse, error)
	AdminLogin(ctx context.Context, db *gorm.DB, req *dto.AdminLoginRequest) (*dto.TokenResponse, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID uint, req *dto.ChangePasswordRequest) error
	SeedAdmin(ctx context.Context, db *gorm.DB, admin config.AdminConfig) error
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	otp      OTPService
	tokens   *auth.TokenManager
	echoOTP  bool
}

// NewAuthService wires authentication. echoOTP returns issued codes in the response body
// and must only be set in development.
func NewAuthService(userRepo repositories.UserRepository, otp OTPService, tokens *auth.TokenManager, echoOTP bool) AuthService {
	return &AuthServiceImpl{userRepo: userRepo, otp: otp, tokens: tokens, echoOTP: echoOTP}
}

func (s *AuthServiceImpl) SendOTP(ctx context.Context, db *gorm.DB, req *dto.SendOTPRequest) (*dto.OTPSentResponse, error) {
	target := NormalizeTarget(req.Type, req.Email, req.Phone)
	code, err := s.otp.Issue(ctx, db, target)
	if err != nil {
		return nil, err
	}

	resp := &dto.OTPSentResponse{Success: true, Message: "OTP sent"}
	if s.echoOTP {
		resp.Code = code
	}
	return resp, nil
}

// VerifyOTP consumes the code. Registered users get a token back, unknown targets only a success flag
// so the registration form can continue.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, db *gorm.DB, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	target := NormalizeTarget(req.Type, req.Email, req.Phone)
	if err := s.otp.Verify(ctx, db, target, req.Code); err != nil {
		return nil, err
	}

	var (
		user *models.User
		err  error
	)
	if target.Email != "" {
		user, err = s.userRepo.FindByEmail(db, target.Email)
	} else {
		user, err = s.userRepo.FindByPhone(db, target.Phone)
	}
	if errors.Is(err, repositories.ErrUserNotFound) {
		return &dto.VerifyOTPResponse{Success: true, Message: "OTP verified"}, nil
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	token, err := s.issueStudentSession(ctx, db, user)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyOTPResponse{
		Success:     true,
		Message:     "OTP verified",
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		User:        token.User,
	}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.otp.Verify(ctx, db, repositories.OTPTarget{Email: user.Email}, req.OTPCode); err != nil {
		return nil, err
	}
	return s.issueStudentSession(ctx, db, user)
}

func (s *AuthServiceImpl) PasswordLogin(ctx context.Context, db *gorm.DB, req *dto.PasswordLoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, mapRepoError(err)
	}
	if user.PasswordHash == nil || !auth.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.issueStudentSession(ctx, db, user)
}

func (s *AuthServiceImpl) issueStudentSession(ctx context.Context, db *gorm.DB, user *models.User) (*dto.TokenResponse, error) {
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if user.LoginStatus != models.LoginCompleted {
		user.LoginStatus = models.LoginCompleted
		if err := s.userRepo.Save(db, user); err != nil {
			return nil, mapRepoError(err)
		}
	}

	role := auth.RoleStudent
	if user.IsAdmin {
		role = auth.RoleAdmin
	}
	token, err := s.tokens.Generate(user.ID, user.Email, role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        dto.NewUserView(user),
	}, nil
}

func (s *AuthServiceImpl) AdminLogin(ctx context.Context, db *gorm.DB, req *dto.AdminLoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, mapRepoError(err)
	}
	if !user.IsAdmin || user.PasswordHash == nil || !auth.CheckPasswordHash(req.Password, *user.PasswordHash) {
		logger.CtxWarn(ctx, "admin login rejected", "email", user.Email)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, err := s.tokens.Generate(user.ID, user.Email, auth.RoleAdmin)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// ChangePassword sets a password. The old one is required once a password exists.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, db *gorm.DB, userID uint, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return mapRepoError(err)
	}
	if user.PasswordHash != nil && !auth.CheckPasswordHash(req.OldPassword, *user.PasswordHash) {
		return apperrors.ErrInvalidCredentials.WithMessage("Current password is incorrect")
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = &hash
	if err := s.userRepo.Save(db, user); err != nil {
		return mapRepoError(err)
	}
	logger.CtxInfo(ctx, "password changed", "user_id", user.ID)
	return nil
}

// SeedAdmin creates the configured administrator if it does not exist yet.
func (s *AuthServiceImpl) SeedAdmin(ctx context.Context, db *gorm.DB, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		logger.CtxWarn(ctx, "admin credentials not configured, skipping admin seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.userRepo.FindByEmail(tx, admin.Email)
		if err == nil {
			if !existing.IsAdmin {
				logger.CtxWarn(ctx, "configured admin email belongs to a student account", "email", existing.Email)
			}
			return nil
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}

		hash, err := auth.HashPassword(admin.Password)
		if err != nil {
			return err
		}
		name := admin.FullName
		if name == "" {
			name = "Administrator"
		}
		user := &models.User{
			FullName:           name,
			Email:              models.NormalizeEmail(admin.Email),
			PasswordHash:       &hash,
			IsActive:           true,
			IsAdmin:            true,
			RegistrationStatus: models.RegistrationCompleted,
			LoginStatus:        models.LoginPending,
			PaymentStatus:      models.UserPaymentPending,
			ApplicationStatus:  models.UserApplicationLocked,
		}
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}
		logger.CtxInfo(ctx, "admin user seeded", "email", user.Email)
		return nil
	})
}
