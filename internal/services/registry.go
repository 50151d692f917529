package services

import (
	"admissions_backend/internal/auth"
	"admissions_backend/internal/config"
	"admissions_backend/internal/email"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/gateway"
	"admissions_backend/internal/storage"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService        AuthService
	OTPService         OTPService
	StudentService     StudentService
	ApplicationService ApplicationService
	StepCacheService   StepCacheService
	DocumentService    DocumentService
	PaymentService     PaymentService
	MessageService     MessageService
	CatalogService     CatalogService
	AdminService       AdminService

	Tokens *auth.TokenManager
}

// NewServiceContainer wires repositories into services. store may be nil when uploads are disabled.
func NewServiceContainer(cfg *config.Config, store storage.Storage, mailer *email.Mailer, tokens *auth.TokenManager) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	appRepo := repositories.NewApplicationRepository()
	paymentRepo := repositories.NewPaymentRepository()
	documentRepo := repositories.NewDocumentRepository()
	messageRepo := repositories.NewMessageRepository()
	otpRepo := repositories.NewOTPRepository()
	cacheRepo := repositories.NewApplicationCacheRepository()
	catalogRepo := repositories.NewCatalogRepository()

	messageService := NewMessageService(messageRepo, mailer)
	otpService := NewOTPService(otpRepo, mailer, cfg.OTP)
	stepCacheService := NewStepCacheService(cacheRepo)
	applicationService := NewApplicationService(userRepo, appRepo, cacheRepo, messageService)

	return &ServiceContainer{
		AuthService:        NewAuthService(userRepo, otpService, tokens, cfg.IsDevelopment()),
		OTPService:         otpService,
		StudentService:     NewStudentService(userRepo, appRepo, messageService),
		ApplicationService: applicationService,
		StepCacheService:   stepCacheService,
		DocumentService:    NewDocumentService(documentRepo, store, cfg.Upload),
		PaymentService:     NewPaymentService(userRepo, paymentRepo, messageService, gateway.NewPayU(cfg.PayU), cfg),
		MessageService:     messageService,
		CatalogService:     NewCatalogService(catalogRepo),
		AdminService: NewAdminService(userRepo, appRepo, paymentRepo, documentRepo, cacheRepo,
			stepCacheService, applicationService),
		Tokens: tokens,
	}
}
