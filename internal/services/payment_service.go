package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"admissions_backend/internal/config"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services/dto"
	"admissions_backend/internal/services/gateway"
	"admissions_backend/pkg/apperrors"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type PaymentService interface {
	// Initiate records a pending payment and returns the signed checkout form.
	Initiate(ctx context.Context, db *gorm.DB, userID uint, req *dto.PaymentInitRequest) (*gateway.CheckoutParams, error)

	// HandleCallback reconciles a gateway post and returns where to send the browser.
	// Only database failures produce an error; rejected callbacks are logged and redirected.
	HandleCallback(ctx context.Context, db *gorm.DB, outcome string, form map[string]string) (string, error)

	Status(ctx context.Context, db *gorm.DB, transactionID string) (*dto.PaymentStatusResponse, error)
	History(ctx context.Context, db *gorm.DB, userID uint) ([]dto.PaymentRecord, error)
	ValidateCoupon(ctx context.Context, code string) *dto.CouponResponse
}

type PaymentServiceImpl struct {
	userRepo    repositories.UserRepository
	paymentRepo repositories.PaymentRepository
	messages    MessageService
	payu        *gateway.PayU
	cfg         config.PayUConfig
	coupons     map[string]decimal.Decimal
	successURL  string
	failureURL  string
	now         func() time.Time
}

func NewPaymentService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
	messages MessageService,
	payu *gateway.PayU,
	cfg *config.Config,
) PaymentService {
	coupons := make(map[string]decimal.Decimal, len(cfg.Coupons))
	for code, raw := range cfg.Coupons {
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !amount.IsPositive() {
			logger.Warn("ignoring coupon with invalid discount", "code", code, "discount", raw)
			continue
		}
		coupons[strings.ToUpper(code)] = amount
	}

	return &PaymentServiceImpl{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		messages:    messages,
		payu:        payu,
		cfg:         cfg.PayU,
		coupons:     coupons,
		successURL:  cfg.CallbackURL(OutcomeSuccess),
		failureURL:  cfg.CallbackURL(OutcomeFailure),
		now:         time.Now,
	}
}

// NewTransactionID returns "VIG" followed by 12 upper-case hex digits.
func NewTransactionID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VIG" + strings.ToUpper(id[:12])
}

func (s *PaymentServiceImpl) coupon(code string) (decimal.Decimal, bool) {
	d, ok := s.coupons[strings.ToUpper(strings.TrimSpace(code))]
	return d, ok
}

func (s *PaymentServiceImpl) ValidateCoupon(ctx context.Context, code string) *dto.CouponResponse {
	discount, ok := s.coupon(code)
	if !ok {
		return &dto.CouponResponse{Valid: false, Message: "Invalid coupon code"}
	}
	return &dto.CouponResponse{Valid: true, Discount: discount.InexactFloat64()}
}

func (s *PaymentServiceImpl) Initiate(ctx context.Context, db *gorm.DB, userID uint, req *dto.PaymentInitRequest) (*gateway.CheckoutParams, error) {
	if !s.payu.Configured() {
		return nil, apperrors.ErrGatewayNotConfigured
	}

	fee, err := decimal.NewFromString(s.cfg.ApplicationFee)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	amount := fee
	discount := decimal.Zero
	coupon := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	if coupon != "" {
		d, ok := s.coupon(coupon)
		if !ok {
			return nil, apperrors.ErrInvalidCoupon
		}
		discount = decimal.Min(d, fee)
		amount = fee.Sub(discount)
	}
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidPaymentAmount
	}
	if req.Amount != nil && !decimal.NewFromFloat(*req.Amount).Round(2).Equal(amount) {
		logger.CtxWarn(ctx, "client amount differs from computed fee",
			"client_amount", *req.Amount, "amount", amount.StringFixed(2))
	}

	productInfo := strings.TrimSpace(req.ProductInfo)
	if productInfo == "" {
		productInfo = s.cfg.ProductInfo
	}

	var (
		user    *models.User
		payment *models.Payment
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.userRepo.FindByIDForUpdate(tx, userID)
		if err != nil {
			return err
		}
		if user.HasPaid() {
			return apperrors.ErrPaymentAlreadyPaid
		}
		if user.PaymentStatus == models.UserPaymentFailure {
			if err := models.TransitionUserPayment(user, models.UserPaymentPending); err != nil {
				return err
			}
			if err := s.userRepo.Save(tx, user); err != nil {
				return err
			}
		}

		payment = &models.Payment{
			UserID:        user.ID,
			TransactionID: NewTransactionID(),
			Amount:        amount,
			Discount:      discount,
			CouponCode:    coupon,
			ProductInfo:   productInfo,
			Status:        models.PaymentStatusPending,
		}
		return s.paymentRepo.Create(tx, payment)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	params, err := s.payu.Checkout(gateway.CheckoutParams{
		TxnID:       payment.TransactionID,
		Amount:      gateway.FormatAmount(payment.Amount),
		ProductInfo: productInfo,
		FirstName:   user.FirstName(),
		Email:       user.Email,
		Phone:       user.Phone,
		SURL:        s.successURL,
		FURL:        s.failureURL,
	})
	if err != nil {
		return nil, apperrors.ErrGatewayNotConfigured.WithError(err)
	}

	logger.CtxInfo(logger.WithTxnID(ctx, payment.TransactionID), "payment initiated",
		"user_id", user.ID, "amount", params.Amount, "coupon", coupon)
	return &params, nil
}

func (s *PaymentServiceImpl) redirect(status models.PaymentStatus) string {
	if status == models.PaymentStatusSuccess {
		return s.cfg.SuccessRedirect
	}
	return s.cfg.FailureRedirect
}

func (s *PaymentServiceImpl) HandleCallback(ctx context.Context, db *gorm.DB, outcome string, form map[string]string) (string, error) {
	cb := gateway.ParseCallback(form)
	ctx = logger.WithTxnID(ctx, cb.TxnID)
	failure := s.redirect(models.PaymentStatusFailure)

	if cb.TxnID == "" {
		logger.CtxWarn(ctx, "payment callback without txnid", "outcome", outcome)
		return failure, nil
	}

	existing, err := s.paymentRepo.FindByTransactionID(db, cb.TxnID)
	if errors.Is(err, repositories.ErrPaymentNotFound) {
		logger.CtxWarn(ctx, "payment callback for unknown transaction", "outcome", outcome)
		return failure, nil
	}
	if err != nil {
		return "", mapRepoError(err)
	}

	if !s.payu.VerifyCallback(cb) {
		logger.CtxWithError(ctx, "payment callback rejected", apperrors.ErrInvalidSignature, "outcome", outcome)
		return failure, nil
	}

	paid, err := decimal.NewFromString(strings.TrimSpace(cb.Amount))
	if err != nil || !paid.Equal(existing.Amount) {
		logger.CtxWithError(ctx, "payment callback rejected", apperrors.ErrPaymentAmountChanged,
			"outcome", outcome, "callback_amount", cb.Amount, "amount", existing.Amount.StringFixed(2))
		return failure, nil
	}

	next := models.PaymentStatusFailure
	if outcome == OutcomeSuccess && cb.Succeeded() {
		next = models.PaymentStatusSuccess
	}

	var (
		final   models.PaymentStatus
		changed bool
		user    *models.User
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByTransactionIDForUpdate(tx, cb.TxnID)
		if err != nil {
			return err
		}
		if payment.Status.Terminal() {
			final = payment.Status
			return nil
		}

		if err := models.TransitionPayment(payment, next); err != nil {
			return err
		}
		now := s.now()
		payment.GatewayPaymentID = cb.MihpayID
		payment.PaymentMode = cb.Mode
		payment.ProcessedAt = &now
		if next == models.PaymentStatusFailure {
			payment.ErrorMessage = firstNonEmpty(cb.ErrorMessage, cb.Error, cb.Status)
		}
		if raw, err := json.Marshal(cb.Raw); err == nil {
			payment.RawResponse = datatypes.JSON(raw)
		}
		if err := s.paymentRepo.Save(tx, payment); err != nil {
			return err
		}

		user, err = s.userRepo.FindByIDForUpdate(tx, payment.UserID)
		if err != nil {
			return err
		}
		if err := s.applyToUser(tx, user, next); err != nil {
			return err
		}

		final, changed = next, true
		return nil
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to record payment callback", err, "outcome", outcome)
		return "", mapRepoError(err)
	}

	if !changed {
		logger.CtxInfo(ctx, "duplicate payment callback ignored", "status", final)
		return s.redirect(final), nil
	}

	logger.CtxInfo(ctx, "payment reconciled", "status", final, "user_id", user.ID)
	if final == models.PaymentStatusSuccess {
		s.messages.Notify(ctx, user, "Payment received",
			"We have received your application fee. You can now complete your application.")
	}
	return s.redirect(final), nil
}

// applyToUser mirrors a settled payment onto the student's flags.
func (s *PaymentServiceImpl) applyToUser(tx *gorm.DB, user *models.User, status models.PaymentStatus) error {
	switch status {
	case models.PaymentStatusSuccess:
		if err := models.TransitionUserPayment(user, models.UserPaymentSuccess); err != nil {
			return err
		}
		if user.ApplicationStatus == models.UserApplicationLocked {
			if err := models.TransitionUserApplication(user, models.UserApplicationCurrent); err != nil {
				return err
			}
		}
		if err := s.userRepo.Save(tx, user); err != nil {
			return err
		}
		return s.messages.Post(tx, user.ID, "Payment received",
			"We have received your application fee. You can now complete your application.")
	default:
		// A later failed attempt never revokes an earlier success.
		if user.HasPaid() {
			return nil
		}
		if err := models.TransitionUserPayment(user, models.UserPaymentFailure); err != nil {
			return err
		}
		return s.userRepo.Save(tx, user)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s *PaymentServiceImpl) Status(ctx context.Context, db *gorm.DB, transactionID string) (*dto.PaymentStatusResponse, error) {
	out := &dto.PaymentStatusResponse{Records: []dto.PaymentStatusRecord{}}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return out, nil
	}

	payment, err := s.paymentRepo.FindByTransactionID(db, transactionID)
	if errors.Is(err, repositories.ErrPaymentNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	out.Records = append(out.Records, dto.PaymentStatusRecord{
		Status: string(payment.Status),
		PaymentData: dto.PaymentData{
			TransactionID: payment.TransactionID,
			PaymentAmount: payment.Amount.InexactFloat64(),
			PaymentMethod: payment.PaymentMode,
		},
	})
	return out, nil
}

func (s *PaymentServiceImpl) History(ctx context.Context, db *gorm.DB, userID uint) ([]dto.PaymentRecord, error) {
	payments, err := s.paymentRepo.ListByUser(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]dto.PaymentRecord, 0, len(payments))
	for i := range payments {
		out = append(out, dto.NewPaymentRecord(&payments[i]))
	}
	return out, nil
}
