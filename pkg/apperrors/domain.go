package apperrors

import (
	"net/http"
)

// ErrNotFound converts a repository miss into a 404.
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

func ErrAlreadyExists(err error, domain, message string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, message, http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// Auth / OTP

var (
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken       = New(CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired       = New(CodeTokenExpired, "auth", "Token expired", http.StatusUnauthorized)
	ErrAccountDisabled    = New(CodeForbidden, "auth", "Account is disabled", http.StatusForbidden)
	ErrAdminOnly          = New(CodeForbidden, "auth", "Admin access required", http.StatusForbidden)

	ErrInvalidOTP      = New(CodeInvalidOTP, "otp", "Invalid or expired OTP", http.StatusBadRequest)
	ErrTooManyAttempts = New(CodeLimitExceeded, "otp", "Too many attempts, request a new code", http.StatusTooManyRequests)
	ErrRateLimited     = New(CodeLimitExceeded, "request", "Too many requests", http.StatusTooManyRequests)
	ErrOTPDelivery     = New(CodeExternalServiceError, "otp", "Failed to deliver OTP", http.StatusInternalServerError)
)

// Students and applications

var (
	ErrEmailAlreadyExists = New(CodeAlreadyExists, "user", "Email already registered", http.StatusConflict)
	ErrUserNotFound       = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

	ErrApplicationNotFound     = New(CodeNotFound, "application", "Application not found", http.StatusNotFound)
	ErrApplicationLocked       = New(CodeConflict, "application", "Application can no longer be edited", http.StatusConflict)
	ErrPaymentRequired         = New(CodePaymentRequired, "application", "Payment must be completed before submission", http.StatusBadRequest)
	ErrInvalidStatusTransition = New(CodeInvalidStatus, "status", "Invalid status transition", http.StatusConflict)

	ErrCacheVersionConflict = New(CodeConflict, "application_cache", "Cached application was modified by another session", http.StatusConflict)

	ErrMessageNotFound = New(CodeNotFound, "message", "Message not found", http.StatusNotFound)
)

// Documents and storage

var (
	ErrFileTooLarge         = New(CodeFileTooLarge, "document", "File too large (max 5MB)", http.StatusRequestEntityTooLarge)
	ErrInvalidFileType      = New(CodeUnsupportedMedia, "document", "Invalid file type", http.StatusUnsupportedMediaType)
	ErrDocumentNotFound     = New(CodeNotFound, "document", "Document not found", http.StatusNotFound)
	ErrStorageNotConfigured = New(CodeServiceUnavailable, "storage", "File storage is not configured", http.StatusServiceUnavailable)
	ErrStorageFailure       = New(CodeExternalServiceError, "storage", "File storage operation failed", http.StatusInternalServerError)
)

// Payments

var (
	ErrPaymentNotFound      = New(CodeNotFound, "payment", "Payment not found", http.StatusNotFound)
	ErrInvalidSignature     = New(CodeInvalidSignature, "payment", "Invalid payment callback signature", http.StatusBadRequest)
	ErrPaymentAmountChanged = New(CodeConflict, "payment", "Callback amount does not match the payment", http.StatusConflict)
	ErrInvalidPaymentAmount = New(CodeValidationFailed, "payment", "Invalid payment amount", http.StatusBadRequest)
	ErrGatewayNotConfigured = New(CodeServiceUnavailable, "payment", "Payment gateway is not configured", http.StatusServiceUnavailable)
	ErrPaymentAlreadyPaid   = New(CodeConflict, "payment", "Application fee already paid", http.StatusConflict)
	ErrInvalidCoupon        = New(CodeValidationFailed, "payment", "Invalid coupon code", http.StatusBadRequest)
)
