package dto

// SendOTPRequest asks for a code by email or phone. Type defaults to "email".
type SendOTPRequest struct {
	Type  string `json:"type" validate:"omitempty,is-otp-channel"`
	Email string `json:"email" validate:"required_without=Phone,omitempty,email,max=255"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

type VerifyOTPRequest struct {
	Type  string `json:"type" validate:"omitempty,is-otp-channel"`
	Email string `json:"email" validate:"required_without=Phone,omitempty,email,max=255"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Code  string `json:"code" validate:"required,min=4,max=10,numeric-code"`
}

// LoginRequest is the email + OTP login.
type LoginRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OTPCode string `json:"otp_code" validate:"required,min=4,max=10,numeric-code"`
}

type PasswordLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type OTPSentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Code is only echoed back outside production.
	Code string `json:"code,omitempty"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	User        *UserView `json:"user,omitempty"`
}

// VerifyOTPResponse carries a token only when the verified target belongs to a registered user.
type VerifyOTPResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	AccessToken string    `json:"access_token,omitempty"`
	TokenType   string    `json:"token_type,omitempty"`
	User        *UserView `json:"user,omitempty"`
}
