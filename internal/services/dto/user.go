package dto

import (
	"time"

	"admissions_backend/internal/models"
)

type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	FullName       string `json:"full_name" validate:"required,min=2,max=255"`
	Phone          string `json:"phone" validate:"omitempty,phone"`
	Campus         string `json:"campus" validate:"required,max=100"`
	Program        string `json:"program" validate:"required,max=255"`
	Specialization string `json:"specialization" validate:"required,max=255"`
	ProgramType    string `json:"program_type" validate:"omitempty,oneof=full_time part_time"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

type UserView struct {
	ID                 uint      `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	Phone              string    `json:"phone"`
	IsActive           bool      `json:"is_active"`
	IsAdmin            bool      `json:"is_admin"`
	RegistrationStatus string    `json:"registration_status"`
	LoginStatus        string    `json:"login_status"`
	PaymentStatus      string    `json:"payment_status"`
	ApplicationStatus  string    `json:"application_status"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:                 u.ID,
		Email:              u.Email,
		FullName:           u.FullName,
		Phone:              u.Phone,
		IsActive:           u.IsActive,
		IsAdmin:            u.IsAdmin,
		RegistrationStatus: string(u.RegistrationStatus),
		LoginStatus:        string(u.LoginStatus),
		PaymentStatus:      string(u.PaymentStatus),
		ApplicationStatus:  string(u.ApplicationStatus),
		CreatedAt:          u.CreatedAt,
	}
}

// RegistrationDetails is the public status lookup by email.
type RegistrationDetails struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	PaymentStatus     string `json:"payment_status"`
	ApplicationStatus string `json:"application_status"`
}

type ApplicantLookup struct {
	ID           uint           `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PersonalInfo map[string]any `json:"personal_info"`
}
