package models

import "strings"

type User struct {
	BaseModel
	FullName           string                `gorm:"size:255;not null" json:"full_name"`
	Email              string                `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone              string                `gorm:"size:32;index" json:"phone"`
	PasswordHash       *string               `gorm:"size:255" json:"-"`
	IsActive           bool                  `gorm:"default:true" json:"is_active"`
	IsAdmin            bool                  `gorm:"default:false" json:"is_admin"`
	RegistrationStatus RegistrationStatus    `gorm:"size:20;default:'pending'" json:"registration_status"`
	LoginStatus        LoginStatus           `gorm:"size:20;default:'pending'" json:"login_status"`
	PaymentStatus      UserPaymentStatus     `gorm:"size:20;default:'pending'" json:"payment_status"`
	ApplicationStatus  UserApplicationStatus `gorm:"size:20;default:'locked'" json:"application_status"`

	Application *Application `gorm:"foreignKey:UserID" json:"-"`
	Documents   []Document   `gorm:"foreignKey:UserID" json:"-"`
}

// NormalizeEmail lower-cases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var phoneFormatting = strings.NewReplacer(" ", "", "-", "")

// NormalizePhone drops the spaces and dashes the phone rule allows, so stored and
// looked-up numbers compare equal.
func NormalizePhone(phone string) string {
	return phoneFormatting.Replace(strings.TrimSpace(phone))
}

// FirstName is the given name sent to the payment gateway.
func (u *User) FirstName() string {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		return "Student"
	}
	if first, _, ok := strings.Cut(name, " "); ok {
		return first
	}
	return name
}

func (u *User) HasPaid() bool {
	return u.PaymentStatus == UserPaymentSuccess
}
