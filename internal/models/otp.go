package models

import "time"

type OTP struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"size:255;index"`
	Phone     string    `gorm:"size:32;index"`
	Code      string    `gorm:"size:10;not null"`
	Purpose   string    `gorm:"size:32;default:'registration'"`
	Attempts  int       `gorm:"default:0"`
	IsUsed    bool      `gorm:"default:false;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
