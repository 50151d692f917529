package models

import "time"

// Message is an inbox item shown on the student dashboard.
type Message struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Subject   string     `gorm:"size:255;not null" json:"subject"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	IsRead    bool       `gorm:"default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
