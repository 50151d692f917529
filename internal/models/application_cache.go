package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApplicationCache holds multi-step form drafts keyed by a client-generated session id.
type ApplicationCache struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string         `gorm:"size:128;uniqueIndex;not null" json:"session_id"`
	UserID    string         `gorm:"size:255;index" json:"user_id"`
	Steps     datatypes.JSON `json:"steps"`
	Version   int            `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
