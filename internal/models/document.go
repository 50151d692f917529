package models

import "time"

type Document struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_documents_user_type" json:"user_id"`
	DocumentType    string    `gorm:"size:64;not null;uniqueIndex:idx_documents_user_type" json:"document_type"`
	FileName        string    `gorm:"size:255;not null" json:"file_name"`
	FilePath        string    `gorm:"size:500;not null" json:"file_path"`
	FileURL         string    `gorm:"size:1000" json:"file_url"`
	ThumbnailPath   string    `gorm:"size:500" json:"-"`
	ThumbnailURL    string    `gorm:"size:1000" json:"thumbnail_url,omitempty"`
	StorageProvider string    `gorm:"size:20" json:"storage_provider"`
	FileSize        int64     `json:"file_size"`
	MimeType        string    `gorm:"size:100" json:"mime_type"`
	UploadedAt      time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
