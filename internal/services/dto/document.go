package dto

import (
	"time"

	"admissions_backend/internal/models"
)

type DocumentView struct {
	ID           uint      `json:"id"`
	DocumentType string    `json:"document_type"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func NewDocumentView(d *models.Document) DocumentView {
	return DocumentView{
		ID:           d.ID,
		DocumentType: d.DocumentType,
		FileName:     d.FileName,
		FileURL:      d.FileURL,
		ThumbnailURL: d.ThumbnailURL,
		FileSize:     d.FileSize,
		MimeType:     d.MimeType,
		UploadedAt:   d.UploadedAt,
	}
}

type MessageView struct {
	ID        uint      `json:"id"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageView(m *models.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		Subject:   m.Subject,
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}
