package dto

import "time"

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminStats struct {
	RegisteredStudents  int64        `json:"registered_students"`
	PaymentsCompleted   int64        `json:"payments_completed"`
	ApplicationsFilled  int64        `json:"applications_filled"`
	ApplicationsPending int64        `json:"applications_pending"`
	RegistrationTrend   []DailyCount `json:"registration_trend"`
}

type AdminPayment struct {
	ID            uint      `json:"id"`
	UserEmail     string    `json:"user_email"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type AdminApplication struct {
	ID         uint      `json:"id"`
	UserEmail  string    `json:"user_email"`
	Campus     string    `json:"campus"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AdminDocument struct {
	ID           uint      `json:"id"`
	DocumentType string    `json:"document_type"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type AdminDocumentGroup struct {
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Documents []AdminDocument `json:"documents"`
}

type CatalogResponse struct {
	Campuses []CampusView  `json:"campuses,omitempty"`
	Programs []ProgramView `json:"programs,omitempty"`
}

type CampusView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProgramView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	IsFullTime bool   `json:"is_full_time"`
	IsPartTime bool   `json:"is_part_time"`
}
