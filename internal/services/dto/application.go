package dto

import (
	"encoding/json"
	"time"

	"admissions_backend/internal/models"
)

type ApplicationView struct {
	ID                uint           `json:"id"`
	CampusPreference  string         `json:"campus_preference"`
	ProgramType       string         `json:"program_type"`
	Department        string         `json:"department"`
	Specialization    string         `json:"specialization"`
	PersonalDetails   map[string]any `json:"personal_details"`
	AcademicDetails   map[string]any `json:"academic_details"`
	ExperienceDetails map[string]any `json:"experience_details"`
	ResearchDetails   map[string]any `json:"research_details"`
	Status            string         `json:"status"`
	CurrentStep       int            `json:"current_step"`
	SubmissionDate    *time.Time     `json:"submission_date,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// JSONMap decodes a JSON column into a map. Empty or malformed columns yield an empty map.
func JSONMap(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

func NewApplicationView(app *models.Application) *ApplicationView {
	return &ApplicationView{
		ID:                app.ID,
		CampusPreference:  app.CampusPreference,
		ProgramType:       app.ProgramType,
		Department:        app.Department,
		Specialization:    app.Specialization,
		PersonalDetails:   JSONMap(app.PersonalDetails),
		AcademicDetails:   JSONMap(app.AcademicDetails),
		ExperienceDetails: JSONMap(app.ExperienceDetails),
		ResearchDetails:   JSONMap(app.ResearchDetails),
		Status:            string(app.Status),
		CurrentStep:       app.CurrentStep,
		SubmissionDate:    app.SubmissionDate,
		UpdatedAt:         app.UpdatedAt,
	}
}

// ApplicationUpdate is a partial update; nil fields are left alone.
type ApplicationUpdate struct {
	CampusPreference  *string        `json:"campus_preference" validate:"omitempty,max=100"`
	ProgramType       *string        `json:"program_type" validate:"omitempty,max=50"`
	Department        *string        `json:"department" validate:"omitempty,max=255"`
	Specialization    *string        `json:"specialization" validate:"omitempty,max=255"`
	PersonalDetails   map[string]any `json:"personal_details"`
	AcademicDetails   map[string]any `json:"academic_details"`
	ExperienceDetails map[string]any `json:"experience_details"`
	ResearchDetails   map[string]any `json:"research_details"`
	CurrentStep       *int           `json:"current_step" validate:"omitempty,min=1,max=20"`
}

// SubmitPayload is the one-shot submission keyed by the applicant's email or phone.
type SubmitPayload struct {
	Email        string         `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone        string         `json:"phone"`
	Personal     map[string]any `json:"personal"`
	Address      map[string]any `json:"address"`
	Education    map[string]any `json:"education"`
	UGEducation  map[string]any `json:"ugEducation"`
	PGEducation  map[string]any `json:"pgEducation"`
	Documents    map[string]any `json:"documents"`
	ExamSchedule map[string]any `json:"examSchedule"`
}

type SubmitResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ApplicationStatusUpdate struct {
	Status string `json:"status" validate:"required,is-application-status"`
}

// StepPayload is one autosaved wizard step.
type StepPayload struct {
	SessionID string         `json:"session_id" validate:"required,max=128"`
	UserID    string         `json:"user_id" validate:"max=255"`
	Step      string         `json:"step" validate:"max=64"`
	Data      map[string]any `json:"data" validate:"required"`
	// Version, when sent, must match the stored version or the write is rejected.
	Version *int `json:"version" validate:"omitempty,min=0"`
}

type StepSavedResponse struct {
	Message string `json:"message"`
	Version int    `json:"version"`
}

type CachedApplication struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Steps     map[string]any `json:"steps"`
	Version   int            `json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewCachedApplication(c *models.ApplicationCache) CachedApplication {
	return CachedApplication{
		SessionID: c.SessionID,
		UserID:    c.UserID,
		Steps:     JSONMap(c.Steps),
		Version:   c.Version,
		UpdatedAt: c.UpdatedAt,
	}
}

type CachedApplicationsResponse struct {
	CachedApplications []CachedApplication `json:"cached_applications"`
}
