package models

import (
	"time"

	"gorm.io/datatypes"
)

type Application struct {
	ID                uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint              `gorm:"uniqueIndex;not null" json:"user_id"`
	CampusPreference  string            `gorm:"size:100" json:"campus_preference"`
	ProgramType       string            `gorm:"size:50" json:"program_type"`
	Department        string            `gorm:"size:255" json:"department"`
	Specialization    string            `gorm:"size:255" json:"specialization"`
	PersonalDetails   datatypes.JSON    `json:"personal_details"`
	AcademicDetails   datatypes.JSON    `json:"academic_details"`
	ExperienceDetails datatypes.JSON    `json:"experience_details"`
	ResearchDetails   datatypes.JSON    `json:"research_details"`
	CurrentStep       int               `gorm:"default:1" json:"current_step"`
	Status            ApplicationStatus `gorm:"size:20;default:'draft';index" json:"status"`
	SubmissionDate    *time.Time        `json:"submission_date"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
