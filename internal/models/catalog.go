package models

type CampusInfo struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

type ProgramInfo struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	IsFullTime bool   `gorm:"not null" json:"is_full_time"`
	IsPartTime bool   `gorm:"not null" json:"is_part_time"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
}
