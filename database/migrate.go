package database

import (
	"fmt"

	"gorm.io/gorm"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/models"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Debug("database migrated", "models", len(models.All()))
	return nil
}

var defaultCampuses = []string{"Vadlamudi (Guntur)", "Hyderabad", "Visakhapatnam"}

var defaultPrograms = []models.ProgramInfo{
	{Name: "Computer Science and Engineering", IsFullTime: true, IsPartTime: true, IsActive: true},
	{Name: "Electronics and Communication Engineering", IsFullTime: true, IsPartTime: true, IsActive: true},
	{Name: "Mechanical Engineering", IsFullTime: true, IsPartTime: true, IsActive: true},
	{Name: "Civil Engineering", IsFullTime: true, IsPartTime: true, IsActive: true},
	{Name: "Biotechnology", IsFullTime: true, IsPartTime: false, IsActive: true},
	{Name: "Management Studies", IsFullTime: true, IsPartTime: true, IsActive: true},
	{Name: "Mathematics", IsFullTime: true, IsPartTime: true, IsActive: true},
}

// SeedCatalog inserts the default campuses and programs when the tables are empty.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CampusInfo{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			for _, name := range defaultCampuses {
				if err := tx.Create(&models.CampusInfo{Name: name, IsActive: true}).Error; err != nil {
					return fmt.Errorf("seed campus %s: %w", name, err)
				}
			}
		}

		if err := tx.Model(&models.ProgramInfo{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			programs := make([]models.ProgramInfo, len(defaultPrograms))
			copy(programs, defaultPrograms)
			if err := tx.Create(&programs).Error; err != nil {
				return fmt.Errorf("seed programs: %w", err)
			}
		}
		return nil
	})
}
