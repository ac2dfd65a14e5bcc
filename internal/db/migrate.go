package db

import (
	"finboard/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Account{},
		&models.Transaction{},
		&models.Asset{},
		&models.Strategy{},
		&models.Tag{},
		&models.Operation{},
		&models.Movement{},
		&models.Attachment{},
		&models.PerformanceSnapshot{},
		&models.SystemSetting{},
	)
}
