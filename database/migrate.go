package database

import (
	"timber-portal/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.LoginLog{},
		&models.Organisation{},
		&models.ReferenceOption{},
		&models.InventoryPackage{},
		&models.ProductionEntry{},
		&models.ProductionInput{},
		&models.ProductionOutput{},
		&models.Shipment{},
		&models.PackageCounter{},
		&models.ActivityLog{},
	)
}
