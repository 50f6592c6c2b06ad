package database

import (
	"log"

	"timber-portal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedReferenceOptions(db)
	SeedSuperAdmin(db)
}

// SeedReferenceOptions loads the option lists the portal forms depend on.
// Process options carry the category code used for package numbering.
func SeedReferenceOptions(db *gorm.DB) {
	processes := []models.ReferenceOption{
		{TableName: models.RefTableProcess, Code: "CA", Value: "Calibrating", SortOrder: 1},
		{TableName: models.RefTableProcess, Code: "FJ", Value: "Finger Jointing", SortOrder: 2},
		{TableName: models.RefTableProcess, Code: "SA", Value: "Sanding", SortOrder: 3},
		{TableName: models.RefTableProcess, Code: "PL", Value: "Planing", SortOrder: 4},
		{TableName: models.RefTableProcess, Code: "KD", Value: "Kiln Drying", SortOrder: 5},
	}

	options := []models.ReferenceOption{
		{TableName: models.RefTableWoodSpecies, Value: "Spruce", SortOrder: 1},
		{TableName: models.RefTableWoodSpecies, Value: "Pine", SortOrder: 2},
		{TableName: models.RefTableWoodSpecies, Value: "Birch", SortOrder: 3},
		{TableName: models.RefTableHumidity, Value: "8-10%", SortOrder: 1},
		{TableName: models.RefTableHumidity, Value: "10-12%", SortOrder: 2},
		{TableName: models.RefTableHumidity, Value: "KD 18%", SortOrder: 3},
		{TableName: models.RefTableType, Value: "Solid", SortOrder: 1},
		{TableName: models.RefTableType, Value: "Finger Jointed", SortOrder: 2},
		{TableName: models.RefTableProcessing, Value: "Rough", SortOrder: 1},
		{TableName: models.RefTableProcessing, Value: "Planed", SortOrder: 2},
		{TableName: models.RefTableProcessing, Value: "Calibrated", SortOrder: 3},
		{TableName: models.RefTableFsc, Value: "FSC 100%", SortOrder: 1},
		{TableName: models.RefTableFsc, Value: "FSC Mix", SortOrder: 2},
		{TableName: models.RefTableFsc, Value: "Controlled Wood", SortOrder: 3},
		{TableName: models.RefTableQuality, Value: "A", SortOrder: 1},
		{TableName: models.RefTableQuality, Value: "B", SortOrder: 2},
		{TableName: models.RefTableQuality, Value: "C", SortOrder: 3},
	}

	for _, p := range processes {
		var existing models.ReferenceOption
		if err := db.Where("table_name = ? AND code = ?", p.TableName, p.Code).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&p)
			}
		}
	}

	for _, o := range options {
		var existing models.ReferenceOption
		if err := db.Where("table_name = ? AND value = ?", o.TableName, o.Value).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&o)
			}
		}
	}
}

func SeedSuperAdmin(db *gorm.DB) {
	var existing models.User
	err := db.Where("role = ?", models.RoleSuperAdmin).First(&existing).Error
	if err == nil {
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("Unexpected DB error: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	admin := models.User{
		Username: "admin",
		Password: string(hashed),
		Name:     "Portal Admin",
		Email:    "admin@timber-portal.local",
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed super admin: %v", err)
	}
}
