package repositories

import (
	"fmt"
	"sync"
	"testing"

	"timber-portal/controllers/idgen"
	"timber-portal/models"
	"timber-portal/types"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var idgenOnce sync.Once

// openTestDB gives each test its own in-memory database with the ledger
// schema migrated. cache=shared keeps the database alive across the pool's
// connections for the duration of the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	idgenOnce.Do(idgen.Init)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.Organisation{},
		&models.ReferenceOption{},
		&models.InventoryPackage{},
		&models.PackageCounter{},
		&models.ProductionEntry{},
		&models.ProductionInput{},
		&models.ProductionOutput{},
		&models.Shipment{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedOrganisation(t *testing.T, db *gorm.DB, code, prefix string) *models.Organisation {
	t.Helper()
	org := models.Organisation{Code: code, Name: "Org " + code, Prefix: prefix, IsActive: true}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("seed organisation %s: %v", code, err)
	}
	return &org
}

func seedProcess(t *testing.T, db *gorm.DB, code, value string) *models.ReferenceOption {
	t.Helper()
	process := models.ReferenceOption{TableName: models.RefTableProcess, Code: code, Value: value, IsActive: true}
	if err := db.Create(&process).Error; err != nil {
		t.Fatalf("seed process %s: %v", code, err)
	}
	return &process
}

func seedPackage(t *testing.T, db *gorm.DB, orgID types.SnowflakeID, number string, pieces int, volume string) *models.InventoryPackage {
	t.Helper()
	pkg := models.InventoryPackage{
		PackageNumber:  number,
		OrganisationID: orgID,
		Status:         models.PackageStatusProduced,
		Pieces:         pieces,
		VolumeM3:       decimal.RequireFromString(volume),
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("seed package %s: %v", number, err)
	}
	return &pkg
}

func producerOf(org *models.Organisation) models.Actor {
	return models.Actor{UserID: 1, Role: models.RoleProducer, OrganisationID: org.ID}
}

func adminOf(org *models.Organisation) models.Actor {
	return models.Actor{UserID: 2, Role: models.RoleOrgAdmin, OrganisationID: org.ID}
}
