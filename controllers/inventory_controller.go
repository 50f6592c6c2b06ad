package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"timber-portal/controllers/helpers"
	"timber-portal/models"
	"timber-portal/repositories"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(DB *gorm.DB) *InventoryController {
	return &InventoryController{DB: DB}
}

func (c *InventoryController) GetAllPackages(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	var orgFilter types.SnowflakeID
	if raw := ctx.Query("organisation_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid organisation_id"})
		}
		orgFilter = types.SnowflakeID(id)
	}

	repo := repositories.NewInventoryRepository(c.DB)
	packages, err := repo.ListPackages(actor, ctx.Query("status"), orgFilter)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    packages,
		"total":   len(packages),
	})
}

func (c *InventoryController) GetPackageByID(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid package id"})
	}

	repo := repositories.NewInventoryRepository(c.DB)
	pkg, err := repo.GetPackage(actor, types.SnowflakeID(id))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    pkg,
	})
}

type packageInput struct {
	PackageNumber string             `json:"package_number" validate:"required"`
	Pieces        int                `json:"pieces" validate:"min=0"`
	VolumeM3      decimal.Decimal    `json:"volume_m3"`
	ProductNameID *types.SnowflakeID `json:"product_name_id"`
	WoodSpeciesID *types.SnowflakeID `json:"wood_species_id"`
	HumidityID    *types.SnowflakeID `json:"humidity_id"`
	TypeID        *types.SnowflakeID `json:"type_id"`
	ProcessingID  *types.SnowflakeID `json:"processing_id"`
	FscID         *types.SnowflakeID `json:"fsc_id"`
	QualityID     *types.SnowflakeID `json:"quality_id"`
	Thickness     string             `json:"thickness"`
	Width         string             `json:"width"`
	Length        string             `json:"length"`
}

func (in packageInput) attributes() repositories.PackageAttributes {
	return repositories.PackageAttributes{
		ProductNameID: in.ProductNameID,
		WoodSpeciesID: in.WoodSpeciesID,
		HumidityID:    in.HumidityID,
		TypeID:        in.TypeID,
		ProcessingID:  in.ProcessingID,
		FscID:         in.FscID,
		QualityID:     in.QualityID,
		Thickness:     in.Thickness,
		Width:         in.Width,
		Length:        in.Length,
	}
}

// CreateInitialPackage registers stock that exists before the portal took
// over: the caller supplies the package number instead of the allocator.
func (c *InventoryController) CreateInitialPackage(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	var input packageInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var org models.Organisation
	if err := c.DB.First(&org, "id = ?", actor.OrganisationID).Error; err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "organisation not found"})
	}

	repo := repositories.NewInventoryRepository(c.DB)
	pkg, err := repo.CreateInitialPackage(actor, org, input.PackageNumber, input.attributes(), input.Pieces, input.VolumeM3)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	helpers.InsertActivityLog(c.DB, pkg.PackageNumber, "PACKAGE_STOCKED",
		"Initial stock registered", int(actor.UserID))

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Package created successfully",
		"data":    pkg,
	})
}

// ResyncCounter realigns the sequence counter of one organisation/process
// scope with the highest package number actually issued. Used after a
// manual import put numbers into the ledger behind the allocator's back.
func (c *InventoryController) ResyncCounter(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	var input struct {
		OrganisationID types.SnowflakeID `json:"organisation_id"`
		ProcessCode    string            `json:"process_code" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	orgID := input.OrganisationID
	if !actor.IsSuperAdmin() {
		orgID = actor.OrganisationID
	}
	if !actor.CanMutate(orgID) && !actor.IsSuperAdmin() {
		return utils.ErrorJSON(ctx, utils.NewForbiddenError("counters are organisation-scoped"))
	}

	var org models.Organisation
	if err := c.DB.First(&org, "id = ?", orgID).Error; err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "organisation not found"})
	}

	processCode := strings.ToUpper(input.ProcessCode)
	numberPrefix := fmt.Sprintf("%s-%s-", org.Prefix, processCode)

	var numbers []string
	if err := c.DB.Model(&models.InventoryPackage{}).
		Where("organisation_id = ? AND package_number LIKE ?", org.ID, numberPrefix+"%").
		Pluck("package_number", &numbers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	observedMax := 0
	for _, number := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(number, numberPrefix))
		if err != nil {
			continue
		}
		if seq > observedMax {
			observedMax = seq
		}
	}

	counters := repositories.NewCounterRepository(c.DB)
	if err := counters.Resync(org.ID, processCode, observedMax); err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	helpers.InsertActivityLog(c.DB, numberPrefix, "COUNTER_RESYNC",
		fmt.Sprintf("Counter resynced to %d", observedMax), int(actor.UserID))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"message":      "Counter resynced",
		"observed_max": observedMax,
	})
}

// ExportPackages streams the actor's stock as an Excel workbook.
func (c *InventoryController) ExportPackages(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	repo := repositories.NewInventoryRepository(c.DB)
	packages, err := repo.ListPackages(actor, ctx.Query("status"), 0)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	// resolve attribute ids to display values in one pass
	var options []models.ReferenceOption
	if err := c.DB.Find(&options).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	optionValue := make(map[types.SnowflakeID]string, len(options))
	for _, option := range options {
		optionValue[option.ID] = option.Value
	}
	lookup := func(id *types.SnowflakeID) string {
		if id == nil {
			return ""
		}
		return optionValue[*id]
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"Package Number", "Status", "Pieces", "Volume (m3)", "Product", "Species", "Humidity", "Type", "Processing", "FSC", "Quality", "Thickness", "Width", "Length"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, pkg := range packages {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pkg.PackageNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pkg.Status)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), pkg.Pieces)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), pkg.VolumeM3.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), lookup(pkg.ProductNameID))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), lookup(pkg.WoodSpeciesID))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), lookup(pkg.HumidityID))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), lookup(pkg.TypeID))
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), lookup(pkg.ProcessingID))
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), lookup(pkg.FscID))
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), lookup(pkg.QualityID))
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), pkg.Thickness)
		f.SetCellValue(sheet, fmt.Sprintf("M%d", row), pkg.Width)
		f.SetCellValue(sheet, fmt.Sprintf("N%d", row), pkg.Length)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="stock.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
