package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"timber-portal/controllers/helpers"
	"timber-portal/repositories"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(DB *gorm.DB) *DashboardController {
	return &DashboardController{DB: DB}
}

func (c *DashboardController) resolveOrgID(ctx *fiber.Ctx) (types.SnowflakeID, error) {
	actor := helpers.ActorFromContext(ctx)
	if !actor.IsSuperAdmin() {
		return actor.OrganisationID, nil
	}

	raw := ctx.Query("organisation_id")
	if raw == "" {
		return 0, utils.NewValidationError("organisation_id query parameter is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, utils.NewValidationError("invalid organisation_id")
	}
	return types.SnowflakeID(id), nil
}

// GetSummary bundles the stock, production and shipment metrics of one
// organisation into a single dashboard payload.
func (c *DashboardController) GetSummary(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	orgID, err := c.resolveOrgID(ctx)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewDashboardRepository(c.DB)

	stock, err := repo.StockSummary(actor, orgID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	production, err := repo.ProductionSummary(actor, orgID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	shipments, err := repo.ShipmentSummary(actor, orgID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"stock":      stock,
			"production": production,
			"shipments":  shipments,
		},
	})
}

// GetOverview is the super-admin roll-up across all organisations.
func (c *DashboardController) GetOverview(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	repo := repositories.NewDashboardRepository(c.DB)
	overviews, err := repo.OrganisationOverviews(actor)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    overviews,
		"total":   len(overviews),
	})
}

// ExportOverview streams the roll-up as an Excel workbook.
func (c *DashboardController) ExportOverview(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	repo := repositories.NewDashboardRepository(c.DB)
	overviews, err := repo.OrganisationOverviews(actor)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Organisation")
	f.SetCellValue(sheet, "B1", "Packages")
	f.SetCellValue(sheet, "C1", "Volume (m3)")
	f.SetCellValue(sheet, "D1", "Pending Shipments")

	for i, row := range overviews {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.OrganisationName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.Packages)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.VolumeM3.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), row.PendingShipments)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="overview.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
