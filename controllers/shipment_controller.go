package controllers

import (
	"timber-portal/controllers/helpers"
	"timber-portal/models"
	"timber-portal/repositories"
	"timber-portal/services"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShipmentController struct {
	DB   *gorm.DB
	Mail *services.MailService
}

func NewShipmentController(DB *gorm.DB) *ShipmentController {
	return &ShipmentController{DB: DB, Mail: services.NewMailService()}
}

func (c *ShipmentController) shipmentOrgs(shipment *models.Shipment) (*models.Organisation, *models.Organisation, error) {
	var from, to models.Organisation
	if err := c.DB.First(&from, "id = ?", shipment.FromOrganisationID).Error; err != nil {
		return nil, nil, err
	}
	if err := c.DB.First(&to, "id = ?", shipment.ToOrganisationID).Error; err != nil {
		return nil, nil, err
	}
	return &from, &to, nil
}

func (c *ShipmentController) CreateShipment(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	var input struct {
		ToOrganisationID types.SnowflakeID   `json:"to_organisation_id"`
		TransportCost    decimal.NullDecimal `json:"transport_cost"`
		Notes            string              `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.CreateShipment(actor, input.ToOrganisationID, input.TransportCost, input.Notes)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Shipment created",
		"data":    shipment,
	})
}

func (c *ShipmentController) GetAllShipments(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	repo := repositories.NewShipmentRepository(c.DB)
	shipments, err := repo.ListShipments(actor)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    shipments,
		"total":   len(shipments),
	})
}

// GetShipmentByID returns the shipment together with its attached packages.
func (c *ShipmentController) GetShipmentByID(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.GetShipment(actor, shipmentID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	packages, err := repo.AttachedPackages(shipment.ID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"shipment": shipment,
			"packages": packages,
		},
	})
}

func (c *ShipmentController) AttachPackage(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	var input struct {
		PackageID types.SnowflakeID `json:"package_id"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewShipmentRepository(c.DB)
	if err := repo.AttachPackage(actor, shipmentID, input.PackageID); err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Package attached",
	})
}

func (c *ShipmentController) DetachPackage(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	packageID, err := parseSnowflakeParam(ctx, "packageId")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewShipmentRepository(c.DB)
	if err := repo.DetachPackage(actor, shipmentID, packageID); err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Package detached",
	})
}

func (c *ShipmentController) Submit(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.Submit(actor, shipmentID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	if from, to, err := c.shipmentOrgs(shipment); err == nil {
		c.Mail.SendShipmentSubmitted(shipment, from, to)
	}

	helpers.InsertActivityLog(c.DB, shipment.Code, "SHIPMENT_SUBMITTED",
		"Shipment submitted for review", int(actor.UserID))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment submitted",
		"data":    shipment,
	})
}

func (c *ShipmentController) Accept(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.Accept(actor, shipmentID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	if from, to, err := c.shipmentOrgs(shipment); err == nil {
		c.Mail.SendShipmentReviewed(shipment, from, to)
	}

	helpers.InsertActivityLog(c.DB, shipment.Code, "SHIPMENT_ACCEPTED",
		"Shipment accepted, packages transferred", int(actor.UserID))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment accepted",
		"data":    shipment,
	})
}

func (c *ShipmentController) Reject(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.Reject(actor, shipmentID, input.Reason)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	if from, to, err := c.shipmentOrgs(shipment); err == nil {
		c.Mail.SendShipmentReviewed(shipment, from, to)
	}

	helpers.InsertActivityLog(c.DB, shipment.Code, "SHIPMENT_REJECTED",
		"Shipment rejected: "+shipment.RejectionReason, int(actor.UserID))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment rejected",
		"data":    shipment,
	})
}

func (c *ShipmentController) Cancel(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewShipmentRepository(c.DB)
	shipment, err := repo.Cancel(actor, shipmentID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment cancelled back to draft",
		"data":    shipment,
	})
}

func (c *ShipmentController) DeleteShipment(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	shipmentID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewShipmentRepository(c.DB)
	if err := repo.DeleteDraft(actor, shipmentID); err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment deleted",
	})
}
