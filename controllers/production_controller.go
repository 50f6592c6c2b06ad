package controllers

import (
	"strconv"

	"timber-portal/controllers/helpers"
	"timber-portal/repositories"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductionController struct {
	DB *gorm.DB
}

func NewProductionController(DB *gorm.DB) *ProductionController {
	return &ProductionController{DB: DB}
}

func parseSnowflakeParam(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil {
		return 0, utils.NewValidationError("invalid " + name)
	}
	return types.SnowflakeID(id), nil
}

func (c *ProductionController) CreateEntry(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	var input struct {
		ProcessID      types.SnowflakeID `json:"process_id"`
		ProductionDate string            `json:"production_date" validate:"required,datetime=2006-01-02"`
		Notes          string            `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewProductionRepository(c.DB)
	entry, err := repo.CreateEntry(actor, input.ProcessID, input.ProductionDate, input.Notes)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Production entry created",
		"data":    entry,
	})
}

func (c *ProductionController) GetAllEntries(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	repo := repositories.NewProductionRepository(c.DB)
	entries, err := repo.ListEntries(actor)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"total":   len(entries),
	})
}

// GetEntryByID returns the entry together with its inputs and output rows.
func (c *ProductionController) GetEntryByID(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	entryID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewProductionRepository(c.DB)
	entry, err := repo.GetEntry(actor, entryID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	inputs, err := repo.ListInputs(entry.ID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	outputs, err := repo.ListOutputs(entry.ID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"entry":   entry,
			"inputs":  inputs,
			"outputs": outputs,
		},
	})
}

func (c *ProductionController) AddInput(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	entryID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	var input struct {
		PackageID  types.SnowflakeID `json:"package_id"`
		PiecesUsed int               `json:"pieces_used"`
		VolumeUsed decimal.Decimal   `json:"volume_used_m3"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewProductionRepository(c.DB)
	record, err := repo.AddInput(actor, entryID, input.PackageID, input.PiecesUsed, input.VolumeUsed)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Input added",
		"data":    record,
	})
}

func (c *ProductionController) RemoveInput(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	inputID, err := parseSnowflakeParam(ctx, "inputId")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewProductionRepository(c.DB)
	if err := repo.RemoveInput(actor, inputID); err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Input removed",
	})
}

// SaveOutputs replaces the draft's planned output rows with the submitted
// list. Rows keep their ids across saves, so the response maps each new
// row's position to the id the server assigned.
func (c *ProductionController) SaveOutputs(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	entryID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	var input struct {
		Outputs []repositories.OutputRowInput `json:"outputs"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewOutputRepository(c.DB)
	insertedIDs, err := repo.SaveOutputs(actor, entryID, input.Outputs)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	assigned := make(map[string]types.SnowflakeID, len(insertedIDs))
	for index, id := range insertedIDs {
		assigned[strconv.Itoa(index)] = id
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":      true,
		"message":      "Outputs saved",
		"assigned_ids": assigned,
	})
}

// Validate reserves the inputs, materialises the outputs as numbered
// packages and locks the entry.
func (c *ProductionController) Validate(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	entryID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewProductionRepository(c.DB)
	entry, err := repo.Validate(actor, entryID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	helpers.InsertActivityLog(c.DB, entry.ID.String(), "PRODUCTION_VALIDATED",
		"Production entry validated", int(actor.UserID))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Production entry validated",
		"data":    entry,
	})
}

// Revert undoes a validation: created packages are withdrawn and consumed
// stock is restored, exactly and only when nothing has left the organisation.
func (c *ProductionController) Revert(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	entryID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewProductionRepository(c.DB)
	entry, err := repo.Revert(actor, entryID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	helpers.InsertActivityLog(c.DB, entry.ID.String(), "PRODUCTION_REVERTED",
		"Production entry reverted to draft", int(actor.UserID))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Production entry reverted",
		"data":    entry,
	})
}

func (c *ProductionController) DeleteEntry(ctx *fiber.Ctx) error {
	actor := helpers.ActorFromContext(ctx)

	entryID, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	repo := repositories.NewProductionRepository(c.DB)
	if err := repo.DeleteDraft(actor, entryID); err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Production entry deleted",
	})
}
