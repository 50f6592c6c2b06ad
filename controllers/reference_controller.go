package controllers

import (
	"strings"

	"timber-portal/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReferenceController serves the option lists used by the production and
// inventory forms: product names, wood species, humidity, process and so on.
type ReferenceController struct {
	DB *gorm.DB
}

func NewReferenceController(DB *gorm.DB) *ReferenceController {
	return &ReferenceController{DB: DB}
}

var referenceTables = []string{
	models.RefTableProcess,
	models.RefTableProductName,
	models.RefTableWoodSpecies,
	models.RefTableHumidity,
	models.RefTableType,
	models.RefTableProcessing,
	models.RefTableFsc,
	models.RefTableQuality,
}

func isReferenceTable(name string) bool {
	for _, t := range referenceTables {
		if t == name {
			return true
		}
	}
	return false
}

// GetOptions returns the active options of one reference table.
func (c *ReferenceController) GetOptions(ctx *fiber.Ctx) error {
	table := ctx.Params("table")
	if !isReferenceTable(table) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown reference table"})
	}

	var options []models.ReferenceOption
	if err := c.DB.Where("table_name = ? AND is_active = ?", table, true).
		Order("sort_order asc, value asc").Find(&options).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    options,
		"total":   len(options),
	})
}

// GetAllOptions returns every reference table at once, keyed by table name,
// so the frontend can hydrate its forms with a single call.
func (c *ReferenceController) GetAllOptions(ctx *fiber.Ctx) error {
	var options []models.ReferenceOption
	if err := c.DB.Where("is_active = ?", true).
		Order("table_name asc, sort_order asc, value asc").Find(&options).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	grouped := make(map[string][]models.ReferenceOption, len(referenceTables))
	for _, option := range options {
		grouped[option.TableName] = append(grouped[option.TableName], option)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    grouped,
	})
}

// CreateOption adds a new option, super-admin only via routing.
func (c *ReferenceController) CreateOption(ctx *fiber.Ctx) error {
	var input struct {
		TableName string `json:"table_name" validate:"required"`
		Code      string `json:"code" validate:"omitempty,max=8"`
		Value     string `json:"value" validate:"required"`
		SortOrder int    `json:"sort_order"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !isReferenceTable(input.TableName) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown reference table"})
	}

	// process options carry the category code baked into package numbers
	if input.TableName == models.RefTableProcess && strings.TrimSpace(input.Code) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "process options require a code"})
	}

	actorID := int(ctx.Locals("userID").(float64))
	option := models.ReferenceOption{
		TableName: input.TableName,
		Code:      strings.ToUpper(strings.TrimSpace(input.Code)),
		Value:     input.Value,
		SortOrder: input.SortOrder,
		IsActive:  true,
		CreatedBy: actorID,
		UpdatedBy: actorID,
	}

	if err := c.DB.Create(&option).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Option created successfully",
		"data":    option,
	})
}

// UpdateOption changes value, ordering or active flag. The code of a
// process option is immutable once issued, package numbers depend on it.
func (c *ReferenceController) UpdateOption(ctx *fiber.Ctx) error {
	var input struct {
		Value     string `json:"value" validate:"required"`
		SortOrder int    `json:"sort_order"`
		IsActive  *bool  `json:"is_active"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var option models.ReferenceOption
	if err := c.DB.First(&option, "id = ?", ctx.Params("id")).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "option not found"})
	}

	option.Value = input.Value
	option.SortOrder = input.SortOrder
	if input.IsActive != nil {
		option.IsActive = *input.IsActive
	}
	option.UpdatedBy = int(ctx.Locals("userID").(float64))

	if err := c.DB.Save(&option).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Option updated successfully",
		"data":    option,
	})
}
