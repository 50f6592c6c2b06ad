package controllers

import (
	"errors"
	"fmt"

	"timber-portal/controllers/helpers"
	"timber-portal/models"
	"timber-portal/services"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OrganisationController is the super-admin surface for managing
// organisations and their user accounts.
type OrganisationController struct {
	DB   *gorm.DB
	Mail *services.MailService
}

func NewOrganisationController(DB *gorm.DB) *OrganisationController {
	return &OrganisationController{DB: DB, Mail: services.NewMailService()}
}

func (c *OrganisationController) CreateOrganisation(ctx *fiber.Ctx) error {
	var input struct {
		Code         string `json:"code" validate:"required,min=2,max=16"`
		Name         string `json:"name" validate:"required,min=3"`
		Prefix       string `json:"prefix" validate:"required,min=1,max=8"`
		ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	actorID := int(ctx.Locals("userID").(float64))
	organisation := models.Organisation{
		Code:         input.Code,
		Name:         input.Name,
		Prefix:       input.Prefix,
		ContactEmail: input.ContactEmail,
		IsActive:     true,
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
	}

	if err := c.DB.Create(&organisation).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	helpers.InsertActivityLog(c.DB, organisation.Code, "ORGANISATION_CREATED", "Organisation "+organisation.Name+" created", actorID)

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Organisation created successfully",
		"data":    organisation,
	})
}

func (c *OrganisationController) GetAllOrganisations(ctx *fiber.Ctx) error {
	var organisations []models.Organisation
	if err := c.DB.Order("name asc").Find(&organisations).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    organisations,
		"total":   len(organisations),
	})
}

func (c *OrganisationController) GetOrganisationByID(ctx *fiber.Ctx) error {
	var organisation models.Organisation
	if err := c.DB.First(&organisation, "id = ?", ctx.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "organisation not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    organisation,
	})
}

func (c *OrganisationController) UpdateOrganisation(ctx *fiber.Ctx) error {
	var input struct {
		Name         string `json:"name" validate:"required,min=3"`
		ContactEmail string `json:"contact_email" validate:"omitempty,email"`
		IsActive     *bool  `json:"is_active"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var organisation models.Organisation
	if err := c.DB.First(&organisation, "id = ?", ctx.Params("id")).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "organisation not found"})
	}

	organisation.Name = input.Name
	organisation.ContactEmail = input.ContactEmail
	if input.IsActive != nil {
		organisation.IsActive = *input.IsActive
	}
	organisation.UpdatedBy = int(ctx.Locals("userID").(float64))

	if err := c.DB.Save(&organisation).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Organisation updated successfully",
		"data":    organisation,
	})
}

// CreateUser creates an account inside an organisation. The initial
// password is generated and mailed, never returned in the response.
func (c *OrganisationController) CreateUser(ctx *fiber.Ctx) error {
	var input struct {
		Username       string            `json:"username" validate:"required,min=3"`
		Name           string            `json:"name" validate:"required,min=3"`
		Email          string            `json:"email" validate:"required,email"`
		Role           string            `json:"role" validate:"required,oneof=producer org-admin"`
		OrganisationID types.SnowflakeID `json:"organisation_id"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var organisation models.Organisation
	if err := c.DB.First(&organisation, "id = ? AND is_active = ?", input.OrganisationID, true).Error; err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "organisation not found"})
	}

	password := utils.GeneratePassword(12)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to hash password"})
	}

	actorID := int(ctx.Locals("userID").(float64))
	user := models.User{
		Username:       input.Username,
		Name:           input.Name,
		Email:          input.Email,
		Password:       string(hashed),
		Role:           input.Role,
		OrganisationID: input.OrganisationID,
		IsActive:       true,
		CreatedBy:      actorID,
		UpdatedBy:      actorID,
	}

	if err := c.DB.Create(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Mail.SendCredentials(&user, password)
	helpers.InsertActivityLog(c.DB, user.Username, "USER_CREATED",
		fmt.Sprintf("User %s (%s) created in %s", user.Username, user.Role, organisation.Name), actorID)

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User created, credentials sent by mail",
		"data":    user,
	})
}

// resetUserPassword issues a fresh generated password for the account and
// stores its hash. Active sessions are killed so the old credential stops
// working immediately.
func resetUserPassword(db *gorm.DB, user *models.User, actorID int) (string, error) {
	password := utils.GeneratePassword(12)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user.Password = string(hashed)
	user.UpdatedBy = actorID
	if err := db.Save(user).Error; err != nil {
		return "", err
	}

	db.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Update("is_active", false)
	return password, nil
}

// ResendUserCredentials regenerates an account's password and mails the new
// credentials, for users who lost the original mail.
func (c *OrganisationController) ResendUserCredentials(ctx *fiber.Ctx) error {
	var user models.User
	if err := c.DB.First(&user, "id = ?", ctx.Params("userId")).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	if !user.IsActive {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user is deactivated"})
	}

	actorID := int(ctx.Locals("userID").(float64))
	password, err := resetUserPassword(c.DB, &user, actorID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reset password"})
	}

	c.Mail.SendCredentials(&user, password)
	helpers.InsertActivityLog(c.DB, user.Username, "USER_CREDENTIALS_RESENT",
		fmt.Sprintf("Credentials for %s resent to %s", user.Username, user.Email), actorID)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Credentials sent by mail",
	})
}

func (c *OrganisationController) GetOrganisationUsers(ctx *fiber.Ctx) error {
	var users []models.User
	if err := c.DB.Where("organisation_id = ?", ctx.Params("id")).
		Order("username asc").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    users,
		"total":   len(users),
	})
}

// SetUserActive enables or disables an account and kills its sessions.
func (c *OrganisationController) SetUserActive(ctx *fiber.Ctx) error {
	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := c.DB.First(&user, "id = ?", ctx.Params("userId")).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	user.IsActive = input.IsActive
	user.UpdatedBy = int(ctx.Locals("userID").(float64))
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !input.IsActive {
		c.DB.Model(&models.UserSession{}).
			Where("user_id = ? AND is_active = ?", user.ID, true).
			Update("is_active", false)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
	})
}
