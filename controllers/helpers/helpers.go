package helpers

import (
	"time"

	"timber-portal/models"
	"timber-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ActorFromContext rebuilds the caller identity that the auth middleware
// stored in Locals.
func ActorFromContext(ctx *fiber.Ctx) models.Actor {
	actor := models.Actor{}
	if userID, ok := ctx.Locals("userID").(float64); ok {
		actor.UserID = uint(userID)
	}
	if role, ok := ctx.Locals("role").(string); ok {
		actor.Role = role
	}
	if orgID, ok := ctx.Locals("orgID").(int64); ok {
		actor.OrganisationID = types.SnowflakeID(orgID)
	}
	return actor
}

// InsertActivityLog inserts a new activity log record.
func InsertActivityLog(db *gorm.DB, refNo, action, detail string, actor int) error {
	log := models.ActivityLog{
		RefNo:     refNo,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
		CreatedBy: actor,
		UpdatedAt: time.Now(),
		UpdatedBy: actor,
	}

	if err := db.Create(&log).Error; err != nil {
		return err
	}

	return nil
}
