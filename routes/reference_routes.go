package routes

import (
	"timber-portal/config"
	"timber-portal/controllers"
	"timber-portal/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupReferenceRoutes(app *fiber.App, db *gorm.DB) {
	referenceController := controllers.NewReferenceController(db)

	api := app.Group(config.MAIN_ROUTES+"/references", middleware.AuthMiddleware)
	api.Get("/", referenceController.GetAllOptions)
	api.Get("/:table", referenceController.GetOptions)

	admin := app.Group(config.MAIN_ROUTES+"/references", middleware.AuthMiddleware, middleware.RequireSuperAdmin)
	admin.Post("/", referenceController.CreateOption)
	admin.Put("/:id", referenceController.UpdateOption)
}
