package routes

import (
	"timber-portal/config"
	"timber-portal/controllers"
	"timber-portal/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupProductionRoutes(app *fiber.App, db *gorm.DB) {
	productionController := controllers.NewProductionController(db)

	api := app.Group(config.MAIN_ROUTES+"/production", middleware.AuthMiddleware)

	api.Get("/", productionController.GetAllEntries)
	api.Post("/", productionController.CreateEntry)
	api.Get("/:id", productionController.GetEntryByID)
	api.Delete("/:id", productionController.DeleteEntry)

	api.Post("/:id/inputs", productionController.AddInput)
	api.Delete("/:id/inputs/:inputId", productionController.RemoveInput)
	api.Put("/:id/outputs", productionController.SaveOutputs)

	api.Post("/:id/validate", productionController.Validate)
	api.Post("/:id/revert", productionController.Revert)
}
