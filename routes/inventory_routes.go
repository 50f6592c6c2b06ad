package routes

import (
	"timber-portal/config"
	"timber-portal/controllers"
	"timber-portal/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupInventoryRoutes(app *fiber.App, db *gorm.DB) {
	inventoryController := controllers.NewInventoryController(db)

	api := app.Group(config.MAIN_ROUTES+"/inventory", middleware.AuthMiddleware)

	api.Get("/", inventoryController.GetAllPackages)
	api.Get("/excel", inventoryController.ExportPackages)
	api.Post("/", inventoryController.CreateInitialPackage)
	api.Post("/counters/resync", inventoryController.ResyncCounter)
	api.Get("/:id", inventoryController.GetPackageByID)
}
