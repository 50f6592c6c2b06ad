package routes

import (
	"timber-portal/config"
	"timber-portal/controllers"
	"timber-portal/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupShipmentRoutes(app *fiber.App, db *gorm.DB) {
	shipmentController := controllers.NewShipmentController(db)

	api := app.Group(config.MAIN_ROUTES+"/shipments", middleware.AuthMiddleware)

	api.Get("/", shipmentController.GetAllShipments)
	api.Post("/", shipmentController.CreateShipment)
	api.Get("/:id", shipmentController.GetShipmentByID)
	api.Delete("/:id", shipmentController.DeleteShipment)

	api.Post("/:id/packages", shipmentController.AttachPackage)
	api.Delete("/:id/packages/:packageId", shipmentController.DetachPackage)

	api.Post("/:id/submit", shipmentController.Submit)
	api.Post("/:id/accept", shipmentController.Accept)
	api.Post("/:id/reject", shipmentController.Reject)
	api.Post("/:id/cancel", shipmentController.Cancel)
}
