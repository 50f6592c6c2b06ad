package routes

import (
	"timber-portal/config"
	"timber-portal/controllers"
	"timber-portal/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupDashboardRoutes(app *fiber.App, db *gorm.DB) {
	dashboardController := controllers.NewDashboardController(db)

	api := app.Group(config.MAIN_ROUTES+"/dashboard", middleware.AuthMiddleware)
	api.Get("/summary", dashboardController.GetSummary)

	admin := app.Group(config.MAIN_ROUTES+"/dashboard", middleware.AuthMiddleware, middleware.RequireSuperAdmin)
	admin.Get("/overview", dashboardController.GetOverview)
	admin.Get("/overview/excel", dashboardController.ExportOverview)
}
