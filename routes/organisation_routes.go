package routes

import (
	"timber-portal/config"
	"timber-portal/controllers"
	"timber-portal/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupOrganisationRoutes(app *fiber.App, db *gorm.DB) {
	organisationController := controllers.NewOrganisationController(db)

	api := app.Group(config.MAIN_ROUTES+"/organisations", middleware.AuthMiddleware, middleware.RequireSuperAdmin)

	api.Get("/", organisationController.GetAllOrganisations)
	api.Post("/", organisationController.CreateOrganisation)
	api.Get("/:id", organisationController.GetOrganisationByID)
	api.Put("/:id", organisationController.UpdateOrganisation)
	api.Get("/:id/users", organisationController.GetOrganisationUsers)
	api.Post("/users", organisationController.CreateUser)
	api.Put("/users/:userId/active", organisationController.SetUserActive)
	api.Post("/users/:userId/resend-credentials", organisationController.ResendUserCredentials)
}
