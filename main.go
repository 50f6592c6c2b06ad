package main

import (
	"log"

	"timber-portal/config"
	"timber-portal/controllers/idgen"
	"timber-portal/database"
	"timber-portal/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupOrganisationRoutes(app, db)
	routes.SetupReferenceRoutes(app, db)
	routes.SetupInventoryRoutes(app, db)
	routes.SetupProductionRoutes(app, db)
	routes.SetupShipmentRoutes(app, db)
	routes.SetupDashboardRoutes(app, db)

	log.Fatal(app.Listen(":" + config.APP_PORT))
}
