package main

import (
	"venueplanner/core/server"
)

// @title VenuePlanner API
// @version 1.0
// @description API backend for VenuePlanner - group outing planning with AI venue suggestions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@venueplanner.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	server.Run()
}
