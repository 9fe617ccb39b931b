package main

import (
	"chat_message_service/internal/chat/router"

	"github.com/gofiber/fiber/v2"
)

// 此程式用於init swagger
// swag init output ./docs
func main() {
	app := fiber.New()

	router.RegisterRoutes(app, nil, nil)
}
