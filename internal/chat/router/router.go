package router

import (
	"context"

	"chat_message_service/internal/chat/app"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册訊息相關的路由
// @title Chat Message Service API
// @version 1.0
// @description API documentation for Chat Message Service
// @BasePath /
func RegisterRoutes(r *fiber.App, messageHandler *app.MessageHandler, chatWebsocket *app.ChatWebsocketHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)

	messageRoutes := r.Group("/api/messages")
	messageRoutes.Post("/", messageHandler.CreateMessage)
	messageRoutes.Get("/", messageHandler.GetAllMessages)
	messageRoutes.Get("/room/:roomName", messageHandler.GetMessagesByRoom)
	messageRoutes.Get("/room/:roomName/page", messageHandler.GetMessagesByRoomPaginated)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
