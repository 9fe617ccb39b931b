package app

import (
	"errors"

	"chat_message_service/internal/chat/domain"
	"chat_message_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MessageHandler 處理訊息相關的 HTTP 請求
type MessageHandler struct {
	messageUC *MessageUseCase
}

// NewMessageHandler 創建新的 MessageHandler
func NewMessageHandler(messageUC *MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUC: messageUC,
	}
}

// CreateMessage 建立訊息
// @Summary 建立訊息
// @Description 驗證並持久化一則訊息，成功後發布到 broker 供 fanout
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body domain.CreateMessageRequest true "建立訊息請求"
// @Success 201 {object} domain.Message "已持久化的訊息"
// @Failure 400 {object} string "請求錯誤"
// @Failure 500 {object} string "服務器錯誤"
// @Router /api/messages [post]
func (h *MessageHandler) CreateMessage(c *fiber.Ctx) error {
	var req domain.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("CreateMessage request",
		zap.String("username", req.Username),
		zap.String("room", req.RoomName),
	)

	msg, err := h.messageUC.CreateMessage(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetMessagesByRoom 查詢房間歷史
// @Summary 查詢房間歷史
// @Description 指定房間的訊息，newest-first，最多 limit 筆
// @Tags Messages
// @Produce json
// @Param roomName path string true "房間名稱"
// @Param limit query int false "筆數上限" default(50)
// @Success 200 {array} domain.Message
// @Failure 500 {object} string "服務器錯誤"
// @Router /api/messages/room/{roomName} [get]
func (h *MessageHandler) GetMessagesByRoom(c *fiber.Ctx) error {
	roomName := c.Params("roomName")
	limit := c.QueryInt("limit", 0)

	messages, err := h.messageUC.GetMessagesByRoom(c.UserContext(), roomName, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(messages)
}

// GetMessagesByRoomPaginated 分頁查詢房間歷史
// @Summary 分頁查詢房間歷史
// @Description 指定房間的訊息分頁，page 從 0 起算，附帶總筆數與總頁數
// @Tags Messages
// @Produce json
// @Param roomName path string true "房間名稱"
// @Param page query int false "頁碼" default(0)
// @Param size query int false "每頁筆數" default(20)
// @Success 200 {object} domain.MessagePage
// @Failure 500 {object} string "服務器錯誤"
// @Router /api/messages/room/{roomName}/page [get]
func (h *MessageHandler) GetMessagesByRoomPaginated(c *fiber.Ctx) error {
	roomName := c.Params("roomName")
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 0)

	result, err := h.messageUC.GetMessagesByRoomPaginated(c.UserContext(), roomName, page, size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// GetAllMessages 查詢全域歷史
// @Summary 查詢全域歷史
// @Description 跨房間的訊息，newest-first，最多 limit 筆
// @Tags Messages
// @Produce json
// @Param limit query int false "筆數上限" default(50)
// @Success 200 {array} domain.Message
// @Failure 500 {object} string "服務器錯誤"
// @Router /api/messages [get]
func (h *MessageHandler) GetAllMessages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	messages, err := h.messageUC.GetAllMessages(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(messages)
}
