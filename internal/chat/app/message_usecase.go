package app

import (
	"context"
	"fmt"
	"strings"

	"chat_message_service/internal/chat/domain"
	"chat_message_service/internal/chat/repository"
	"chat_message_service/pkg/config"
	errprocess "chat_message_service/pkg/err"
	"chat_message_service/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MessageUseCase 負責訊息的建立 (Ingress) 與歷史查詢 (Query)
// 建立流程：驗證 → 套用預設房間 → Store 寫入 → broker 發布
// 發布失敗不影響已持久化的寫入，也不重試，只記錄為 degraded delivery
type MessageUseCase struct {
	msgRepo  repository.MessageRepository
	broker   repository.BrokerRepository
	validate *validator.Validate

	exchange   string
	routingKey string
	msgCfg     config.MessageConfig
}

// NewMessageUseCase init create message use case
func NewMessageUseCase(
	msgRepo repository.MessageRepository,
	broker repository.BrokerRepository,
	cfg config.Chat,
) *MessageUseCase {
	return &MessageUseCase{
		msgRepo:    msgRepo,
		broker:     broker,
		validate:   validator.New(),
		exchange:   cfg.RabbitMQ.Exchange,
		routingKey: cfg.RabbitMQ.RoutingKey,
		msgCfg:     cfg.Message,
	}
}

// CreateMessage 驗證並持久化一則訊息，成功後發布到 broker
// 同步回傳已持久化的訊息，不等待 fanout
func (uc *MessageUseCase) CreateMessage(ctx context.Context, req domain.CreateMessageRequest) (*domain.Message, error) {
	// 1. 正規化：空白修剪一次，房間預設也只在這裡套用一次
	req.Username = strings.TrimSpace(req.Username)
	req.Content = strings.TrimSpace(req.Content)
	req.RoomName = strings.TrimSpace(req.RoomName)

	if err := uc.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.RoomName == "" {
		req.RoomName = uc.msgCfg.DefaultRoom
	}

	// 2. Store 寫入，id 與 created_at 由 Store 指定
	msg := &domain.Message{
		Username: req.Username,
		Content:  req.Content,
		RoomName: req.RoomName,
	}

	storeCtx, cancelStore := context.WithTimeout(ctx, uc.msgCfg.StoreTimeout)
	defer cancelStore()
	if err := uc.msgRepo.Append(storeCtx, msg); err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, err)
	}

	// 3. 發布到 broker，失敗不回滾也不重試
	// 訊息已持久化但可能到不了線上訂閱者，留待對帳補發（不在此處理）
	publishCtx, cancelPublish := context.WithTimeout(ctx, uc.msgCfg.PublishTimeout)
	defer cancelPublish()
	if err := uc.broker.Publish(publishCtx, uc.exchange, uc.routingKey, msg); err != nil {
		logger.Log.Warn(
			"message persisted but publish failed, live delivery degraded",
			zap.Uint("message_id", msg.ID),
			zap.String("exchange", uc.exchange),
			zap.String("routing_key", uc.routingKey),
			zap.Error(err),
		)
	}

	return msg, nil
}

// GetMessagesByRoom 房間歷史，newest-first，最多 limit 筆
func (uc *MessageUseCase) GetMessagesByRoom(ctx context.Context, roomName string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = uc.msgCfg.ListLimit
	}
	messages, err := uc.msgRepo.FindByRoom(ctx, roomName, limit)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrQuery, err)
	}
	return messages, nil
}

// GetAllMessages 跨房間全域歷史，newest-first，最多 limit 筆
func (uc *MessageUseCase) GetAllMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = uc.msgCfg.ListLimit
	}
	messages, err := uc.msgRepo.FindAll(ctx, limit)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrQuery, err)
	}
	return messages, nil
}

// GetMessagesByRoomPaginated 房間分頁查詢，page 從 0 起算
func (uc *MessageUseCase) GetMessagesByRoomPaginated(ctx context.Context, roomName string, page, size int) (*domain.MessagePage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = uc.msgCfg.PageSize
	}

	messages, total, err := uc.msgRepo.FindByRoomPaginated(ctx, roomName, page, size)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrQuery, err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &domain.MessagePage{
		Content:       messages,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}
