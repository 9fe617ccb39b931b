package app

import (
	"context"
	"encoding/json"

	"chat_message_service/internal/chat/domain"
	"chat_message_service/internal/chat/repository"
	"chat_message_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Dispatcher 消費 broker queue，將已持久化的訊息 fanout 給線上訂閱者
// broker 為 at-least-once：crash 後重送會重播給訂閱者，只影響即時顯示，不寫 Store
type Dispatcher struct {
	broker      repository.BrokerRepository
	broadcaster Broadcaster
	queueName   string
}

// NewDispatcher 建構 Dispatcher 實例
func NewDispatcher(broker repository.BrokerRepository, broadcaster Broadcaster, queueName string) *Dispatcher {
	return &Dispatcher{
		broker:      broker,
		broadcaster: broadcaster,
		queueName:   queueName,
	}
}

// Start 開始消費訊息，阻塞直到 ctx 結束或 broker channel 關閉
func (d *Dispatcher) Start(ctx context.Context) error {
	msgs, err := d.broker.Consume(d.queueName)
	if err != nil {
		logger.Log.Errorf("無法開始消費 queue:", err, zap.String("queue", d.queueName))
		return err
	}

	logger.Log.Info("dispatcher 已啟動，等待訊息...", zap.String("queue", d.queueName))

	for {
		select {
		case delivery, ok := <-msgs:
			if !ok {
				logger.Log.Warn("broker 消費 channel 已關閉", zap.String("queue", d.queueName))
				return nil
			}
			d.handleDelivery(delivery)
		case <-ctx.Done():
			logger.Log.Info("dispatcher 收到停止訊號", zap.String("queue", d.queueName))
			return nil
		}
	}
}

// handleDelivery 廣播一則 delivery 並確認
// 廣播嘗試後即 Ack，零個訂閱者不是錯誤；訂閱者的問題由 hub 各自隔離
func (d *Dispatcher) handleDelivery(delivery amqp.Delivery) {
	var msg domain.Message
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		logger.Log.Errorf("解析訊息失敗:", err)
		// 格式錯誤重送也不會成功，丟棄不 requeue
		if err := delivery.Nack(false, false); err != nil {
			logger.Log.Errorf("Nack 訊息失敗:", err)
		}
		return
	}

	d.broadcaster.Publish(domain.PublicDestination, &msg)
	if msg.RoomName != "" {
		d.broadcaster.Publish(domain.RoomDestination(msg.RoomName), &msg)
	}

	if err := delivery.Ack(false); err != nil {
		logger.Log.Errorf("確認訊息失敗:", err, zap.Uint("message_id", msg.ID))
	}
}
