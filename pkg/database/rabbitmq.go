package database

import (
	"fmt"
	"time"

	"chat_message_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ConnectRabbitMQWithRetry 嘗試連線到 RabbitMQ，失敗時依設定間隔重試
func ConnectRabbitMQWithRetry(d Connection) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error

	for attempt := 1; attempt <= d.RetryCount; attempt++ {
		conn, err = amqp.Dial(d.ConnectStr)
		if err == nil {
			logger.Log.Info("RabbitMQ 連線成功", zap.Int("attempt", attempt))
			return conn, nil
		}

		logger.Log.Warn(
			"RabbitMQ 連線失敗",
			zap.Int("attempt", attempt),
			zap.Int("max", d.RetryCount),
			zap.Error(err),
		)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("無法連線 RabbitMQ[%s]，經過 %d 次嘗試: %v", d.ConnectStr, d.RetryCount, err)
}

// GetRabbitMQChannelWithRetry 使用已有的 RabbitMQ 連線嘗試取得 Channel
func GetRabbitMQChannelWithRetry(conn *amqp.Connection, maxRetries int, baseDelay time.Duration) (*amqp.Channel, error) {
	var ch *amqp.Channel
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ch, err = conn.Channel()
		if err == nil {
			logger.Log.Info("RabbitMQ Channel 建立成功", zap.Int("attempt", attempt))
			return ch, nil
		}

		logger.Log.Warn(
			"建立 RabbitMQ Channel 失敗",
			zap.Int("attempt", attempt),
			zap.Int("max", maxRetries),
			zap.Error(err),
		)
		time.Sleep(baseDelay * time.Second)
	}

	return nil, fmt.Errorf("無法取得 RabbitMQ Channel，經過 %d 次嘗試: %v", maxRetries, err)
}

// DeclareChatTopology 宣告 exchange 與 queue 並依 routing key 綁定
// exchange 與 queue 皆為 durable，訊息經 broker 確認後即持久化
func DeclareChatTopology(ch *amqp.Channel, exchange, queue, routingKey string) error {
	if err := ch.ExchangeDeclare(
		exchange, // exchange name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("exchange declare failed: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("queue declare failed: %w", err)
	}

	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind failed: %w", err)
	}

	return nil
}
