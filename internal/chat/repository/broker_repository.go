package repository

import (
	"context"
	"encoding/json"

	"chat_message_service/internal/chat/domain"

	"github.com/streadway/amqp"
)

// BrokerRepository definition at-least-once broker channel
// Publish 經 broker 確認後即持久化；Consume 的 delivery 需手動 Ack/Nack
type BrokerRepository interface {
	Publish(ctx context.Context, exchange, routingKey string, msg *domain.Message) error
	Consume(queue string) (<-chan amqp.Delivery, error)
}

type brokerRepository struct {
	channel *amqp.Channel
}

// NewBrokerRepository create a BrokerRepository
func NewBrokerRepository(channel *amqp.Channel) BrokerRepository {
	return &brokerRepository{channel: channel}
}

// Publish 序列化後發布，DeliveryMode 為 Persistent
// streadway 的 Publish 不吃 context，deadline 已過時直接放棄
func (r *brokerRepository) Publish(ctx context.Context, exchange, routingKey string, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return r.channel.Publish(
		exchange,   // exchange name
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (r *brokerRepository) Consume(queue string) (<-chan amqp.Delivery, error) {
	return r.channel.Consume(
		queue, // queue name
		"",    // consumer tag，留空由系統分配
		false, // autoAck 為 false，使用手動確認
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // arguments
	)
}
