package app

import (
	"context"

	"chat_message_service/internal/chat/domain"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// AutoMigrate moke auto migrate
func (m *MockMessageRepository) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

// Append moke append msg
func (m *MockMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByRoom moke find msg by room
func (m *MockMessageRepository) FindByRoom(ctx context.Context, roomName string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, roomName, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByRoomPaginated moke find msg by room paginated
func (m *MockMessageRepository) FindByRoomPaginated(ctx context.Context, roomName string, page, size int) ([]domain.Message, int64, error) {
	args := m.Called(ctx, roomName, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

// FindAll moke find all msg
func (m *MockMessageRepository) FindAll(ctx context.Context, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockBrokerRepository Mock BrokerRepository
type MockBrokerRepository struct {
	mock.Mock
}

// Publish moke publish msg
func (m *MockBrokerRepository) Publish(ctx context.Context, exchange, routingKey string, msg *domain.Message) error {
	args := m.Called(ctx, exchange, routingKey, msg)
	return args.Error(0)
}

// Consume moke consume queue
func (m *MockBrokerRepository) Consume(queue string) (<-chan amqp.Delivery, error) {
	args := m.Called(queue)
	if args.Get(0) != nil {
		return args.Get(0).(<-chan amqp.Delivery), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockBroadcaster Mock Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

// Publish moke broadcast msg
func (m *MockBroadcaster) Publish(destination string, msg *domain.Message) {
	m.Called(destination, msg)
}

// MockAcknowledger Mock amqp.Acknowledger
type MockAcknowledger struct {
	mock.Mock
}

// Ack moke ack delivery
func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	args := m.Called(tag, multiple)
	return args.Error(0)
}

// Nack moke nack delivery
func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	args := m.Called(tag, multiple, requeue)
	return args.Error(0)
}

// Reject moke reject delivery
func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	args := m.Called(tag, requeue)
	return args.Error(0)
}
