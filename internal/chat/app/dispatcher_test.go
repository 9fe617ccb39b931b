package app

import (
	"context"
	"encoding/json"
	"testing"

	"chat_message_service/internal/chat/domain"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func deliveryFor(t *testing.T, ack *MockAcknowledger, tag uint64, msg domain.Message) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(msg)
	assert.NoError(t, err)
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  tag,
		Body:         body,
	}
}

// 測試 Dispatcher：廣播到 public 與 room.<roomName>，廣播後 Ack
func TestDispatcher_BroadcastsPublicAndRoom(t *testing.T) {
	mockBroker := new(MockBrokerRepository)
	mockBroadcaster := new(MockBroadcaster)
	mockAck := new(MockAcknowledger)

	msg := domain.Message{ID: 1, Username: "alice", Content: "hi", RoomName: "general"}

	ch := make(chan amqp.Delivery, 1)
	ch <- deliveryFor(t, mockAck, 1, msg)
	close(ch)

	var recv <-chan amqp.Delivery = ch
	mockBroker.On("Consume", "chat.queue").Return(recv, nil)
	mockBroadcaster.On("Publish", domain.PublicDestination, mock.Anything).Return()
	mockBroadcaster.On("Publish", "room.general", mock.Anything).Return()
	mockAck.On("Ack", uint64(1), false).Return(nil)

	d := NewDispatcher(mockBroker, mockBroadcaster, "chat.queue")
	err := d.Start(context.Background())

	assert.NoError(t, err)
	mockBroadcaster.AssertNumberOfCalls(t, "Publish", 2)
	mockBroadcaster.AssertCalled(t, "Publish", domain.PublicDestination, mock.Anything)
	mockBroadcaster.AssertCalled(t, "Publish", "room.general", mock.Anything)
	mockAck.AssertExpectations(t)
}

// 測試 Dispatcher：broker 重送同一則訊息時重播給訂閱者（at-least-once），不寫 Store
func TestDispatcher_RedeliveryRebroadcasts(t *testing.T) {
	mockBroker := new(MockBrokerRepository)
	mockBroadcaster := new(MockBroadcaster)
	mockAck := new(MockAcknowledger)

	msg := domain.Message{ID: 5, Username: "bob", Content: "again", RoomName: "x"}

	ch := make(chan amqp.Delivery, 2)
	ch <- deliveryFor(t, mockAck, 1, msg)
	redelivered := deliveryFor(t, mockAck, 2, msg)
	redelivered.Redelivered = true
	ch <- redelivered
	close(ch)

	var recv <-chan amqp.Delivery = ch
	mockBroker.On("Consume", "chat.queue").Return(recv, nil)
	mockBroadcaster.On("Publish", mock.Anything, mock.Anything).Return()
	mockAck.On("Ack", mock.Anything, false).Return(nil)

	d := NewDispatcher(mockBroker, mockBroadcaster, "chat.queue")
	err := d.Start(context.Background())

	assert.NoError(t, err)
	// 每次 delivery 都是 public + room 兩個目的地
	mockBroadcaster.AssertNumberOfCalls(t, "Publish", 4)
	mockAck.AssertNumberOfCalls(t, "Ack", 2)
}

// 測試 Dispatcher：格式錯誤的 payload 丟棄不 requeue，也不廣播
func TestDispatcher_MalformedPayload(t *testing.T) {
	mockBroker := new(MockBrokerRepository)
	mockBroadcaster := new(MockBroadcaster)
	mockAck := new(MockAcknowledger)

	ch := make(chan amqp.Delivery, 1)
	ch <- amqp.Delivery{
		Acknowledger: mockAck,
		DeliveryTag:  9,
		Body:         []byte("not-json"),
	}
	close(ch)

	var recv <-chan amqp.Delivery = ch
	mockBroker.On("Consume", "chat.queue").Return(recv, nil)
	mockAck.On("Nack", uint64(9), false, false).Return(nil)

	d := NewDispatcher(mockBroker, mockBroadcaster, "chat.queue")
	err := d.Start(context.Background())

	assert.NoError(t, err)
	mockBroadcaster.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	mockAck.AssertExpectations(t)
}

// 測試 Dispatcher：房間為空時只廣播 public，仍然 Ack
func TestDispatcher_EmptyRoomOnlyPublic(t *testing.T) {
	mockBroker := new(MockBrokerRepository)
	mockBroadcaster := new(MockBroadcaster)
	mockAck := new(MockAcknowledger)

	msg := domain.Message{ID: 2, Username: "alice", Content: "hi"}

	ch := make(chan amqp.Delivery, 1)
	ch <- deliveryFor(t, mockAck, 3, msg)
	close(ch)

	var recv <-chan amqp.Delivery = ch
	mockBroker.On("Consume", "chat.queue").Return(recv, nil)
	mockBroadcaster.On("Publish", domain.PublicDestination, mock.Anything).Return()
	mockAck.On("Ack", uint64(3), false).Return(nil)

	d := NewDispatcher(mockBroker, mockBroadcaster, "chat.queue")
	err := d.Start(context.Background())

	assert.NoError(t, err)
	mockBroadcaster.AssertNumberOfCalls(t, "Publish", 1)
	mockAck.AssertExpectations(t)
}

// 測試 Dispatcher：Consume 失敗時回傳錯誤
func TestDispatcher_ConsumeError(t *testing.T) {
	mockBroker := new(MockBrokerRepository)
	mockBroadcaster := new(MockBroadcaster)

	mockBroker.On("Consume", "chat.queue").Return(nil, assert.AnError)

	d := NewDispatcher(mockBroker, mockBroadcaster, "chat.queue")
	err := d.Start(context.Background())

	assert.Error(t, err)
}
