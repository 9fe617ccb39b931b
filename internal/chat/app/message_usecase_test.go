package app

import (
	"context"
	"errors"
	"os"
	"testing"

	"chat_message_service/internal/chat/domain"
	"chat_message_service/pkg/config"
	"chat_message_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

func testConfig() config.Chat {
	var cfg config.Chat
	cfg.ApplyDefaults()
	return cfg
}

// 測試 CreateMessage：房間留空時套用預設房間，持久化後發布到 broker
func TestCreateMessage_DefaultRoom(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	// 模擬 Store 指定 id
	mockMsgRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		msg := args.Get(1).(*domain.Message)
		msg.ID = 1
	}).Return(nil)
	mockBroker.On("Publish", mock.Anything, "chat.exchange", "chat.message", mock.Anything).Return(nil)

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	msg, err := uc.CreateMessage(ctx, domain.CreateMessageRequest{
		Username: "alice",
		Content:  "hi",
		RoomName: "",
	})

	assert.NoError(t, err)
	assert.Equal(t, "general", msg.RoomName)
	assert.Equal(t, uint(1), msg.ID)

	mockMsgRepo.AssertExpectations(t)
	mockBroker.AssertExpectations(t)
}

// 測試 CreateMessage：指定房間時保留原值
func TestCreateMessage_KeepsRoom(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	mockMsgRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).ID = 7
	}).Return(nil)
	mockBroker.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	msg, err := uc.CreateMessage(ctx, domain.CreateMessageRequest{
		Username: "bob",
		Content:  "hello",
		RoomName: "golang",
	})

	assert.NoError(t, err)
	assert.Equal(t, "golang", msg.RoomName)
}

// 測試 CreateMessage：驗證失敗時不寫 Store 也不發布
func TestCreateMessage_ValidationError(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())

	cases := []domain.CreateMessageRequest{
		{Username: "", Content: "hi"},
		{Username: "alice", Content: ""},
		{Username: "   ", Content: "hi"},   // 只有空白視同空
		{Username: "alice", Content: "  "}, // 只有空白視同空
	}
	for _, req := range cases {
		msg, err := uc.CreateMessage(ctx, req)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	mockMsgRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	mockBroker.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 測試 CreateMessage：Store 寫入失敗時請求終止，broker 零次呼叫
func TestCreateMessage_StoreFailure(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	mockMsgRepo.On("Append", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	msg, err := uc.CreateMessage(ctx, domain.CreateMessageRequest{
		Username: "alice",
		Content:  "hi",
	})

	assert.Nil(t, msg)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	mockBroker.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 測試 CreateMessage：發布失敗不影響已持久化的訊息，呼叫端仍拿到結果
func TestCreateMessage_PublishFailure(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	mockMsgRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).ID = 42
	}).Return(nil)
	mockBroker.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	msg, err := uc.CreateMessage(ctx, domain.CreateMessageRequest{
		Username: "alice",
		Content:  "hi",
		RoomName: "general",
	})

	assert.NoError(t, err)
	assert.NotNil(t, msg)
	assert.Equal(t, uint(42), msg.ID)

	mockBroker.AssertExpectations(t)
}

// 測試 GetMessagesByRoom：limit 未指定時用預設 50
func TestGetMessagesByRoom_DefaultLimit(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	expected := []domain.Message{
		{ID: 3, Username: "a", Content: "3", RoomName: "x"},
		{ID: 2, Username: "a", Content: "2", RoomName: "x"},
	}
	mockMsgRepo.On("FindByRoom", ctx, "x", 50).Return(expected, nil)

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	messages, err := uc.GetMessagesByRoom(ctx, "x", 0)

	assert.NoError(t, err)
	assert.Equal(t, expected, messages)
	mockMsgRepo.AssertExpectations(t)
}

// 測試 GetAllMessages：讀取失敗回 QueryError
func TestGetAllMessages_QueryError(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	mockMsgRepo.On("FindAll", ctx, 10).Return(nil, errors.New("timeout"))

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	messages, err := uc.GetAllMessages(ctx, 10)

	assert.Nil(t, messages)
	assert.ErrorIs(t, err, domain.ErrQuery)
}

// 測試分頁：60 筆、每頁 20 → 3 頁，附帶總筆數
func TestGetMessagesByRoomPaginated(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	pageContent := make([]domain.Message, 20)
	for i := range pageContent {
		// newest-first：最近的 id 在前
		pageContent[i] = domain.Message{ID: uint(60 - i), Username: "a", Content: "m", RoomName: "x"}
	}
	mockMsgRepo.On("FindByRoomPaginated", ctx, "x", 0, 20).Return(pageContent, int64(60), nil)

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	result, err := uc.GetMessagesByRoomPaginated(ctx, "x", 0, 0)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Page)
	assert.Equal(t, 20, result.Size)
	assert.Equal(t, int64(60), result.TotalElements)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Content, 20)
	assert.Equal(t, uint(60), result.Content[0].ID)

	mockMsgRepo.AssertExpectations(t)
}

// 測試分頁：不足一頁時 TotalPages 進位
func TestGetMessagesByRoomPaginated_PartialPage(t *testing.T) {
	ctx := context.Background()

	mockMsgRepo := new(MockMessageRepository)
	mockBroker := new(MockBrokerRepository)

	mockMsgRepo.On("FindByRoomPaginated", ctx, "x", 2, 20).Return([]domain.Message{{ID: 1}}, int64(41), nil)

	uc := NewMessageUseCase(mockMsgRepo, mockBroker, testConfig())
	result, err := uc.GetMessagesByRoomPaginated(ctx, "x", 2, 20)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Content, 1)
}
