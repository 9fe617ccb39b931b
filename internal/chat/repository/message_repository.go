package repository

import (
	"context"

	"chat_message_service/internal/chat/domain"

	"gorm.io/gorm"
)

// MessageRepository definition message store
// Append 由 Store 指定 id 與 created_at，返回時已持久化
// 查詢一律 newest-first，created_at 相同時以 id 遞減決定順序，分頁才會穩定
type MessageRepository interface {
	AutoMigrate() error
	Append(ctx context.Context, msg *domain.Message) error
	FindByRoom(ctx context.Context, roomName string, limit int) ([]domain.Message, error)
	FindByRoomPaginated(ctx context.Context, roomName string, page, size int) ([]domain.Message, int64, error)
	FindAll(ctx context.Context, limit int) ([]domain.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Message{})
}

// Append 寫入一筆訊息，gorm 回填 ID 與 CreatedAt
func (r *messageRepository) Append(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) FindByRoom(ctx context.Context, roomName string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("room_name = ?", roomName).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FindByRoomPaginated page 從 0 起算，另外回傳該房間總筆數
func (r *messageRepository) FindByRoomPaginated(ctx context.Context, roomName string, page, size int) ([]domain.Message, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_name = ?", roomName).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("room_name = ?", roomName).
		Order("created_at DESC, id DESC").
		Offset(page * size).
		Limit(size).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepository) FindAll(ctx context.Context, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
