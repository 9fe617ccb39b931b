package domain

import "time"

const (
	// PublicDestination 所有訂閱者共用的廣播目的地
	PublicDestination = "public"
	// RoomDestinationPrefix 房間廣播目的地的前綴
	RoomDestinationPrefix = "room."
)

// RoomDestination 依房間名稱產生廣播目的地 (room.<roomName>)
func RoomDestination(roomName string) string {
	return RoomDestinationPrefix + roomName
}

// Message 表示一則已持久化的聊天訊息
// ID 與 CreatedAt 由 Store 在寫入時指定，寫入後不可變
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Content   string    `gorm:"size:1000;not null" json:"content"`
	RoomName  string    `gorm:"size:50;not null;index" json:"roomName"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName gorm table name
func (Message) TableName() string {
	return "messages"
}

// CreateMessageRequest 建立訊息的請求
// RoomName 可留空，Ingress 會套用預設房間
type CreateMessageRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Content  string `json:"content" validate:"required,max=1000"`
	RoomName string `json:"roomName" validate:"omitempty,max=50"`
}

// MessagePage 分頁查詢結果，附帶總筆數讓呼叫端知道何時停止翻頁
type MessagePage struct {
	Content       []Message `json:"content"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
}
